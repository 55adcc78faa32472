package bootstrap

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasteday/wasteday/internal/config"
	"github.com/wasteday/wasteday/internal/database"
)

func noEnv(string) (string, bool) { return "", false }

func openStore(t *testing.T) *database.Store {
	t.Helper()
	store, err := database.Open(filepath.Join(t.TempDir(), "wasteday.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func launch(args ...string) Launch {
	def := config.Default().Launch
	return Launch{
		Args:          args,
		AutostartArgs: def.AutostartArgs,
		AutostartEnv:  def.AutostartEnv,
		LookupEnv:     noEnv,
	}
}

func TestDecideFirstRunThenNormal(t *testing.T) {
	store := openStore(t)

	first, err := Decide(store, launch("wasteday"), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, Decision{FirstRun: true, Background: false, Outcome: ShowAndFocus}, first)

	value, found, err := store.GetSetting(HasRunBeforeKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "true", value)

	second, err := Decide(store, launch("wasteday"), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, Decision{FirstRun: false, Background: false, Outcome: ShowAndFocus}, second)
}

func TestDecideFirstRunBackgroundStillShows(t *testing.T) {
	store := openStore(t)

	d, err := Decide(store, launch("wasteday", "--autostart"), zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, d.FirstRun)
	assert.True(t, d.Background)
	assert.Equal(t, ShowAndFocus, d.Outcome)
}

func TestDecideBackgroundAfterFirstRunStaysHidden(t *testing.T) {
	store := openStore(t)
	_, err := Decide(store, launch("wasteday"), zerolog.Nop())
	require.NoError(t, err)

	d, err := Decide(store, launch("wasteday", "--hidden"), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, Decision{FirstRun: false, Background: true, Outcome: StayHidden}, d)
}

func TestDecideSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wasteday.db")

	for i, wantFirst := range []bool{true, false} {
		store, err := database.Open(path)
		require.NoError(t, err)

		d, err := Decide(store, launch("wasteday"), zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, wantFirst, d.FirstRun, "run #%d", i+1)
		require.NoError(t, store.Close())
	}
}

type failingStore struct{}

func (failingStore) ClaimSetting(string, string) (bool, error) {
	return false, errors.New("disk on fire")
}

func TestDecideStoreFailure(t *testing.T) {
	_, err := Decide(failingStore{}, launch(), zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestLaunchBackground(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want bool
	}{
		{"No flags", []string{"wasteday"}, nil, false},
		{"Autostart flag", []string{"wasteday", "--autostart"}, nil, true},
		{"Hidden flag", []string{"wasteday", "--hidden"}, nil, true},
		{"Flag as substring", []string{"wasteday", "--autostart=1"}, nil, true},
		{"Flag embedded in path", []string{`C:\wasteday.exe --hidden`}, nil, true},
		{"Unrelated flag", []string{"wasteday", "--verbose"}, nil, false},
		{"Env present", []string{"wasteday"}, map[string]string{"WASTEDAY_AUTOSTART": "1"}, true},
		{"Env present but empty", []string{"wasteday"}, map[string]string{"WASTEDAY_AUTOSTART": ""}, true},
		{"Other env", []string{"wasteday"}, map[string]string{"TAURI_AUTOSTART": "1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := launch(tt.args...)
			l.LookupEnv = func(key string) (string, bool) {
				v, ok := tt.env[key]
				return v, ok
			}
			assert.Equal(t, tt.want, l.Background())
		})
	}
}

func TestLaunchFromConfig(t *testing.T) {
	t.Setenv("WASTEDAY_AUTOSTART", "")

	l := LaunchFromConfig(config.Default().Launch, []string{"wasteday"})
	assert.True(t, l.Background())
}
