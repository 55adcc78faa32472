package database

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasteday/wasteday/internal/models"
)

// stepClock returns a clock that advances by one second per call.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "wasteday.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func TestUpsertSession_ReplacesByID(t *testing.T) {
	store := openTestStore(t, WithClock(stepClock(mustTime(t, "2024-01-01T00:00:00Z"))))

	first := models.Session{
		ID:              "s-1",
		StartTime:       mustTime(t, "2024-01-02T10:00:00Z"),
		DurationSeconds: 60,
		SessionKey:      "category=process;identifier=chrome.exe",
	}
	require.NoError(t, store.UpsertSession(first))

	before, err := store.QuerySessions(nil, nil)
	require.NoError(t, err)
	require.Len(t, before, 1)

	second := models.Session{
		ID:              "s-1",
		StartTime:       mustTime(t, "2024-01-02T11:00:00Z"),
		DurationSeconds: 300,
		SessionKey:      "category=process;identifier=code.exe",
	}
	require.NoError(t, store.UpsertSession(second))

	after, err := store.QuerySessions(nil, nil)
	require.NoError(t, err)
	require.Len(t, after, 1)

	got := after[0]
	assert.Equal(t, "s-1", got.ID)
	assert.True(t, got.StartTime.Equal(second.StartTime))
	assert.Equal(t, int64(300), got.DurationSeconds)
	assert.Equal(t, second.SessionKey, got.SessionKey)
	assert.True(t, got.UpdatedAt.After(before[0].UpdatedAt), "updated_at must move forward")
	assert.True(t, got.CreatedAt.Equal(before[0].CreatedAt), "created_at must be kept")
}

func TestUpsertSession_Idempotent(t *testing.T) {
	store := openTestStore(t)

	session := models.Session{
		ID:              "repeat",
		StartTime:       mustTime(t, "2024-03-01T08:00:00Z"),
		DurationSeconds: 42,
		SessionKey:      "k",
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, store.UpsertSession(session))
	}

	sessions, err := store.QuerySessions(nil, nil)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, int64(42), sessions[0].DurationSeconds)
}

func TestUpsertSession_RejectsInvalid(t *testing.T) {
	store := openTestStore(t)
	start := mustTime(t, "2024-03-01T08:00:00Z")

	tests := []struct {
		name    string
		session models.Session
	}{
		{"empty id", models.Session{StartTime: start, SessionKey: "k"}},
		{"zero start", models.Session{ID: "a", SessionKey: "k"}},
		{"negative duration", models.Session{ID: "a", StartTime: start, DurationSeconds: -1, SessionKey: "k"}},
		{"empty key", models.Session{ID: "a", StartTime: start}},
		{"five digit year", models.Session{ID: "a", StartTime: time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC), SessionKey: "k"}},
		{"negative year", models.Session{ID: "a", StartTime: time.Date(-1, 1, 1, 0, 0, 0, 0, time.UTC), SessionKey: "k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.UpsertSession(tt.session)
			require.Error(t, err)
			assert.Equal(t, OperationFailure, KindOf(err))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	sessions, err := store.QuerySessions(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestQuerySessions_HalfOpenRange(t *testing.T) {
	store := openTestStore(t)

	for i, start := range []string{
		"2024-01-02T23:59:59Z",
		"2024-01-01T23:59:59Z",
		"2024-01-02T12:00:00Z",
	} {
		require.NoError(t, store.UpsertSession(models.Session{
			ID:              fmt.Sprintf("s-%d", i),
			StartTime:       mustTime(t, start),
			DurationSeconds: 10,
			SessionKey:      "k",
		}))
	}

	since := mustTime(t, "2024-01-02T00:00:00Z")
	until := mustTime(t, "2024-01-03T00:00:00Z")

	sessions, err := store.QuerySessions(&since, &until)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.True(t, sessions[0].StartTime.Equal(mustTime(t, "2024-01-02T12:00:00Z")))
	assert.True(t, sessions[1].StartTime.Equal(mustTime(t, "2024-01-02T23:59:59Z")))

	onlySince, err := store.QuerySessions(&since, nil)
	require.NoError(t, err)
	assert.Len(t, onlySince, 2)

	onlyUntil, err := store.QuerySessions(nil, &since)
	require.NoError(t, err)
	require.Len(t, onlyUntil, 1)
	assert.Equal(t, "s-1", onlyUntil[0].ID)

	all, err := store.QuerySessions(nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"s-1", "s-2", "s-0"}, []string{all[0].ID, all[1].ID, all[2].ID})
}

func TestUpsertSession_OutOfRangeKeepsStoreReadable(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.UpsertSession(models.Session{
		ID:         "ok",
		StartTime:  mustTime(t, "2024-01-02T00:00:00Z"),
		SessionKey: "k",
	}))
	err := store.UpsertSession(models.Session{
		ID:         "far",
		StartTime:  time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC),
		SessionKey: "k",
	})
	assert.ErrorIs(t, err, ErrInvalid)

	sessions, err := store.QuerySessions(nil, nil)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "ok", sessions[0].ID)
}

func TestQuerySessions_SubMillisecondBounds(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.UpsertSession(models.Session{
		ID:         "noon",
		StartTime:  mustTime(t, "2024-01-02T12:00:00Z"),
		SessionKey: "k",
	}))

	noon := mustTime(t, "2024-01-02T12:00:00Z")
	justAfter := noon.Add(900 * time.Microsecond)

	included, err := store.QuerySessions(nil, &justAfter)
	require.NoError(t, err)
	assert.Len(t, included, 1, "row at 12:00:00.000 is before 12:00:00.0009")

	excluded, err := store.QuerySessions(&justAfter, nil)
	require.NoError(t, err)
	assert.Empty(t, excluded, "row at 12:00:00.000 is before the lower bound")

	exact, err := store.QuerySessions(&noon, nil)
	require.NoError(t, err)
	assert.Len(t, exact, 1)
}

func TestQuerySessions_NonUTCBounds(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.UpsertSession(models.Session{
		ID:         "tz",
		StartTime:  mustTime(t, "2024-06-01T12:00:00Z"),
		SessionKey: "k",
	}))

	tokyo := time.FixedZone("JST", 9*3600)
	since := time.Date(2024, 6, 1, 20, 59, 0, 0, tokyo)
	until := time.Date(2024, 6, 1, 21, 1, 0, 0, tokyo)

	sessions, err := store.QuerySessions(&since, &until)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, time.UTC, sessions[0].StartTime.Location())
}

func TestDeleteSession_Idempotent(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.UpsertSession(models.Session{
		ID:         "keep",
		StartTime:  mustTime(t, "2024-01-01T00:00:00Z"),
		SessionKey: "k",
	}))

	require.NoError(t, store.DeleteSession("missing"))

	sessions, err := store.QuerySessions(nil, nil)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	require.NoError(t, store.DeleteSession("keep"))
	require.NoError(t, store.DeleteSession("keep"))

	sessions, err = store.QuerySessions(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestDeleteSessionsBefore(t *testing.T) {
	store := openTestStore(t)

	for i, start := range []string{"2024-01-01T00:00:00Z", "2024-02-01T00:00:00Z", "2024-03-01T00:00:00Z"} {
		require.NoError(t, store.UpsertSession(models.Session{
			ID:         fmt.Sprintf("s-%d", i),
			StartTime:  mustTime(t, start),
			SessionKey: "k",
		}))
	}

	deleted, err := store.DeleteSessionsBefore(mustTime(t, "2024-02-01T00:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	sessions, err := store.QuerySessions(nil, nil)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestUpsertClassificationRule_ReplacesByNaturalKey(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.UpsertClassificationRule(models.ClassificationRule{
		Type: "process", Identifier: "chrome.exe", Label: models.LabelWaste, IsActive: true,
	}))
	require.NoError(t, store.UpsertClassificationRule(models.ClassificationRule{
		Type: "process", Identifier: "chrome.exe", Label: models.LabelProductive, IsActive: true,
	}))

	rules, err := store.ListClassificationRules()
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, models.LabelProductive, rules[0].Label)
	assert.True(t, rules[0].IsActive)
	assert.NotZero(t, rules[0].ID)
}

func TestUpsertClassificationRule_KeepsIDOnConflict(t *testing.T) {
	store := openTestStore(t)

	rule := models.ClassificationRule{Type: "domain", Identifier: "youtube.com", Label: models.LabelWaste, IsActive: true}
	require.NoError(t, store.UpsertClassificationRule(rule))

	rules, err := store.ListClassificationRules()
	require.NoError(t, err)
	require.Len(t, rules, 1)
	id := rules[0].ID

	rule.IsActive = false
	require.NoError(t, store.UpsertClassificationRule(rule))

	rules, err = store.ListClassificationRules()
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, id, rules[0].ID)
	assert.False(t, rules[0].IsActive)
}

func TestListClassificationRules_OrderedWithInactive(t *testing.T) {
	store := openTestStore(t)

	input := []models.ClassificationRule{
		{Type: "process", Identifier: "slack.exe", Label: models.LabelProductive, IsActive: true},
		{Type: "domain", Identifier: "youtube.com", Label: models.LabelWaste, IsActive: false},
		{Type: "process", Identifier: "code.exe", Label: models.LabelProductive, IsActive: true},
		{Type: "domain", Identifier: "github.com", Label: models.LabelProductive, IsActive: true},
	}
	for _, rule := range input {
		require.NoError(t, store.UpsertClassificationRule(rule))
	}

	rules, err := store.ListClassificationRules()
	require.NoError(t, err)
	require.Len(t, rules, 4)

	var got []string
	for _, rule := range rules {
		got = append(got, rule.Type+"/"+rule.Identifier)
	}
	assert.Equal(t, []string{
		"domain/github.com",
		"domain/youtube.com",
		"process/code.exe",
		"process/slack.exe",
	}, got)
	assert.False(t, rules[1].IsActive)
}

func TestUpsertClassificationRule_RejectsInvalid(t *testing.T) {
	store := openTestStore(t)

	tests := []struct {
		name string
		rule models.ClassificationRule
	}{
		{"empty type", models.ClassificationRule{Identifier: "x", Label: models.LabelWaste}},
		{"empty identifier", models.ClassificationRule{Type: "process", Label: models.LabelWaste}},
		{"bad label", models.ClassificationRule{Type: "process", Identifier: "x", Label: "neutral"}},
		{"unclassified label", models.ClassificationRule{Type: "process", Identifier: "x", Label: models.LabelUnclassified}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.UpsertClassificationRule(tt.rule)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestDeleteClassificationRule_Idempotent(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.UpsertClassificationRule(models.ClassificationRule{
		Type: "process", Identifier: "game.exe", Label: models.LabelWaste, IsActive: true,
	}))

	require.NoError(t, store.DeleteClassificationRule(9999))

	rules, err := store.ListClassificationRules()
	require.NoError(t, err)
	require.Len(t, rules, 1)

	require.NoError(t, store.DeleteClassificationRule(rules[0].ID))
	require.NoError(t, store.DeleteClassificationRule(rules[0].ID))

	rules, err = store.ListClassificationRules()
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestSettings(t *testing.T) {
	store := openTestStore(t)

	_, ok, err := store.GetSetting("has_run_before")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SetSetting("goal_daily_waste_seconds", "3600"))
	require.NoError(t, store.SetSetting("goal_daily_waste_seconds", "1800"))

	value, ok, err := store.GetSetting("goal_daily_waste_seconds")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1800", value)

	require.NoError(t, store.SetSetting("empty", ""))
	value, ok, err = store.GetSetting("empty")
	require.NoError(t, err)
	assert.True(t, ok, "an empty value is still present")
	assert.Equal(t, "", value)

	settings, err := store.ListSettings()
	require.NoError(t, err)
	require.Len(t, settings, 2)
	assert.Equal(t, "empty", settings[0].Key)
	assert.Equal(t, "goal_daily_waste_seconds", settings[1].Key)

	err = store.SetSetting(" ", "x")
	assert.Equal(t, OperationFailure, KindOf(err))
}

func TestClaimSetting(t *testing.T) {
	store := openTestStore(t)

	claimed, err := store.ClaimSetting("has_run_before", "true")
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = store.ClaimSetting("has_run_before", "again")
	require.NoError(t, err)
	assert.False(t, claimed)

	value, ok, err := store.GetSetting("has_run_before")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", value)
}

func TestClaimSetting_SingleWinnerUnderConcurrency(t *testing.T) {
	store := openTestStore(t)

	const workers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := store.ClaimSetting("has_run_before", "true")
			assert.NoError(t, err)
			if claimed {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}

func TestConcurrentUpserts(t *testing.T) {
	store := openTestStore(t)
	start := mustTime(t, "2024-05-01T00:00:00Z")

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				err := store.UpsertSession(models.Session{
					ID:              fmt.Sprintf("w%d-%d", w, i),
					StartTime:       start.Add(time.Duration(w*perWorker+i) * time.Minute),
					DurationSeconds: int64(i),
					SessionKey:      fmt.Sprintf("worker=%d", w),
				})
				assert.NoError(t, err)
				_, err = store.QuerySessions(nil, nil)
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	sessions, err := store.QuerySessions(nil, nil)
	require.NoError(t, err)
	assert.Len(t, sessions, workers*perWorker)
}

func TestLockTimeout(t *testing.T) {
	store := openTestStore(t, WithLockTimeout(20*time.Millisecond))

	require.NoError(t, store.lock.acquire("test"))
	_, _, err := store.GetSetting("anything")
	store.lock.release()

	require.Error(t, err)
	assert.Equal(t, LockUnavailable, KindOf(err))

	_, _, err = store.GetSetting("anything")
	assert.NoError(t, err, "store must remain usable after a lock timeout")
}
