// Package bootstrap decides at startup whether the main window should be
// shown, from first-run state and how the process was launched.
package bootstrap

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wasteday/wasteday/internal/config"
)

// HasRunBeforeKey is the setting whose presence marks that the application
// has started at least once.
const HasRunBeforeKey = "has_run_before"

// Outcome is the startup decision for the main window.
type Outcome string

const (
	ShowAndFocus Outcome = "show_and_focus"
	StayHidden   Outcome = "stay_hidden"
)

// Decision is computed once per process start.
type Decision struct {
	FirstRun   bool    `json:"first_run"`
	Background bool    `json:"background"`
	Outcome    Outcome `json:"outcome"`
}

// SettingClaimer stores a setting only if it is absent. *database.Store
// implements it.
type SettingClaimer interface {
	ClaimSetting(key, value string) (bool, error)
}

// Launch describes how the process was started.
type Launch struct {
	Args          []string
	AutostartArgs []string
	AutostartEnv  string
	LookupEnv     func(string) (string, bool)
}

// LaunchFromConfig captures the current process's arguments and environment.
func LaunchFromConfig(cfg config.LaunchConfig, args []string) Launch {
	return Launch{
		Args:          args,
		AutostartArgs: cfg.AutostartArgs,
		AutostartEnv:  cfg.AutostartEnv,
		LookupEnv:     os.LookupEnv,
	}
}

// Background reports whether any argument contains one of the autostart
// markers, or the autostart environment variable is present with any value.
func (l Launch) Background() bool {
	for _, arg := range l.Args {
		for _, marker := range l.AutostartArgs {
			if marker != "" && strings.Contains(arg, marker) {
				return true
			}
		}
	}

	if l.AutostartEnv != "" && l.LookupEnv != nil {
		if _, ok := l.LookupEnv(l.AutostartEnv); ok {
			return true
		}
	}
	return false
}

// Decide records the first-run marker if absent and classifies the launch.
// A first run always shows the window; otherwise a background launch stays
// hidden. A store failure aborts startup.
func Decide(store SettingClaimer, launch Launch, logger zerolog.Logger) (Decision, error) {
	firstRun, err := store.ClaimSetting(HasRunBeforeKey, "true")
	if err != nil {
		return Decision{}, fmt.Errorf("failed to record first run: %w", err)
	}

	d := Decision{
		FirstRun:   firstRun,
		Background: launch.Background(),
	}

	if d.FirstRun || !d.Background {
		d.Outcome = ShowAndFocus
	} else {
		d.Outcome = StayHidden
	}

	logger.Info().
		Bool("first_run", d.FirstRun).
		Bool("background", d.Background).
		Str("outcome", string(d.Outcome)).
		Msg("launch classified")

	return d, nil
}
