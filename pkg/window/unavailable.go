package window

import (
	"fmt"
	"time"
)

// Unavailable is the backend used when no native backend fits the running
// environment. Every query fails with the stored reason.
type Unavailable struct {
	Reason string
}

func (u Unavailable) err() error {
	return fmt.Errorf("activity probe unavailable: %s", u.Reason)
}

func (u Unavailable) ForegroundWindow() (Foreground, error) { return Foreground{}, u.err() }

func (u Unavailable) ExecutablePath(uint32) (string, error) { return "", u.err() }

func (u Unavailable) IdleDuration() (time.Duration, error) { return 0, u.err() }

func (u Unavailable) GetDisplayServer() string { return "unavailable" }

func (u Unavailable) Close() error { return nil }
