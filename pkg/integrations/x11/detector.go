// Package x11 reads the focused window and idle time from an X server over
// the X11 protocol.
package x11

import (
	"os"
	"time"

	"github.com/jezek/xgb/screensaver"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"

	"github.com/wasteday/wasteday/pkg/integrations/process"
	"github.com/wasteday/wasteday/pkg/window"
)

const (
	// titleLongs bounds window title reads to 512 bytes.
	titleLongs = 128

	activeWindowAttempts = 3
	activeWindowBackoff  = 20 * time.Millisecond
)

// Detector implements window.Native for X11. Each call opens its own
// connection, so a Detector is safe for concurrent use.
type Detector struct {
	display string
}

// NewDetector creates a detector for the given display. An empty display
// means $DISPLAY.
func NewDetector(display string) *Detector {
	if display == "" {
		display = os.Getenv("DISPLAY")
	}
	return &Detector{display: display}
}

// IsAvailable reports whether the X server accepts a connection.
func (d *Detector) IsAvailable() bool {
	c, err := dial(d.display)
	if err != nil {
		return false
	}
	c.close()
	return true
}

func (d *Detector) GetDisplayServer() string {
	return "x11"
}

// ForegroundWindow returns the PID and title of the active top-level window.
func (d *Detector) ForegroundWindow() (window.Foreground, error) {
	c, err := dial(d.display)
	if err != nil {
		return window.Foreground{}, err
	}
	defer c.close()

	win, err := c.activeWindow()
	if err != nil {
		return window.Foreground{}, err
	}

	return window.Foreground{
		ProcessID: c.windowPID(win),
		Title:     c.windowName(win),
	}, nil
}

func (d *Detector) ExecutablePath(pid uint32) (string, error) {
	return process.ExecutablePath(pid)
}

// IdleDuration asks the MIT-SCREEN-SAVER extension for the time since the
// last keyboard or pointer input.
func (d *Detector) IdleDuration() (time.Duration, error) {
	c, err := dial(d.display)
	if err != nil {
		return 0, err
	}
	defer c.close()

	if err := screensaver.Init(c.conn); err != nil {
		return 0, errors.Wrap(err, "screensaver extension unavailable")
	}

	reply, err := screensaver.QueryInfo(c.conn, xproto.Drawable(c.root)).Reply()
	if err != nil {
		return 0, errors.Wrap(err, "failed to query screensaver info")
	}

	return time.Duration(reply.MsSinceUserInput) * time.Millisecond, nil
}

func (d *Detector) Close() error {
	return nil
}

var errNoActiveWindow = errors.New("no active window found")

// activeWindow prefers _NET_ACTIVE_WINDOW and falls back to the input focus
// walked up to its top-level parent. Window managers briefly report no
// active window while switching, so the lookup is retried a few times.
func (c *client) activeWindow() (xproto.Window, error) {
	for i := 0; i < activeWindowAttempts; i++ {
		if win := c.activeWindowFromProperty(); win != 0 && c.hasName(win) {
			return win, nil
		}

		if win := c.activeWindowFromInputFocus(); win != 0 && win != c.root {
			if top := c.topLevelParent(win); top != 0 && c.hasName(top) {
				return top, nil
			}
		}

		if i < activeWindowAttempts-1 {
			time.Sleep(activeWindowBackoff)
		}
	}
	return 0, errNoActiveWindow
}
