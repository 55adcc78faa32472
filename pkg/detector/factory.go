package detector

import (
	"os"
	"runtime"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/wasteday/wasteday/pkg/integrations/x11"
	"github.com/wasteday/wasteday/pkg/window"
)

// ErrNoDisplayServer is returned by New when no supported window system is
// reachable.
var ErrNoDisplayServer = errors.New("no supported display server")

var goos = runtime.GOOS

// New returns the native backend for the current session.
func New() (window.Native, error) {
	switch DetectDisplayServer() {
	case "win32":
		return newWin32()
	case "x11":
		return newX11()
	case "wayland":
		// Only XWayland clients are visible; native Wayland surfaces are not.
		if os.Getenv("DISPLAY") != "" {
			return newX11()
		}
		return nil, errors.Wrap(ErrNoDisplayServer, "wayland session without XWayland")
	default:
		return nil, ErrNoDisplayServer
	}
}

// NewProbe builds a Probe over New's backend, falling back to an unavailable
// backend that yields sentinel values.
func NewProbe(logger zerolog.Logger) *window.Probe {
	native, err := New()
	if err != nil {
		logger.Warn().Err(err).Str("display_server", DetectDisplayServer()).Msg("window backend unavailable, probe will return sentinels")
		native = window.Unavailable{Reason: err.Error()}
	}
	return window.NewProbe(native, logger)
}

func DetectDisplayServer() string {
	if goos == "windows" {
		return "win32"
	}

	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}

func newX11() (window.Native, error) {
	d := x11.NewDetector("")
	if !d.IsAvailable() {
		return nil, errors.Wrap(ErrNoDisplayServer, "X server not reachable")
	}
	return d, nil
}
