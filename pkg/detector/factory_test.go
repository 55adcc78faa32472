package detector

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/wasteday/wasteday/pkg/window"
)

func TestNew(t *testing.T) {
	native, err := New()
	if err != nil {
		t.Logf("New() returned error (may be expected): %v", err)
		return
	}

	if native == nil {
		t.Fatal("New() returned nil backend without error")
	}

	displayServer := native.GetDisplayServer()
	t.Logf("Detected display server: %s", displayServer)

	if displayServer != "x11" && displayServer != "win32" {
		t.Errorf("GetDisplayServer() = %s, want x11 or win32", displayServer)
	}

	if err := native.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestDetectDisplayServer(t *testing.T) {
	tests := []struct {
		name           string
		goos           string
		sessionType    string
		waylandDisplay string
		x11Display     string
		expected       string
	}{
		{"Windows", "windows", "", "", "", "win32"},
		{"Windows ignores X vars", "windows", "x11", "", ":0", "win32"},
		{"Wayland session", "linux", "wayland", "wayland-0", "", "wayland"},
		{"X11 session", "linux", "x11", "", ":0", "x11"},
		{"Unknown session", "linux", "", "", "", "unknown"},
		{"Wayland display set", "linux", "", "wayland-1", "", "wayland"},
		{"X11 display set", "freebsd", "", "", ":1", "x11"},
	}

	origGOOS := goos
	defer func() { goos = origGOOS }()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goos = tt.goos
			t.Setenv("XDG_SESSION_TYPE", tt.sessionType)
			t.Setenv("WAYLAND_DISPLAY", tt.waylandDisplay)
			t.Setenv("DISPLAY", tt.x11Display)

			if result := DetectDisplayServer(); result != tt.expected {
				t.Errorf("DetectDisplayServer() = %s, want %s", result, tt.expected)
			}
		})
	}
}

func TestNewWithoutDisplayServer(t *testing.T) {
	origGOOS := goos
	defer func() { goos = origGOOS }()
	goos = "linux"

	t.Setenv("XDG_SESSION_TYPE", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	t.Setenv("DISPLAY", "")

	native, err := New()
	if native != nil {
		t.Errorf("New() = %v, want nil backend", native)
	}
	if !errors.Is(err, ErrNoDisplayServer) {
		t.Errorf("New() error = %v, want ErrNoDisplayServer", err)
	}
}

func TestNewWaylandWithoutXWayland(t *testing.T) {
	origGOOS := goos
	defer func() { goos = origGOOS }()
	goos = "linux"

	t.Setenv("XDG_SESSION_TYPE", "wayland")
	t.Setenv("WAYLAND_DISPLAY", "wayland-0")
	t.Setenv("DISPLAY", "")

	if _, err := New(); !errors.Is(err, ErrNoDisplayServer) {
		t.Errorf("New() error = %v, want ErrNoDisplayServer", err)
	}
}

func TestNewProbeFallsBackToSentinels(t *testing.T) {
	origGOOS := goos
	defer func() { goos = origGOOS }()
	goos = "linux"

	t.Setenv("XDG_SESSION_TYPE", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	t.Setenv("DISPLAY", "")

	probe := NewProbe(zerolog.Nop())
	if probe.Backend() != "unavailable" {
		t.Errorf("Backend() = %s, want unavailable", probe.Backend())
	}
	if got := probe.SampleForeground(); got.ExecutableName != window.UnknownExecutable {
		t.Errorf("ExecutableName = %q, want %q", got.ExecutableName, window.UnknownExecutable)
	}
	if got := probe.IdleSeconds(); got != 0 {
		t.Errorf("IdleSeconds() = %d, want 0", got)
	}
}
