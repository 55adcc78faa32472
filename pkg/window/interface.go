package window

import "time"

// UnknownExecutable is reported when the owning executable of the foreground
// window cannot be resolved.
const UnknownExecutable = "unknown.exe"

// Snapshot describes the foreground application at the moment of sampling.
type Snapshot struct {
	ProcessID      uint32 `json:"process_id"`
	ExecutableName string `json:"executable_name"`
	WindowTitle    string `json:"window_title"`
}

// Foreground is the raw focused-window answer from a native backend. Title
// is already bounded by the backend's buffer.
type Foreground struct {
	ProcessID uint32
	Title     string
}

// Native is implemented by each platform backend. Methods may fail freely;
// Probe turns every failure into a sentinel. Implementations must release any
// OS handle they acquire before returning.
type Native interface {
	// ForegroundWindow returns the focused top-level window's owner PID and
	// title.
	ForegroundWindow() (Foreground, error)

	// ExecutablePath resolves pid to the path of its executable image.
	ExecutablePath(pid uint32) (string, error)

	// IdleDuration returns the time since the last keyboard or mouse input.
	IdleDuration() (time.Duration, error)

	// GetDisplayServer names the backend ("win32", "x11", ...).
	GetDisplayServer() string

	// Close releases backend resources held across calls, if any.
	Close() error
}
