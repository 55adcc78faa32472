package window

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// Probe samples foreground application identity and idle time from a Native
// backend. Its methods never fail: every backend failure becomes a sentinel
// value. Probe holds no mutable state and is safe for concurrent use.
type Probe struct {
	native Native
	logger zerolog.Logger
}

func NewProbe(native Native, logger zerolog.Logger) *Probe {
	if native == nil {
		native = Unavailable{Reason: "no backend"}
	}
	return &Probe{
		native: native,
		logger: logger.With().Str("component", "probe").Str("backend", native.GetDisplayServer()).Logger(),
	}
}

// Backend returns the name of the native backend in use.
func (p *Probe) Backend() string {
	return p.native.GetDisplayServer()
}

// SampleForeground returns the focused window's owning PID, executable file
// name and title. When the executable cannot be resolved its name is
// UnknownExecutable; when no window can be read the snapshot is
// {0, UnknownExecutable, ""}.
func (p *Probe) SampleForeground() (snap Snapshot) {
	snap = Snapshot{ExecutableName: UnknownExecutable}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Interface("panic", r).Msg("native foreground query panicked")
			snap = Snapshot{ExecutableName: UnknownExecutable}
		}
	}()

	fg, err := p.native.ForegroundWindow()
	if err != nil {
		p.logger.Debug().Err(err).Msg("foreground window unavailable")
		return snap
	}

	snap.ProcessID = fg.ProcessID
	snap.WindowTitle = strings.ToValidUTF8(fg.Title, string(utf8.RuneError))

	if fg.ProcessID == 0 {
		return snap
	}

	path, err := p.native.ExecutablePath(fg.ProcessID)
	if err != nil {
		p.logger.Debug().Err(err).Uint32("pid", fg.ProcessID).Msg("executable not resolvable")
		return snap
	}
	if name := executableName(path); name != "" {
		snap.ExecutableName = name
	}
	return snap
}

// IdleSeconds returns whole seconds since the last user input, or 0 when the
// backend cannot tell.
func (p *Probe) IdleSeconds() (seconds uint64) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Interface("panic", r).Msg("native idle query panicked")
			seconds = 0
		}
	}()

	idle, err := p.native.IdleDuration()
	if err != nil {
		p.logger.Debug().Err(err).Msg("idle time unavailable")
		return 0
	}
	if idle < 0 {
		return 0
	}
	return uint64(idle / time.Second)
}

// executableName returns the last element of a Windows or POSIX path.
func executableName(path string) string {
	path = strings.TrimRight(strings.TrimSpace(path), `/\`)
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
