// Package process resolves a process ID to the path of its executable image.
package process

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrNoProcess is returned for PID 0, which never names a real process.
var ErrNoProcess = errors.New("no process")

// ExecutablePath returns the full path of the image backing pid. Errors from
// the platform lookup are wrapped; callers treat any error as "unresolvable".
func ExecutablePath(pid uint32) (string, error) {
	if pid == 0 {
		return "", ErrNoProcess
	}
	path, err := executablePath(pid)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve executable for pid %d", pid)
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.Errorf("empty executable path for pid %d", pid)
	}
	return path, nil
}
