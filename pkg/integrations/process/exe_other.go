//go:build !linux && !windows

package process

import (
	"runtime"

	"github.com/pkg/errors"
)

func executablePath(pid uint32) (string, error) {
	return "", errors.Errorf("executable lookup not supported on %s", runtime.GOOS)
}
