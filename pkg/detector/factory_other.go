//go:build !windows

package detector

import (
	"github.com/pkg/errors"

	"github.com/wasteday/wasteday/pkg/window"
)

func newWin32() (window.Native, error) {
	return nil, errors.Wrap(ErrNoDisplayServer, "win32 backend is only built on windows")
}
