//go:build windows

package detector

import (
	"github.com/wasteday/wasteday/pkg/integrations/win32"
	"github.com/wasteday/wasteday/pkg/window"
)

func newWin32() (window.Native, error) {
	return win32.NewDetector(), nil
}
