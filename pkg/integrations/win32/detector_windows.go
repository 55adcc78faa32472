//go:build windows

package win32

import (
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/wasteday/wasteday/pkg/integrations/process"
	"github.com/wasteday/wasteday/pkg/window"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procGetWindowTextW   = user32.NewProc("GetWindowTextW")
	procGetLastInputInfo = user32.NewProc("GetLastInputInfo")
	procGetTickCount     = kernel32.NewProc("GetTickCount")
)

type lastInputInfo struct {
	cbSize uint32
	dwTime uint32
}

// Detector implements window.Native with user32 and kernel32 calls. It holds
// no handles between calls.
type Detector struct{}

func NewDetector() *Detector {
	return &Detector{}
}

func (d *Detector) GetDisplayServer() string {
	return "win32"
}

func (d *Detector) ForegroundWindow() (window.Foreground, error) {
	hwnd := windows.GetForegroundWindow()
	if hwnd == 0 {
		return window.Foreground{}, errors.New("no foreground window")
	}

	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil {
		pid = 0
	}

	return window.Foreground{
		ProcessID: pid,
		Title:     windowText(hwnd),
	}, nil
}

func (d *Detector) ExecutablePath(pid uint32) (string, error) {
	return process.ExecutablePath(pid)
}

func (d *Detector) IdleDuration() (time.Duration, error) {
	info := lastInputInfo{cbSize: uint32(unsafe.Sizeof(lastInputInfo{}))}
	ok, _, callErr := procGetLastInputInfo.Call(uintptr(unsafe.Pointer(&info)))
	if ok == 0 {
		return 0, errors.Wrap(callErr, "GetLastInputInfo failed")
	}

	now, _, _ := procGetTickCount.Call()
	return idleSince(uint32(now), info.dwTime), nil
}

func (d *Detector) Close() error {
	return nil
}

func windowText(hwnd windows.HWND) string {
	buf := make([]uint16, titleUnits)
	n, _, _ := procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}
