// Package win32 reads the foreground window and idle time through the Win32
// API.
package win32

import "time"

// titleUnits is the window title buffer size in UTF-16 code units.
const titleUnits = 512

// idleSince converts the tick count of the last input event and the current
// tick count into an idle duration. Both counters are 32-bit milliseconds
// since boot and wrap after about 49.7 days; a last-input tick ahead of now
// means a wrap happened between the two reads and is reported as no idle
// time.
func idleSince(now, lastInput uint32) time.Duration {
	if now < lastInput {
		return 0
	}
	return time.Duration(now-lastInput) * time.Millisecond
}
