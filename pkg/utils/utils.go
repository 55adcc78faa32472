package utils

import "strconv"

// FormatRoundedUnit renders a duration in seconds using its largest whole
// unit: "45s", "12m", "3h". Negative values are formatted by magnitude.
func FormatRoundedUnit(seconds int64) string {
	if seconds < 0 {
		seconds = -seconds
	}
	switch {
	case seconds < 60:
		return strconv.FormatInt(seconds, 10) + "s"
	case seconds < 3600:
		return strconv.FormatInt(seconds/60, 10) + "m"
	default:
		return strconv.FormatInt(seconds/3600, 10) + "h"
	}
}
