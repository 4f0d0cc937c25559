package utils

import (
	"fmt"
	"time"
)

// FormatDuration renders a duration in its largest whole unit: 45s, 12m, 3h, 2d.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// FormatSeconds renders a pacing delay given in seconds.
func FormatSeconds(s float64) string {
	if s < 1 {
		return fmt.Sprintf("%.2fs", s)
	}
	return (time.Duration(s * float64(time.Second))).Round(time.Second).String()
}
