package shared

import (
	"fmt"
	"strings"
)

// FormatDuration formats a duration in milliseconds as hh:mm:ss, mm:ss or ss.
//
// Hours are omitted when zero.
func FormatDuration(durationMS int) string {
	seconds := durationMS / 1000
	minutes, seconds := seconds/60, seconds%60
	hours, minutes := minutes/60, minutes%60

	parts := []string{}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%02d", hours))
	}
	parts = append(parts, fmt.Sprintf("%02d", minutes), fmt.Sprintf("%02d", seconds))

	return strings.Join(parts, ":")
}
