package battery

import "fmt"

// FormatDuration renders seconds in the largest fitting unit pair. Each
// boundary belongs to the larger unit: 60 is "1 minutes".
func FormatDuration(seconds uint32) string {
	if seconds < 60 {
		return fmt.Sprintf("%d seconds", seconds)
	}

	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%d minutes", minutes)
	}

	hours := minutes / 60
	minutes %= 60
	if hours < 24 {
		return fmt.Sprintf("%d hours and %d minutes", hours, minutes)
	}

	days := hours / 24
	hours %= 24
	return fmt.Sprintf("%d days and %d hours", days, hours)
}
