package logging

import "time"

const logTimestampLayout = "2006-01-02 15:04:05Z"

// formatTimestamp renders in UTC to line up with contest log times.
func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(logTimestampLayout)
}
