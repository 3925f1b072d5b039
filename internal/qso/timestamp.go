package qso

import (
	"fmt"
	"strings"
	"time"
)

var dateLayouts = []string{"2006-01-02", "20060102"}

var clockLayouts = []string{"15:04", "1504"}

// ParseTimestamp combines a date and a clock token into a minute-resolution
// UTC timestamp. Contest logs are kept in UTC so no zone is applied.
func ParseTimestamp(date, clock string) (time.Time, error) {
	day, err := parseWithLayouts(strings.TrimSpace(date), dateLayouts)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	tod, err := parseWithLayouts(strings.TrimSpace(clock), clockLayouts)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, time.UTC), nil
}

// SameDate reports whether two timestamps fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// MinutesApart returns the absolute distance between two timestamps in whole minutes.
func MinutesApart(a, b time.Time) int {
	d := a.Truncate(time.Minute).Sub(b.Truncate(time.Minute))
	if d < 0 {
		d = -d
	}
	return int(d / time.Minute)
}

func parseWithLayouts(value string, layouts []string) (time.Time, error) {
	var lastErr error
	for _, layout := range layouts {
		if len(value) != len(layout) {
			continue
		}
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("unrecognized layout")
	}
	return time.Time{}, lastErr
}
