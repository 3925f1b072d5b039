package qso

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maxPortableSuffix bounds the length of a trailing "/X" segment that is
// treated as a portable-operation indicator (/P, /M, /MM, /QRP, /5 ...).
// Longer segments are part of the call (e.g. OH0/LY2TS keeps LY2TS).
const maxPortableSuffix = 3

var upperCaser = cases.Upper(language.Und)

// NormalizeCallsign upper-cases a call sign and strips trailing portable
// suffixes. Applying it to its own output is a no-op.
func NormalizeCallsign(raw string) string {
	call := upperCaser.String(strings.TrimSpace(raw))
	for {
		call = strings.TrimRight(call, "/")
		idx := strings.LastIndexByte(call, '/')
		if idx <= 0 {
			return call
		}
		suffix := call[idx+1:]
		if len(suffix) > maxPortableSuffix || !isAlnum(suffix) {
			return call
		}
		call = call[:idx]
	}
}

// ValidCallsign reports whether a normalized identifier looks like an amateur
// call sign: letters, digits and '/', with at least one of each of the first two.
func ValidCallsign(call string) bool {
	if len(call) < 3 {
		return false
	}
	var letters, digits int
	for _, r := range call {
		switch {
		case r >= 'A' && r <= 'Z':
			letters++
		case r >= '0' && r <= '9':
			digits++
		case r == '/':
		default:
			return false
		}
	}
	return letters > 0 && digits > 0
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
