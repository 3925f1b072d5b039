package workflow

import (
	"strings"

	"qsomerge/internal/cabrillo"
	"qsomerge/internal/merge"
)

// Render composes the merged file: header, QSO lines with notes and the
// original interleaved lines, footer, then the unresolved trailer. Line
// endings follow the source log.
func Render(log *cabrillo.Log, out merge.Output) []byte {
	var header, footer []string
	var interludes map[int][]string
	newline := "\n"
	if log != nil {
		header, footer, interludes = log.Header, log.Footer, log.Interludes
		if log.CRLF {
			newline = "\r\n"
		}
	}
	lines := out.Compose(header, interludes, footer)
	if len(lines) == 0 {
		return nil
	}
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString(newline)
	}
	return []byte(b.String())
}
