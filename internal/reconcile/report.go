package reconcile

import (
	"sort"

	"qsomerge/internal/correlate"
)

// StationSummary counts outcomes for one station tag.
type StationSummary struct {
	Tag       string `json:"tag"`
	Matched   int    `json:"matched"`
	Ambiguous int    `json:"ambiguous"`
	Unmatched int    `json:"unmatched"`
}

// Total returns the number of annotations from the station.
func (s StationSummary) Total() int {
	return s.Matched + s.Ambiguous + s.Unmatched
}

// Summary aggregates a run's outcomes.
type Summary struct {
	Total          int              `json:"total"`
	Matched        int              `json:"matched"`
	Ambiguous      int              `json:"ambiguous"`
	Unmatched      int              `json:"unmatched"`
	MatchRate      float64          `json:"match_rate"`
	ModeMismatches int              `json:"mode_mismatches"`
	Reasons        map[string]int   `json:"reasons,omitempty"`
	Stations       []StationSummary `json:"stations"`
}

// Report aggregates results. MatchRate is the matched percentage and is 100
// for an empty run.
func Report(results []correlate.MatchResult) Summary {
	summary := Summary{Total: len(results), Stations: []StationSummary{}}
	stations := make(map[string]*StationSummary)

	for _, result := range results {
		tag := result.Annotation.StationTag
		station, ok := stations[tag]
		if !ok {
			station = &StationSummary{Tag: tag}
			stations[tag] = station
		}
		if result.ModeMismatch {
			summary.ModeMismatches++
		}
		switch outcome := result.Outcome.(type) {
		case correlate.Matched:
			summary.Matched++
			station.Matched++
		case correlate.Ambiguous:
			summary.Ambiguous++
			station.Ambiguous++
		default:
			summary.Unmatched++
			station.Unmatched++
			reason := "unknown"
			if u, ok := outcome.(correlate.Unmatched); ok {
				reason = string(u.Reason)
			}
			if summary.Reasons == nil {
				summary.Reasons = make(map[string]int)
			}
			summary.Reasons[reason]++
		}
	}

	for _, station := range stations {
		summary.Stations = append(summary.Stations, *station)
	}
	sort.Slice(summary.Stations, func(i, j int) bool {
		return summary.Stations[i].Tag < summary.Stations[j].Tag
	})

	summary.MatchRate = 100
	if summary.Total > 0 {
		summary.MatchRate = float64(summary.Matched) * 100 / float64(summary.Total)
	}
	return summary
}

// Resolved reports whether every annotation was matched.
func (s Summary) Resolved() bool {
	return s.Matched == s.Total
}
