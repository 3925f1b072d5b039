package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"qsomerge/internal/reconcile"
	"qsomerge/internal/textutil"
)

// RunMetrics holds the collectors for one merge run on a private registry.
type RunMetrics struct {
	registry *prometheus.Registry

	annotationsTotal *prometheus.CounterVec
	primaryRecords   prometheus.Gauge
	matchRate        prometheus.Gauge
	modeMismatches   prometheus.Counter
	parseIssues      prometheus.Counter
	unmatchedReasons *prometheus.CounterVec
}

// New creates and registers the run collectors.
func New() (*RunMetrics, error) {
	m := &RunMetrics{registry: prometheus.NewRegistry()}
	m.initMetrics()

	collectors := []prometheus.Collector{
		m.annotationsTotal,
		m.primaryRecords,
		m.matchRate,
		m.modeMismatches,
		m.parseIssues,
		m.unmatchedReasons,
	}
	for _, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return m, nil
}

func (m *RunMetrics) initMetrics() {
	m.annotationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qsomerge_annotations_total",
			Help: "Annotations processed in the run by station and outcome",
		},
		[]string{"station", "outcome"}, // station is the lowercased station tag
	)
	m.primaryRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "qsomerge_primary_records",
		Help: "QSO records read from the contest log",
	})
	m.matchRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "qsomerge_match_rate_percent",
		Help: "Share of annotations matched to exactly one QSO",
	})
	m.modeMismatches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "qsomerge_mode_mismatches_total",
		Help: "Annotations whose mode disagreed with every candidate QSO",
	})
	m.parseIssues = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "qsomerge_parse_issues_total",
		Help: "Annotation lines reported as malformed",
	})
	m.unmatchedReasons = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qsomerge_unmatched_total",
			Help: "Unmatched annotations by reason",
		},
		[]string{"reason"},
	)
}

// Observe records a finished run.
func (m *RunMetrics) Observe(summary reconcile.Summary, primaryCount, issues int) {
	for _, station := range summary.Stations {
		label := textutil.SanitizeToken(station.Tag)
		m.annotationsTotal.WithLabelValues(label, "matched").Add(float64(station.Matched))
		m.annotationsTotal.WithLabelValues(label, "ambiguous").Add(float64(station.Ambiguous))
		m.annotationsTotal.WithLabelValues(label, "unmatched").Add(float64(station.Unmatched))
	}
	for reason, count := range summary.Reasons {
		m.unmatchedReasons.WithLabelValues(reason).Add(float64(count))
	}
	m.primaryRecords.Set(float64(primaryCount))
	m.matchRate.Set(summary.MatchRate)
	m.modeMismatches.Add(float64(summary.ModeMismatches))
	m.parseIssues.Add(float64(issues))
}

// Registry exposes the private registry.
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the registry to path in the Prometheus text format.
func (m *RunMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
