package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"qsomerge/internal/annotations"
	"qsomerge/internal/auditdb"
	"qsomerge/internal/cabrillo"
	"qsomerge/internal/config"
	"qsomerge/internal/correlate"
	"qsomerge/internal/fileutil"
	"qsomerge/internal/logging"
	"qsomerge/internal/merge"
	"qsomerge/internal/metrics"
	"qsomerge/internal/reconcile"
	"qsomerge/internal/stage"
	"qsomerge/internal/stageexec"
	"qsomerge/internal/textutil"
)

// Stage names in execution order.
const (
	StageReadLog         = "read_log"
	StageLoadAnnotations = "load_annotations"
	StageIndex           = "index"
	StageCorrelate       = "correlate"
	StageAssemble        = "assemble"
	StageWriteOutput     = "write_output"
	StageReport          = "report"
	StageAuditExport     = "audit_export"
	StageMetricsExport   = "metrics_export"
)

// Request names the inputs of one run.
type Request struct {
	LogPath string
	// AnnotationPaths are files or directories. When empty the configured
	// annotations directory is scanned.
	AnnotationPaths []string
	// DryRun correlates and reports without writing the merged log.
	DryRun bool
	// Stdout receives the merged log when the output path is "-".
	Stdout io.Writer
}

// Result is everything a run produced.
type Result struct {
	RunID       string
	StartedAt   time.Time
	LogPath     string
	OutputPath  string
	Written     bool
	Log         *cabrillo.Log
	Annotations annotations.Set
	Results     []correlate.MatchResult
	Output      merge.Output
	Summary     reconcile.Summary
	AuditPath   string
	MetricsPath string
}

// Manager executes merge runs with a fixed configuration.
type Manager struct {
	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time
}

// NewManager constructs a Manager. A nil logger discards output.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	return &Manager{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "workflow"),
		now:    time.Now,
	}
}

// Run executes every stage for req. The returned Result is populated up to
// the failing stage when an error is returned.
func (m *Manager) Run(ctx context.Context, req Request) (*Result, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		StartedAt: m.now().UTC(),
		LogPath:   req.LogPath,
	}
	ctx = stage.WithRunID(ctx, result.RunID)
	runLogger := logging.WithContext(ctx, m.logger)
	runLogger.Info("merge run started",
		logging.String("log", req.LogPath),
		logging.Bool("dry_run", req.DryRun),
	)

	var index *correlate.Index
	auditPath, auditEnabled := m.cfg.AuditPath()
	steps := []struct {
		name string
		skip string
		fn   stageexec.Func
	}{
		{StageReadLog, "", func(ctx context.Context, logger *slog.Logger) error {
			return m.readLog(logger, req, result)
		}},
		{StageLoadAnnotations, "", func(ctx context.Context, logger *slog.Logger) error {
			return m.loadAnnotations(logger, req, result)
		}},
		{StageIndex, "", func(ctx context.Context, logger *slog.Logger) error {
			var err error
			index, err = correlate.BuildIndex(result.Log.Records)
			if err != nil {
				return err
			}
			logger.Debug("index built",
				logging.Int("records", index.Len()),
				logging.Int("identifiers", index.Identifiers()),
			)
			return nil
		}},
		{StageCorrelate, "", func(ctx context.Context, logger *slog.Logger) error {
			return m.correlate(ctx, logger, index, result)
		}},
		{StageAssemble, "", func(ctx context.Context, logger *slog.Logger) error {
			out, err := merge.Assemble(result.Log.Records, result.Results)
			if err != nil {
				return err
			}
			result.Output = out
			return nil
		}},
		{StageWriteOutput, textutil.Ternary(req.DryRun, "dry run", ""), func(ctx context.Context, logger *slog.Logger) error {
			return m.writeOutput(logger, req, result)
		}},
		{StageReport, "", func(ctx context.Context, logger *slog.Logger) error {
			result.Summary = reconcile.Report(result.Results)
			logSummary(logger, result)
			return nil
		}},
		{StageAuditExport, textutil.Ternary(auditEnabled, "", "audit disabled"), func(ctx context.Context, logger *slog.Logger) error {
			if err := auditdb.Export(ctx, auditPath, m.auditRun(result)); err != nil {
				return stage.Wrap(stage.ErrIO, StageAuditExport, "export", auditPath, err)
			}
			result.AuditPath = auditPath
			logger.Info("audit database written", logging.String("path", auditPath))
			return nil
		}},
		{StageMetricsExport, textutil.Ternary(m.cfg.Metrics.TextfilePath != "", "", "metrics disabled"), func(ctx context.Context, logger *slog.Logger) error {
			rm, err := metrics.New()
			if err != nil {
				return stage.Wrap(stage.ErrIO, StageMetricsExport, "register", "", err)
			}
			rm.Observe(result.Summary, len(result.Log.Records), len(result.Annotations.Issues))
			if err := rm.WriteTextfile(m.cfg.Metrics.TextfilePath); err != nil {
				return stage.Wrap(stage.ErrIO, StageMetricsExport, "write", m.cfg.Metrics.TextfilePath, err)
			}
			result.MetricsPath = m.cfg.Metrics.TextfilePath
			return nil
		}},
	}

	for _, step := range steps {
		opts := stageexec.Options{Logger: m.logger, StageName: step.name, Skip: step.skip}
		if err := stageexec.Run(ctx, opts, step.fn); err != nil {
			return result, err
		}
	}

	runLogger.Info("merge run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Duration("duration", m.now().Sub(result.StartedAt).Round(time.Millisecond)),
	)
	return result, nil
}

func (m *Manager) readLog(logger *slog.Logger, req Request, result *Result) error {
	log, err := cabrillo.ReadFile(req.LogPath, m.cfg.CabrilloOptions())
	if err != nil {
		var parseErr *cabrillo.ParseError
		switch {
		case errors.As(err, &parseErr):
			return stage.Wrap(stage.ErrValidation, StageReadLog, "parse", req.LogPath, err)
		case errors.Is(err, os.ErrNotExist):
			return stage.Wrap(stage.ErrNotFound, StageReadLog, "open", req.LogPath, err)
		default:
			return stage.Wrap(stage.ErrIO, StageReadLog, "read", req.LogPath, err)
		}
	}
	result.Log = log
	logger.Info("contest log read",
		logging.String("path", req.LogPath),
		logging.Int("qsos", len(log.Records)),
		logging.Bool("crlf", log.CRLF),
	)
	return nil
}

func (m *Manager) loadAnnotations(logger *slog.Logger, req Request, result *Result) error {
	paths := req.AnnotationPaths
	if len(paths) == 0 && m.cfg.Input.AnnotationsDir != "" {
		paths = []string{m.cfg.Input.AnnotationsDir}
	}
	files, err := annotations.Collect(paths, m.cfg.Input.AnnotationPatterns)
	if err != nil {
		return stage.Wrap(stage.ErrIO, StageLoadAnnotations, "discover", "", err)
	}
	if len(files) == 0 {
		logging.WarnWithContext(logger, "no annotation files found", "annotations_missing",
			logging.String(logging.FieldImpact, "merged log will contain no notes"),
			logging.String(logging.FieldErrorHint, "pass annotation files or set input.annotations_dir"),
		)
	}

	set, err := annotations.Load(files)
	if err != nil {
		return stage.Wrap(stage.ErrIO, StageLoadAnnotations, "load", "", err)
	}
	for _, issue := range set.Issues {
		logging.WarnWithContext(logger, "annotation line issue", "parse_issue",
			logging.String("source", issue.Source),
			logging.Int("line", issue.Line),
			logging.String("reason", issue.Reason),
			logging.Bool("dropped", issue.Dropped),
			logging.String(logging.FieldImpact, textutil.Ternary(issue.Dropped, "line skipped", "note kept for reconciliation")),
			logging.String(logging.FieldErrorHint, "fix the annotation line and rerun"),
		)
	}
	result.Annotations = set
	logger.Info("annotations loaded",
		logging.Int("files", len(files)),
		logging.Int("records", len(set.Records)),
		logging.Int("issues", len(set.Issues)),
	)
	return nil
}

func (m *Manager) correlate(ctx context.Context, logger *slog.Logger, index *correlate.Index, result *Result) error {
	policy := m.cfg.Policy()
	results, err := correlate.CorrelateParallel(ctx, result.Annotations.Records, index, policy, m.cfg.Matching.Workers)
	if err != nil {
		return err
	}
	result.Results = results
	for _, r := range results {
		if r.ModeMismatch {
			logger.Debug("mode disagreed with every candidate",
				logging.String("annotation", r.Annotation.Location()),
				logging.String("mode", string(r.Annotation.Mode)),
			)
		}
	}
	logger.Debug("annotations correlated",
		logging.Int("annotations", len(results)),
		logging.Int("tolerance_minutes", policy.ToleranceMinutes),
		logging.String("mode_policy", string(policy.Mode)),
	)
	return nil
}

func (m *Manager) writeOutput(logger *slog.Logger, req Request, result *Result) error {
	target := m.cfg.OutputPath(req.LogPath)
	result.OutputPath = target
	data := Render(result.Log, result.Output)

	if target == "-" {
		w := req.Stdout
		if w == nil {
			w = os.Stdout
		}
		if _, err := w.Write(data); err != nil {
			return stage.Wrap(stage.ErrIO, StageWriteOutput, "write", "stdout", err)
		}
		result.Written = true
		return nil
	}

	if samePath(target, req.LogPath) {
		return stage.Wrap(stage.ErrValidation, StageWriteOutput, "check target",
			fmt.Sprintf("output %s would replace the input log", target), nil)
	}
	if err := fileutil.WriteLocked(target, data, m.cfg.Output.Overwrite); err != nil {
		marker := stage.ErrIO
		if errors.Is(err, fileutil.ErrExists) || errors.Is(err, fileutil.ErrLocked) {
			marker = stage.ErrValidation
		}
		return stage.Wrap(marker, StageWriteOutput, "write", target, err)
	}
	result.Written = true
	logger.Info("merged log written",
		logging.String("path", target),
		logging.Int("lines", len(result.Output.Merged)),
		logging.Int("unresolved", len(result.Output.Trailer)),
	)
	return nil
}

func (m *Manager) auditRun(result *Result) auditdb.Run {
	return auditdb.Run{
		ID:        result.RunID,
		StartedAt: result.StartedAt,
		LogPath:   result.LogPath,
		Policy:    m.cfg.Policy(),
		Primary:   result.Log.Records,
		Results:   result.Results,
		Summary:   result.Summary,
	}
}

func logSummary(logger *slog.Logger, result *Result) {
	s := result.Summary
	logger.Info("reconciliation summary",
		logging.Int("total", s.Total),
		logging.Int("matched", s.Matched),
		logging.Int("ambiguous", s.Ambiguous),
		logging.Int("unmatched", s.Unmatched),
		logging.Float64("match_rate", s.MatchRate),
	)
	if s.Unmatched > 0 || s.Ambiguous > 0 {
		logging.WarnWithContext(logger, "some annotations were not placed", "unresolved_annotations",
			logging.Int("unresolved", s.Unmatched+s.Ambiguous),
			logging.String(logging.FieldImpact, "notes listed in the UNRESOLVED trailer"),
			logging.String(logging.FieldErrorHint, "check call signs and times or raise matching.tolerance_minutes"),
		)
	}
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
