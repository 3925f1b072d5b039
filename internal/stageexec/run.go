package stageexec

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"qsomerge/internal/logging"
	"qsomerge/internal/stage"
)

// Func is one unit of stage work. The logger already carries stage and run
// fields.
type Func func(ctx context.Context, logger *slog.Logger) error

// Options controls stage execution.
type Options struct {
	Logger    *slog.Logger
	StageName string
	// Skip, when set, logs the stage as skipped with this reason instead of running it.
	Skip string
}

// Run executes fn with stage-scoped context and logging. Start, completion
// and failure are logged with event_type stage_start, stage_complete and
// stage_failure.
func Run(ctx context.Context, opts Options, fn Func) error {
	if fn == nil {
		return stage.Wrap(stage.ErrInvariant, opts.StageName, "run", "stage handler unavailable", nil)
	}

	stageCtx := stage.WithStage(ctx, opts.StageName)
	stageLogger := logging.WithContext(stageCtx, opts.Logger)

	if opts.Skip != "" {
		stageLogger.Debug(
			"stage skipped",
			logging.String(logging.FieldEventType, "stage_skip"),
			logging.String("reason", opts.Skip),
		)
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	started := time.Now()
	stageLogger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))

	if err := fn(stageCtx, stageLogger); err != nil {
		return handleFailure(stageLogger, opts.StageName, started, err)
	}

	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("duration", time.Since(started).Round(time.Millisecond)),
	)
	return nil
}

func handleFailure(logger *slog.Logger, stageName string, started time.Time, stageErr error) error {
	hint := "check logs for details"
	switch {
	case errors.Is(stageErr, context.Canceled), errors.Is(stageErr, context.DeadlineExceeded):
		hint = "run was cancelled"
	case errors.Is(stageErr, stage.ErrInvariant):
		hint = "input violates log ordering rules; fix the log and rerun"
	case errors.Is(stageErr, stage.ErrValidation):
		hint = "fix the reported input line and rerun"
	case errors.Is(stageErr, stage.ErrIO):
		hint = "check file paths and permissions"
	}

	logging.ErrorWithContext(
		logger,
		"stage failed",
		"stage_failure",
		logging.String(logging.FieldErrorHint, hint),
		logging.Duration("duration", time.Since(started).Round(time.Millisecond)),
		logging.Error(stageErr),
	)
	if stageErr == nil {
		return stage.Wrap(stage.ErrIO, stageName, "run", "", nil)
	}
	return stageErr
}
