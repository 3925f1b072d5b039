package auditdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"qsomerge/internal/correlate"
	"qsomerge/internal/qso"
	"qsomerge/internal/reconcile"
)

// Run is everything recorded about one merge.
type Run struct {
	ID        string
	StartedAt time.Time
	LogPath   string
	Policy    correlate.Policy
	Primary   []qso.PrimaryRecord
	Results   []correlate.MatchResult
	Summary   reconcile.Summary
}

// Export writes run into a fresh database at path.
func Export(ctx context.Context, path string, run Run) error {
	store, err := Create(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Insert(ctx, run)
}

// Insert records run in a single transaction.
func (s *Store) Insert(ctx context.Context, run Run) error {
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin export tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if err := insertRun(ctx, tx, run); err != nil {
			return err
		}
		if err := insertPrimary(ctx, tx, run.Primary); err != nil {
			return err
		}
		if err := insertResults(ctx, tx, run.Results); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit export: %w", err)
		}
		return nil
	})
}

func insertRun(ctx context.Context, tx *sql.Tx, run Run) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO runs
        (id, started_at, log_path, tolerance_minutes, mode_policy, total, matched, ambiguous, unmatched, match_rate)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		formatTime(run.StartedAt),
		run.LogPath,
		run.Policy.ToleranceMinutes,
		string(run.Policy.Mode),
		run.Summary.Total,
		run.Summary.Matched,
		run.Summary.Ambiguous,
		run.Summary.Unmatched,
		run.Summary.MatchRate,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func insertPrimary(ctx context.Context, tx *sql.Tx, records []qso.PrimaryRecord) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO primary_records (seq, call, qso_time, band, mode, raw) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare primary insert: %w", err)
	}
	defer stmt.Close()
	for _, record := range records {
		if _, err := stmt.ExecContext(ctx,
			record.SequenceIndex,
			record.Identifier,
			formatTime(record.Timestamp),
			nullString(string(record.Band)),
			nullString(string(record.Mode)),
			record.RawText,
		); err != nil {
			return fmt.Errorf("insert primary record %d: %w", record.SequenceIndex, err)
		}
	}
	return nil
}

func insertResults(ctx context.Context, tx *sql.Tx, results []correlate.MatchResult) error {
	annStmt, err := tx.PrepareContext(ctx, `INSERT INTO annotations
        (position, station, serial, call, note_time, band, mode, note, raw, source, line, outcome, reason, mode_mismatch)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare annotation insert: %w", err)
	}
	defer annStmt.Close()
	candStmt, err := tx.PrepareContext(ctx, `INSERT INTO annotation_candidates (annotation_id, seq) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare candidate insert: %w", err)
	}
	defer candStmt.Close()

	for i, result := range results {
		a := result.Annotation
		var reason string
		if u, ok := result.Outcome.(correlate.Unmatched); ok {
			reason = string(u.Reason)
		}
		res, err := annStmt.ExecContext(ctx,
			i,
			a.StationTag,
			nullString(a.Serial),
			a.Identifier,
			nullString(formatTime(a.Timestamp)),
			nullString(string(a.Band)),
			nullString(string(a.Mode)),
			a.NoteText,
			a.RawLine,
			nullString(a.Source),
			a.Line,
			string(result.Kind()),
			nullString(reason),
			boolToInt(result.ModeMismatch),
		)
		if err != nil {
			return fmt.Errorf("insert annotation %s: %w", a.Location(), err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("annotation id: %w", err)
		}
		for _, candidate := range result.Candidates() {
			if _, err := candStmt.ExecContext(ctx, id, candidate.SequenceIndex); err != nil {
				return fmt.Errorf("insert candidate %d for %s: %w", candidate.SequenceIndex, a.Location(), err)
			}
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
