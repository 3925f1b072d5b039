package auditdb

import (
	"context"
	"fmt"
)

// OutcomeCount is the number of annotations per outcome kind.
type OutcomeCount struct {
	Outcome string
	Count   int
}

// OutcomeCounts summarizes stored annotations by outcome, ordered by name.
func (s *Store) OutcomeCounts(ctx context.Context) ([]OutcomeCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT outcome, COUNT(1) FROM annotations GROUP BY outcome ORDER BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var counts []OutcomeCount
	for rows.Next() {
		var c OutcomeCount
		if err := rows.Scan(&c.Outcome, &c.Count); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// CandidateSeqs returns the candidate sequence indices linked to the
// annotation at position, ascending.
func (s *Store) CandidateSeqs(ctx context.Context, position int) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT c.seq FROM annotation_candidates c
        JOIN annotations a ON a.id = c.annotation_id
        WHERE a.position = ? ORDER BY c.seq`, position)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var seqs []int
	for rows.Next() {
		var seq int
		if err := rows.Scan(&seq); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		seqs = append(seqs, seq)
	}
	return seqs, rows.Err()
}

// RunID returns the id of the stored run.
func (s *Store) RunID(ctx context.Context) (string, error) {
	var id string
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM runs LIMIT 1`).Scan(&id); err != nil {
		return "", fmt.Errorf("read run: %w", err)
	}
	return id, nil
}

// PrimaryCount returns the number of stored primary records.
func (s *Store) PrimaryCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM primary_records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count primary records: %w", err)
	}
	return count, nil
}
