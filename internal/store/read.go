package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/placer/internal/classify"
	"github.com/roach88/placer/internal/pipeline"
)

// CheckpointInfo summarizes a stored checkpoint without its snapshots.
type CheckpointInfo struct {
	ID        string `json:"id"`
	Seq       int64  `json:"seq"`
	Digest    string `json:"digest"`
	Fields    int    `json:"fields"`
	Decisions int    `json:"decisions"`
}

// LoadCheckpoint retrieves a checkpoint by id and verifies its digest.
// Returns sql.ErrNoRows if not found.
func (s *Store) LoadCheckpoint(ctx context.Context, id string) (pipeline.Checkpoint, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, digest, resolver, profile
		FROM checkpoints
		WHERE id = ?
	`, id)
	return scanCheckpoint(row)
}

// LatestCheckpoint retrieves the checkpoint with the highest seq, ties broken
// by id. Returns sql.ErrNoRows if the store is empty.
func (s *Store) LatestCheckpoint(ctx context.Context) (pipeline.Checkpoint, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, digest, resolver, profile
		FROM checkpoints
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`)
	return scanCheckpoint(row)
}

func scanCheckpoint(row *sql.Row) (pipeline.Checkpoint, error) {
	var cp pipeline.Checkpoint
	var resolverJSON, profileJSON string
	if err := row.Scan(&cp.ID, &cp.Seq, &cp.Digest, &resolverJSON, &profileJSON); err != nil {
		return pipeline.Checkpoint{}, err
	}
	if err := unmarshalText("resolver snapshot", resolverJSON, &cp.Resolver); err != nil {
		return pipeline.Checkpoint{}, fmt.Errorf("checkpoint %s: %w", cp.ID, err)
	}
	if err := unmarshalText("profile state", profileJSON, &cp.Profile); err != nil {
		return pipeline.Checkpoint{}, fmt.Errorf("checkpoint %s: %w", cp.ID, err)
	}
	if err := cp.Verify(); err != nil {
		return pipeline.Checkpoint{}, fmt.Errorf("checkpoint %s: %w", cp.ID, err)
	}
	return cp, nil
}

// ListCheckpoints returns all checkpoints ordered by seq ASC, id ASC.
// Returns an empty slice (not nil) if none exist.
func (s *Store) ListCheckpoints(ctx context.Context) ([]CheckpointInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.seq, c.digest, c.fields, COUNT(d.field_name)
		FROM checkpoints c
		LEFT JOIN decisions d ON d.checkpoint_id = c.id
		GROUP BY c.id
		ORDER BY c.seq ASC, c.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query checkpoints: %w", err)
	}
	defer rows.Close()

	infos := []CheckpointInfo{}
	for rows.Next() {
		var info CheckpointInfo
		if err := rows.Scan(&info.ID, &info.Seq, &info.Digest, &info.Fields, &info.Decisions); err != nil {
			return nil, fmt.Errorf("scan checkpoint: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkpoints: %w", err)
	}
	return infos, nil
}

// Decisions returns the decisions stored with a checkpoint, ordered by field
// name. Returns an empty slice (not nil) if there are none.
func (s *Store) Decisions(ctx context.Context, checkpointID string) ([]classify.Decision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT field_name, backend, rule, reason, confidence, metrics
		FROM decisions
		WHERE checkpoint_id = ?
		ORDER BY field_name COLLATE BINARY ASC
	`, checkpointID)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	decisions := []classify.Decision{}
	for rows.Next() {
		var d classify.Decision
		var backend, rule, metricsJSON string
		if err := rows.Scan(&d.FieldName, &backend, &rule, &d.Reason, &d.Confidence, &metricsJSON); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		d.Backend = classify.Backend(backend)
		d.Rule = classify.Rule(rule)
		if err := unmarshalText("decision metrics", metricsJSON, &d.Metrics); err != nil {
			return nil, fmt.Errorf("decision %s: %w", d.FieldName, err)
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions: %w", err)
	}
	return decisions, nil
}
