package store

import (
	"context"
	"fmt"

	"github.com/roach88/placer/internal/classify"
	"github.com/roach88/placer/internal/pipeline"
)

// SaveCheckpoint stores cp together with the decisions classified at it, in
// one transaction. Uses ON CONFLICT(id) DO NOTHING for idempotency: saving
// the same checkpoint id twice keeps the first write.
//
// The checkpoint digest is verified before anything is written.
func (s *Store) SaveCheckpoint(ctx context.Context, cp pipeline.Checkpoint, decisions []classify.Decision) error {
	if cp.ID == "" {
		return fmt.Errorf("save checkpoint: empty id")
	}
	if err := cp.Verify(); err != nil {
		return fmt.Errorf("save checkpoint %s: %w", cp.ID, err)
	}

	resolverJSON, err := marshalText("resolver snapshot", cp.Resolver)
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	profileJSON, err := marshalText("profile state", cp.Profile)
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save checkpoint: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO checkpoints (id, seq, digest, resolver, profile, fields)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, cp.ID, cp.Seq, cp.Digest, resolverJSON, profileJSON, len(cp.Profile.Fields))
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Already stored; decisions belong to the first write.
		return tx.Commit()
	}

	for _, d := range decisions {
		metricsJSON, err := marshalText("decision metrics", d.Metrics)
		if err != nil {
			return fmt.Errorf("save checkpoint: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO decisions (checkpoint_id, field_name, backend, rule, reason, confidence, metrics)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, cp.ID, d.FieldName, string(d.Backend), string(d.Rule), d.Reason, d.Confidence, metricsJSON)
		if err != nil {
			return fmt.Errorf("save decision %s: %w", d.FieldName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save checkpoint: commit: %w", err)
	}
	return nil
}

// DeleteCheckpoint removes a checkpoint and, by cascade, its decisions.
// Deleting an unknown id is not an error.
func (s *Store) DeleteCheckpoint(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}
