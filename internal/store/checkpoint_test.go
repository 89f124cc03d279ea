package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/placer/internal/classify"
)

func TestSaveAndLoadCheckpoint(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	cp, decisions := createTestCheckpoint(t, "cp-1", 60)

	require.NoError(t, s.SaveCheckpoint(ctx, cp, decisions))

	loaded, err := s.LoadCheckpoint(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, cp.Seq, loaded.Seq)
	assert.Equal(t, cp.Digest, loaded.Digest)
	assert.NoError(t, loaded.Verify())

	stored, err := s.Decisions(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, decisions, stored)
}

func TestSaveCheckpointIdempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	cp, decisions := createTestCheckpoint(t, "cp-1", 20)

	require.NoError(t, s.SaveCheckpoint(ctx, cp, decisions))
	require.NoError(t, s.SaveCheckpoint(ctx, cp, decisions[:1]))

	stored, err := s.Decisions(ctx, "cp-1")
	require.NoError(t, err)
	assert.Len(t, stored, len(decisions))
}

func TestSaveCheckpointRejectsBadDigest(t *testing.T) {
	s := createTestStore(t)
	cp, decisions := createTestCheckpoint(t, "cp-1", 10)
	cp.Digest = "bogus"

	err := s.SaveCheckpoint(context.Background(), cp, decisions)
	require.Error(t, err)

	infos, err := s.ListCheckpoints(context.Background())
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestSaveCheckpointRejectsEmptyID(t *testing.T) {
	s := createTestStore(t)
	cp, decisions := createTestCheckpoint(t, "cp-1", 10)
	cp.ID = ""

	assert.Error(t, s.SaveCheckpoint(context.Background(), cp, decisions))
}

func TestLatestCheckpointOrdersBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.LatestCheckpoint(ctx)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	// Saved out of order; ids sort opposite to seq.
	late, lateDecisions := createTestCheckpoint(t, "a-late", 30)
	early, earlyDecisions := createTestCheckpoint(t, "z-early", 10)
	require.NoError(t, s.SaveCheckpoint(ctx, late, lateDecisions))
	require.NoError(t, s.SaveCheckpoint(ctx, early, earlyDecisions))

	latest, err := s.LatestCheckpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a-late", latest.ID)
	assert.Equal(t, int64(30), latest.Seq)

	infos, err := s.ListCheckpoints(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "z-early", infos[0].ID)
	assert.Equal(t, int64(10), infos[0].Seq)
	assert.Equal(t, len(earlyDecisions), infos[0].Decisions)
	assert.Equal(t, len(early.Profile.Fields), infos[0].Fields)
	assert.Equal(t, "a-late", infos[1].ID)
}

func TestLoadCheckpointNotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.LoadCheckpoint(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestLoadCheckpointDetectsTampering(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	cp, decisions := createTestCheckpoint(t, "cp-1", 10)
	require.NoError(t, s.SaveCheckpoint(ctx, cp, decisions))

	_, err := s.db.Exec(`UPDATE checkpoints SET seq = seq + 1 WHERE id = ?`, "cp-1")
	require.NoError(t, err)

	_, err = s.LoadCheckpoint(ctx, "cp-1")
	assert.ErrorContains(t, err, "digest mismatch")
}

func TestDeleteCheckpointCascades(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	cp, decisions := createTestCheckpoint(t, "cp-1", 10)
	require.NoError(t, s.SaveCheckpoint(ctx, cp, decisions))

	require.NoError(t, s.DeleteCheckpoint(ctx, "cp-1"))
	require.NoError(t, s.DeleteCheckpoint(ctx, "cp-1"))

	stored, err := s.Decisions(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, []classify.Decision{}, stored)
}
