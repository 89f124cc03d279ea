package store

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/roach88/placer/internal/classify"
	"github.com/roach88/placer/internal/pipeline"
	"github.com/roach88/placer/internal/testutil"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestCheckpoint ingests n scenario records into a fresh session and
// returns its checkpoint and decision set.
func createTestCheckpoint(t *testing.T, id string, n int) (pipeline.Checkpoint, []classify.Decision) {
	t.Helper()
	s, err := pipeline.New(
		pipeline.WithIDGenerator(pipeline.NewFixedGenerator(id)),
		pipeline.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("pipeline.New() failed: %v", err)
	}
	for _, rec := range testutil.IPSpellingRecords(n) {
		if _, err := s.Ingest(rec); err != nil {
			t.Fatalf("Ingest() failed: %v", err)
		}
	}
	cp, err := s.Checkpoint()
	if err != nil {
		t.Fatalf("Checkpoint() failed: %v", err)
	}
	return cp, s.Classify().Decisions()
}
