package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/placer/internal/store"
)

// seedCheckpoints runs demo against db once per count and returns the
// checkpoint ids in order.
func seedCheckpoints(t *testing.T, db string, counts ...string) []string {
	t.Helper()
	var ids []string
	for i, n := range counts {
		args := []string{"demo", "--records", n, "--db", db, "--format", "json"}
		if i > 0 {
			args = append(args, "--resume")
		}
		out, _, err := executeRoot(t, args...)
		require.NoError(t, err)

		var result AnalysisResult
		decodeResponse(t, out, &result)
		ids = append(ids, result.Checkpoint)
	}
	return ids
}

func TestCheckpointsListEmpty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "placer.db")

	out, _, err := executeRoot(t, "checkpoints", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No checkpoints found.")

	out, _, err = executeRoot(t, "checkpoints", "list", "--db", db, "--format", "json")
	require.NoError(t, err)
	var infos []store.CheckpointInfo
	resp := decodeResponse(t, out, &infos)
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, infos)
}

func TestCheckpointsList(t *testing.T) {
	db := filepath.Join(t.TempDir(), "placer.db")
	ids := seedCheckpoints(t, db, "40", "20")

	out, _, err := executeRoot(t, "checkpoints", "list", "--db", db)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.True(t, strings.HasPrefix(lines[1], ids[0]))
	assert.True(t, strings.HasPrefix(lines[2], ids[1]))

	out, _, err = executeRoot(t, "checkpoints", "list", "--db", db, "--format", "json")
	require.NoError(t, err)
	var infos []store.CheckpointInfo
	decodeResponse(t, out, &infos)
	require.Len(t, infos, 2)
	assert.Equal(t, int64(40), infos[0].Seq)
	assert.Equal(t, int64(60), infos[1].Seq)
	assert.Equal(t, infos[1].Fields, infos[1].Decisions)
}

func TestCheckpointsShow(t *testing.T) {
	db := filepath.Join(t.TempDir(), "placer.db")
	ids := seedCheckpoints(t, db, "50")

	out, _, err := executeRoot(t, "checkpoints", "show", ids[0], "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Checkpoint "+ids[0])
	assert.Contains(t, out, "seq:    50")
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "mandatory_both")
	assert.NotContains(t, out, "Suggested DDL")

	out, _, err = executeRoot(t, "checkpoints", "show", "latest", "--db", db, "--ddl", "sqlite", "--format", "json")
	require.NoError(t, err)
	var detail CheckpointDetail
	decodeResponse(t, out, &detail)
	assert.Equal(t, ids[0], detail.ID)
	assert.Equal(t, int64(50), detail.Seq)
	assert.Len(t, detail.Decisions, detail.Fields)
	assert.Contains(t, detail.DDL, "CREATE TABLE records (")
	assert.Contains(t, detail.DDL, "TEXT NOT NULL")
}

func TestCheckpointsShowNotFound(t *testing.T) {
	db := filepath.Join(t.TempDir(), "placer.db")

	for _, id := range []string{"latest", "no-such-id"} {
		t.Run(id, func(t *testing.T) {
			out, _, err := executeRoot(t, "checkpoints", "show", id, "--db", db, "--format", "json")
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			resp := decodeResponse(t, out, nil)
			require.NotNil(t, resp.Error)
			assert.Equal(t, CodeNotFound, resp.Error.Code)
		})
	}
}

func TestCheckpointsDelete(t *testing.T) {
	db := filepath.Join(t.TempDir(), "placer.db")
	ids := seedCheckpoints(t, db, "10", "10")

	out, _, err := executeRoot(t, "checkpoints", "delete", ids[1], "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted checkpoint "+ids[1])

	out, _, err = executeRoot(t, "checkpoints", "show", "latest", "--db", db, "--format", "json")
	require.NoError(t, err)
	var detail CheckpointDetail
	decodeResponse(t, out, &detail)
	assert.Equal(t, ids[0], detail.ID)
}

func TestCheckpointsDatabaseFromConfig(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "placer.db")
	seedCheckpoints(t, db, "10")
	cfgPath := writeFile(t, dir, "placer.yaml", "store:\n  path: "+db+"\n")

	out, _, err := executeRoot(t, "checkpoints", "list", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "DIGEST")
}

func TestCheckpointsRequiresDatabase(t *testing.T) {
	_, errOut, err := executeRoot(t, "checkpoints", "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, errOut, "no database")
}

func TestShortDigest(t *testing.T) {
	assert.Equal(t, "0123456789ab", shortDigest("0123456789abcdef"))
	assert.Equal(t, "abc", shortDigest("abc"))
}
