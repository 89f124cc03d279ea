package source

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/placer/internal/value"
)

func TestSliceSource(t *testing.T) {
	ctx := context.Background()
	src := NewSliceSource(value.Object{"a": value.Int(1)}, value.Object{"b": value.Int(2)})

	recs, err := Collect(ctx, src, 0)
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, src.Close())
}

func TestSliceSourceHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSliceSource(value.Object{}).Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollectLimit(t *testing.T) {
	src := NewGenerator(1)
	recs, err := Collect(context.Background(), src, 5)
	require.NoError(t, err)
	assert.Len(t, recs, 5)
}

func TestFileSourceLayouts(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"array", `[{"a": 1}, {"a": 2.5}, {"b": "x"}]`},
		{"envelope", `{"records": [{"a": 1}, {"a": 2.5}, {"b": "x"}]}`},
		{"ndjson", "{\"a\": 1}\n{\"a\": 2.5}\n\n{\"b\": \"x\"}\n"},
		{"leading whitespace", "\n\t [ {\"a\": 1}, {\"a\": 2.5}, {\"b\": \"x\"} ]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewReaderSource(strings.NewReader(tt.input))
			recs, err := Collect(context.Background(), src, 0)
			require.NoError(t, err)
			require.Len(t, recs, 3)

			assert.Equal(t, value.Int(1), recs[0]["a"])
			assert.Equal(t, value.Float(2.5), recs[1]["a"])
			assert.Equal(t, value.String("x"), recs[2]["b"])
		})
	}
}

func TestFileSourceSingleObjectIsOneRecord(t *testing.T) {
	src := NewReaderSource(strings.NewReader(`{"records": 3, "name": "x"}`))
	recs, err := Collect(context.Background(), src, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, value.Int(3), recs[0]["records"])
}

func TestFileSourceEmpty(t *testing.T) {
	src := NewReaderSource(strings.NewReader("  \n"))
	recs, err := Collect(context.Background(), src, 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestFileSourceRejectsNonObjectRecords(t *testing.T) {
	src := NewReaderSource(strings.NewReader(`[{"a": 1}, [1, 2]]`))
	ctx := context.Background()

	_, err := src.Next(ctx)
	require.NoError(t, err)

	_, err = src.Next(ctx)
	require.Error(t, err)
	assert.True(t, value.IsInputShapeError(err))
	assert.Contains(t, err.Error(), "records[1]")
}

func TestFileSourceRejectsScalarFile(t *testing.T) {
	_, err := NewReaderSource(strings.NewReader(`"hello"`)).Next(context.Background())
	require.Error(t, err)
	assert.True(t, value.IsInputShapeError(err))
}

func TestFileSourceMalformedJSON(t *testing.T) {
	src := NewReaderSource(strings.NewReader(`[{"a": 1}, {"a": `))
	ctx := context.Background()

	_, err := src.Next(ctx)
	require.NoError(t, err)
	_, err = src.Next(ctx)
	require.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF))
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"IP": "10.0.0.1"}]`), 0o644))

	src, err := OpenFile(path)
	require.NoError(t, err)
	defer src.Close()

	recs, err := Collect(context.Background(), src, 0)
	require.NoError(t, err)
	assert.Equal(t, []value.Object{{"IP": value.String("10.0.0.1")}}, recs)
}

func TestOpenFileMissing(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
