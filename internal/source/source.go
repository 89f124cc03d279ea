package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/placer/internal/value"
)

// Source produces records one at a time.
type Source interface {
	// Next returns the next record, or io.EOF when the stream is exhausted.
	Next(ctx context.Context) (value.Object, error)

	// Close releases resources held by the source.
	Close() error
}

// SliceSource serves records from memory.
type SliceSource struct {
	records []value.Object
	pos     int
}

// NewSliceSource returns a Source over records.
func NewSliceSource(records ...value.Object) *SliceSource {
	return &SliceSource{records: records}
}

// Next implements Source.
func (s *SliceSource) Next(ctx context.Context) (value.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, nil
}

// Close implements Source.
func (s *SliceSource) Close() error {
	return nil
}

// Collect drains src, returning at most limit records (0 means no limit).
func Collect(ctx context.Context, src Source, limit int) ([]value.Object, error) {
	var out []value.Object
	for limit <= 0 || len(out) < limit {
		rec, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// recordsFromBatch interprets a decoded batch payload: an array of records,
// an object with a "records" array, or a single record.
func recordsFromBatch(v value.Value) ([]value.Object, error) {
	switch val := v.(type) {
	case value.Array:
		return recordsFromArray(val)
	case value.Object:
		if inner, ok := val["records"].(value.Array); ok && len(val) == 1 {
			return recordsFromArray(inner)
		}
		return []value.Object{val}, nil
	default:
		return nil, &value.InputShapeError{Got: string(value.Tag(v))}
	}
}

func recordsFromArray(arr value.Array) ([]value.Object, error) {
	out := make([]value.Object, 0, len(arr))
	for i, elem := range arr {
		rec, err := value.AsRecord(elem)
		if err != nil {
			return nil, withIndex(err, i)
		}
		out = append(out, rec)
	}
	return out, nil
}

func withIndex(err error, i int) error {
	var se *value.InputShapeError
	if errors.As(err, &se) {
		return &value.InputShapeError{Got: se.Got, Path: indexPath(i)}
	}
	return err
}

func indexPath(i int) string {
	return fmt.Sprintf("records[%d]", i)
}
