package source

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/roach88/placer/internal/value"
)

// fileMode is the layout detected for a record file.
type fileMode int

const (
	modeUnknown fileMode = iota
	modeArray            // [ {...}, {...} ]
	modeStream           // {...}\n{...}\n
	modeBuffered         // {"records": [...]} served from memory
)

// FileSource reads records from a JSON file or reader.
//
// The layout is detected from the first non-space byte: '[' is a JSON
// array of records; '{' is either a single {"records": [...]} envelope or a
// stream of newline-delimited records. Arrays and streams are decoded
// lazily, one record per Next call.
type FileSource struct {
	closer io.Closer
	br     *bufio.Reader
	dec    *json.Decoder
	mode   fileMode
	index  int

	// pending holds records already decoded but not yet returned.
	pending []value.Object
}

// OpenFile opens path as a FileSource.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records file: %w", err)
	}
	return &FileSource{closer: f, br: bufio.NewReader(f)}, nil
}

// NewReaderSource wraps r as a FileSource. The caller keeps ownership of r.
func NewReaderSource(r io.Reader) *FileSource {
	return &FileSource{br: bufio.NewReader(r)}
}

// Next implements Source.
func (s *FileSource) Next(ctx context.Context) (value.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.mode == modeUnknown {
		if err := s.detect(); err != nil {
			return nil, err
		}
	}

	if len(s.pending) > 0 {
		rec := s.pending[0]
		s.pending = s.pending[1:]
		return rec, nil
	}

	switch s.mode {
	case modeArray:
		if !s.dec.More() {
			return nil, io.EOF
		}
		return s.decodeOne()
	case modeStream:
		return s.decodeOne()
	default:
		return nil, io.EOF
	}
}

// detect peeks at the first byte and positions the decoder.
func (s *FileSource) detect() error {
	first, err := s.peekNonSpace()
	if err != nil {
		if errors.Is(err, io.EOF) {
			s.mode = modeBuffered
			return nil
		}
		return fmt.Errorf("read records: %w", err)
	}

	s.dec = json.NewDecoder(s.br)
	s.dec.UseNumber()

	switch first {
	case '[':
		if _, err := s.dec.Token(); err != nil {
			return fmt.Errorf("read records: %w", err)
		}
		s.mode = modeArray
		return nil
	case '{':
		return s.detectObject()
	default:
		return &value.InputShapeError{Got: fmt.Sprintf("file starting with %q", first)}
	}
}

// detectObject decodes the first object. A lone object holding only a
// "records" array is an envelope; anything else starts a record stream.
func (s *FileSource) detectObject() error {
	var raw any
	if err := s.dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode record 0: %w", err)
	}
	v, err := value.FromAny(raw)
	if err != nil {
		return err
	}
	obj, err := value.AsRecord(v)
	if err != nil {
		return err
	}

	if _, isEnvelope := obj["records"].(value.Array); isEnvelope && len(obj) == 1 && !s.dec.More() {
		recs, err := recordsFromBatch(obj)
		if err != nil {
			return err
		}
		s.pending = recs
		s.mode = modeBuffered
		return nil
	}

	s.pending = []value.Object{obj}
	s.index = 1
	s.mode = modeStream
	return nil
}

func (s *FileSource) decodeOne() (value.Object, error) {
	var raw any
	if err := s.dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) && s.mode == modeStream {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("decode record %d: %w", s.index, err)
	}
	i := s.index
	s.index++

	v, err := value.FromAny(raw)
	if err != nil {
		return nil, err
	}
	rec, err := value.AsRecord(v)
	if err != nil {
		return nil, withIndex(err, i)
	}
	return rec, nil
}

func (s *FileSource) peekNonSpace() (byte, error) {
	for {
		b, err := s.br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := s.br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}

// Close implements Source.
func (s *FileSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
