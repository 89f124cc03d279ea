package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// InputShapeError reports a record that is not a string-keyed mapping, or a
// value that has no JSON shape. It is a caller contract violation and is never
// coerced away.
type InputShapeError struct {
	// Got describes what was received instead of an object.
	Got string

	// Path locates the offending value ("" for the record itself).
	Path string
}

// Error implements the error interface.
func (e *InputShapeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("input shape: %s: unexpected %s", e.Path, e.Got)
	}
	return fmt.Sprintf("input shape: record must be a string-keyed object, got %s", e.Got)
}

// IsInputShapeError returns true if err is or wraps an InputShapeError.
func IsInputShapeError(err error) bool {
	var se *InputShapeError
	return errors.As(err, &se)
}

// Decode parses a single JSON document into a Value.
// Numbers are read as json.Number so integers keep full int64 precision.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode json: trailing data after value")
	}
	return FromAny(raw)
}

// DecodeRecord parses a JSON document that must be an object.
func DecodeRecord(data []byte) (Object, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return AsRecord(v)
}

// AsRecord returns v as an Object or an InputShapeError.
func AsRecord(v Value) (Object, error) {
	obj, ok := v.(Object)
	if !ok {
		return nil, &InputShapeError{Got: string(Tag(v))}
	}
	return obj, nil
}

// RecordFromAny converts a generic Go mapping (as produced by encoding/json or
// yaml.v3) into a record.
func RecordFromAny(v any) (Object, error) {
	switch v.(type) {
	case map[string]any, Object:
	default:
		return nil, &InputShapeError{Got: describe(v)}
	}
	val, err := FromAny(v)
	if err != nil {
		return nil, err
	}
	return val.(Object), nil
}

// FromAny recursively converts a Go value into a Value.
func FromAny(v any) (Value, error) {
	return fromAny(v, "")
}

func fromAny(v any, path string) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return Float(float64(val)), nil
		}
		return Int(int64(val)), nil
	case float32:
		return Float(float64(val)), nil
	case float64:
		return Float(val), nil
	case json.Number:
		return fromNumber(val), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			conv, err := fromAny(elem, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			arr[i] = conv
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			conv, err := fromAny(elem, joinPath(path, k))
			if err != nil {
				return nil, err
			}
			obj[k] = conv
		}
		return obj, nil
	default:
		return nil, &InputShapeError{Got: describe(v), Path: orRoot(path)}
	}
}

// fromNumber keeps integers as Int and everything else as Float.
// An integer literal outside the int64 range degrades to Float.
func fromNumber(n json.Number) Value {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return Int(i)
		}
	}
	// Overflow is the only possible error here and saturates to ±Inf.
	f, _ := n.Float64()
	return Float(f)
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func orRoot(path string) string {
	if path == "" {
		return "$"
	}
	return path
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any, Array:
		return "array"
	case string, String:
		return "string"
	case bool, Bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
