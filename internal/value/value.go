package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Value is a sealed interface over the JSON value shapes a record may carry.
// Only Null, Bool, Int, Float, String, Array, and Object implement it.
type Value interface {
	value() // Sealed
}

// TypeTag names the shape of a value as reported in type histograms.
type TypeTag string

const (
	TagNull    TypeTag = "null"
	TagBoolean TypeTag = "boolean"
	TagInteger TypeTag = "integer"
	TagFloat   TypeTag = "float"
	TagString  TypeTag = "string"
	TagArray   TypeTag = "array"
	TagObject  TypeTag = "object"
)

// ScalarTags lists the tags a relational column can hold directly.
var ScalarTags = map[TypeTag]bool{
	TagString:  true,
	TagInteger: true,
	TagFloat:   true,
	TagBoolean: true,
}

// Null represents a JSON null.
type Null struct{}

func (Null) value() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Bool represents a JSON boolean.
type Bool bool

func (Bool) value() {}

// Int represents a JSON number without a fractional or exponent part.
type Int int64

func (Int) value() {}

// Float represents any other JSON number.
type Float float64

func (Float) value() {}

// String represents a JSON string.
type String string

func (String) value() {}

// Array represents a JSON array.
type Array []Value

func (Array) value() {}

// Object represents a JSON object. Records are Objects.
// Use SortedKeys() for deterministic iteration.
type Object map[string]Value

func (Object) value() {}

// Tag returns the type tag of v. A nil Value is reported as null.
func Tag(v Value) TypeTag {
	switch v.(type) {
	case nil, Null:
		return TagNull
	case Bool:
		return TagBoolean
	case Int:
		return TagInteger
	case Float:
		return TagFloat
	case String:
		return TagString
	case Array:
		return TagArray
	case Object:
		return TagObject
	default:
		// Unreachable: Value is sealed.
		panic(fmt.Sprintf("value: unknown Value type %T", v))
	}
}

// IsScalar reports whether v is neither an Array nor an Object.
func IsScalar(v Value) bool {
	switch v.(type) {
	case Array, Object:
		return false
	default:
		return true
	}
}

// Stringify returns the text used to compare scalar values for cardinality.
//
// Floats always carry a fractional or exponent marker so that the integer 1
// and the float 1.0 count as two distinct values.
func Stringify(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return "null"
	case Bool:
		if val {
			return "true"
		}
		return "false"
	case Int:
		return strconv.FormatInt(int64(val), 10)
	case Float:
		return formatFloat(float64(val))
	case String:
		return string(val)
	default:
		data, err := Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !bytes.ContainsAny([]byte(s), ".eE") {
		s += ".0"
	}
	return s
}

// SortedKeys returns the object's keys in byte-wise lexical order.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON implements json.Marshaler for Object with sorted keys.
func (obj Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := Marshal(obj[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler for Array.
func (arr Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := Marshal(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// Marshal encodes a Value as JSON.
func Marshal(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case Bool:
		return json.Marshal(bool(val))
	case Int:
		return json.Marshal(int64(val))
	case Float:
		f := float64(val)
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("unsupported float value: %v", f)
		}
		return []byte(formatFloat(f)), nil
	case String:
		return json.Marshal(string(val))
	case Array:
		return val.MarshalJSON()
	case Object:
		return val.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}
