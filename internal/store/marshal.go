package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalText converts v to compact JSON TEXT for storage. HTML escaping is
// off so field names round-trip byte for byte.
func marshalText(what string, v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("marshal %s: %w", what, err)
	}
	// Encoder adds a trailing newline
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalText parses JSON TEXT into v.
func unmarshalText(what, data string, v any) error {
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", what, err)
	}
	return nil
}
