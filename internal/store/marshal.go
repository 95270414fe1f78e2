package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// marshalBlob converts a value to JSON for storage. HTML escaping is off
// so element names and emoji are stored as written.
func marshalBlob(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("marshal blob: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// unmarshalBlob parses a stored payload. An empty payload or JSON null
// decodes to the zero value.
func unmarshalBlob(data []byte, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("unmarshal blob: %w", err)
	}
	return nil
}
