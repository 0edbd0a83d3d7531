package docstore

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Fields is the attribute mapping of a document.
// Implements sql.Scanner and driver.Valuer for JSONB columns.
//
// Decoding uses json.Number so integral quantities survive the round trip;
// GetFloat coerces every numeric representation to float64.
type Fields map[string]any

// Scan implements sql.Scanner.
func (f *Fields) Scan(src any) error {
	if src == nil {
		*f = nil
		return nil
	}

	var source []byte
	switch v := src.(type) {
	case []byte:
		source = v
	case string:
		source = []byte(v)
	case map[string]any:
		*f = Fields(v)
		return nil
	default:
		return fmt.Errorf("unsupported type for Fields: %T", src)
	}

	if len(source) == 0 {
		*f = nil
		return nil
	}
	decoded, err := DecodeFields(source)
	if err != nil {
		return err
	}
	*f = decoded
	return nil
}

// Value implements driver.Valuer.
func (f Fields) Value() (driver.Value, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(f)
}

// DecodeFields parses a JSON object preserving numbers as json.Number.
func DecodeFields(raw []byte) (Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return Fields(out), nil
}

// UnmarshalJSON keeps numbers as json.Number.
func (f *Fields) UnmarshalJSON(raw []byte) error {
	if string(raw) == "null" {
		*f = nil
		return nil
	}
	decoded, err := DecodeFields(raw)
	if err != nil {
		return err
	}
	*f = decoded
	return nil
}

// GetString returns the string value or "" if absent or not a string.
func (f Fields) GetString(key string) string {
	if v, ok := f[key].(string); ok {
		return v
	}
	return ""
}

// GetStringPtr returns nil unless the attribute holds a string.
func (f Fields) GetStringPtr(key string) *string {
	if v, ok := f[key].(string); ok {
		return &v
	}
	return nil
}

// GetFloat returns the numeric value as float64, 0 if absent.
func (f Fields) GetFloat(key string) float64 {
	v, _ := AsFloat(f[key])
	return v
}

// GetBool returns the boolean value, false if absent.
func (f Fields) GetBool(key string) bool {
	if v, ok := f[key].(bool); ok {
		return v
	}
	return false
}

// Has reports whether key is present with a non-nil value.
func (f Fields) Has(key string) bool {
	v, ok := f[key]
	return ok && v != nil
}

// Clone creates a shallow copy.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// AsFloat converts any numeric representation produced by JSON decoding or
// by Go callers to float64.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
