package document

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"maps"
)

// Fields holds the client-supplied attributes of a document that have no
// dedicated column. They are stored verbatim as a JSON object.
type Fields map[string]any

// Without returns a copy of f with the given keys removed.
func (f Fields) Without(keys ...string) Fields {
	out := make(Fields, len(f))
	maps.Copy(out, f)
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Value implements driver.Valuer
func (f Fields) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]any(f))
	if err != nil {
		return nil, fmt.Errorf("failed to encode document fields: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (f *Fields) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*f = Fields{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported document fields type %T", src)
	}

	out := Fields{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("failed to decode document fields: %w", err)
		}
	}
	*f = out
	return nil
}
