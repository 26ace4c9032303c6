package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// JSONValue stores an arbitrary JSON document as text without re-decoding it.
type JSONValue json.RawMessage

func (v JSONValue) Value() (driver.Value, error) {
	if len(v) == 0 {
		return "null", nil
	}
	return string(v), nil
}

func (v *JSONValue) Scan(value interface{}) error {
	if v == nil {
		return fmt.Errorf("models.JSONValue: Scan on nil pointer")
	}
	if value == nil {
		*v = JSONValue("null")
		return nil
	}

	var raw string
	switch src := value.(type) {
	case []byte:
		raw = string(src)
	case string:
		raw = src
	default:
		return fmt.Errorf("models.JSONValue: unsupported Scan type %T", value)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = "null"
	}
	if !json.Valid([]byte(raw)) {
		// Legacy rows may hold bare strings; re-encode them as JSON strings.
		b, err := json.Marshal(raw)
		if err != nil {
			return err
		}
		raw = string(b)
	}
	*v = JSONValue(raw)
	return nil
}

func (v JSONValue) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return []byte(v), nil
}

func (v *JSONValue) UnmarshalJSON(data []byte) error {
	if v == nil {
		return fmt.Errorf("models.JSONValue: UnmarshalJSON on nil pointer")
	}
	*v = JSONValue(append([]byte(nil), data...))
	return nil
}
