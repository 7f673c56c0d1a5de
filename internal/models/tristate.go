package models

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
)

// TriState is a boolean that keeps "no data" apart from a confirmed false.
type TriState int8

const (
	Unknown TriState = iota
	False
	True
)

func Known(b bool) TriState {
	if b {
		return True
	}
	return False
}

func FromNullBool(b sql.NullBool) TriState {
	if !b.Valid {
		return Unknown
	}
	return Known(b.Bool)
}

func (t TriState) IsKnown() bool { return t == True || t == False }

func (t TriState) IsTrue() bool { return t == True }

func (t TriState) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

func (t TriState) MarshalJSON() ([]byte, error) {
	switch t {
	case True:
		return []byte("true"), nil
	case False:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (t *TriState) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = Unknown
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("tri-state boolean: %w", err)
	}
	*t = Known(b)
	return nil
}
