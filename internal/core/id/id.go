// Package id provides identifiers: UUIDv7 for records created by the gateway and
// Ref for records owned by the backend.
package id

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// ID is a type alias for UUID, used for locally generated records
// (movement lines, registration flows).
type ID = uuid.UUID

// New generates a new UUIDv7 (time-ordered UUID).
func New() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to V4 if V7 fails (should never happen)
		return uuid.New()
	}
	return id
}

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse converts string to ID, panics on error.
// Use only for constants and tests.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// IsNil checks if ID is zero-value.
func IsNil(id ID) bool {
	return id == uuid.Nil
}

// Ref is a backend primary key. The backend serializes keys as integers on some
// resources and as strings on others, so Ref decodes both into a string.
type Ref string

// RefFromInt formats an integer key.
func RefFromInt(v int64) Ref {
	return Ref(strconv.FormatInt(v, 10))
}

func (r Ref) String() string { return string(r) }

// IsZero reports whether no record is referenced.
func (r Ref) IsZero() bool { return r == "" }

// MarshalJSON emits a JSON number when the ref is numeric, a string otherwise,
// and null when empty.
func (r Ref) MarshalJSON() ([]byte, error) {
	if r == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(r), 10, 64); err == nil {
		return []byte(r), nil
	}
	return json.Marshal(string(r))
}

// UnmarshalJSON accepts a number, a string or null.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Ref(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode ref: %w", err)
	}
	*r = Ref(n.String())
	return nil
}
