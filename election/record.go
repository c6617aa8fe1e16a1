// Package election holds the election report data model: a flat index of
// records addressed by @id with typed accessors on top of the raw JSON.
package election

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrDuplicateID  = errors.New("duplicate @id")
	ErrNotFound     = errors.New("record not found")
	ErrMissingField = errors.New("missing required field")
	ErrWrongType    = errors.New("unexpected record type")

	// ErrUnsupportedType marks record types that are recognized but not drawable.
	ErrUnsupportedType = errors.New("unsupported content type")
)

// Record wraps one raw JSON object of the report.
type Record struct {
	ID     string
	Type   string
	Fields map[string]any
}

// NewRecord wraps a decoded JSON object.
func NewRecord(m map[string]any) *Record {
	r := &Record{Fields: m}
	r.ID, _ = m["@id"].(string)
	r.Type, _ = m["@type"].(string)
	return r
}

// Kind returns the record kind derived from its @type.
func (r *Record) Kind() Kind {
	return KindOf(r.Type)
}

func (r *Record) String() string {
	if r.ID != "" {
		return fmt.Sprintf("%s(%s)", r.Type, r.ID)
	}
	return r.Type
}

// Has reports whether the field is present and not null.
func (r *Record) Has(key string) bool {
	v, ok := r.Fields[key]
	return ok && v != nil
}

// Str returns a string field or "" when absent or of another JSON type.
func (r *Record) Str(key string) string {
	s, _ := r.Fields[key].(string)
	return s
}

// RequiredStr returns a non-empty string field or ErrMissingField.
func (r *Record) RequiredStr(key string) (string, error) {
	s := r.Str(key)
	if s == "" {
		return "", fmt.Errorf("%s: %q: %w", r, key, ErrMissingField)
	}
	return s, nil
}

// Strs returns a list of strings; non-string elements are skipped.
func (r *Record) Strs(key string) []string {
	list, _ := r.Fields[key].([]any)
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Bool returns a boolean field, false when absent.
func (r *Record) Bool(key string) bool {
	b, _ := r.Fields[key].(bool)
	return b
}

// Int returns an integer field. JSON numbers and numeric strings are accepted.
func (r *Record) Int(key string) (int, bool) {
	switch v := r.Fields[key].(type) {
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	return 0, false
}

// Objects returns the nested objects stored in a list field.
func (r *Record) Objects(key string) []*Record {
	list, _ := r.Fields[key].([]any)
	out := make([]*Record, 0, len(list))
	for _, v := range list {
		if m, ok := v.(map[string]any); ok {
			out = append(out, NewRecord(m))
		}
	}
	return out
}
