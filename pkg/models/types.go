// Package models defines the persisted entities and their wire shapes.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// StringList is a []string stored as a JSON array in a TEXT column.
type StringList []string

// Value implements driver.Valuer. A nil list is stored as an empty array.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string list: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, l)
}

// AttributeKey is the canonical comparison form of an attribute list:
// sorted and comma-joined. Two lists are the same multiset exactly when
// their keys are equal.
func AttributeKey(attrs []string) string {
	sorted := make([]string, len(attrs))
	copy(sorted, attrs)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
