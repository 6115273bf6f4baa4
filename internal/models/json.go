package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList stores a []string as a JSON column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("models: marshal string list: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	return scanJSON(src, l, "string list")
}

// CommentList stores a []Comment as a JSON column. Comments live inside
// the item row rather than a child table, so comment edits are
// read-modify-write against the whole list.
type CommentList []Comment

// Value implements driver.Valuer.
func (l CommentList) Value() (driver.Value, error) {
	if l == nil {
		l = CommentList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("models: marshal comment list: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *CommentList) Scan(src any) error {
	return scanJSON(src, l, "comment list")
}

func scanJSON(src, dst any, what string) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("models: scan %s: unsupported type %T", what, src)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("models: scan %s: %w", what, err)
	}
	return nil
}
