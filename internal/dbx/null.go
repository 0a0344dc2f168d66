package dbx

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// NullString maps "" to SQL NULL.
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// NullStringPtr maps a nil pointer to SQL NULL.
func NullStringPtr(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

// StringPtr converts a scanned nullable string back to a pointer.
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func NullTime(p *time.Time) sql.NullTime {
	if p == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *p, Valid: true}
}

func TimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// StringList stores a string slice in a JSON column. A nil slice is NULL.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	var out []string
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("decode string list: %w", err)
	}
	*l = out
	return nil
}

// NullStringList is a nullable StringList; Valid is false for NULL.
type NullStringList struct {
	List  []string
	Valid bool
}

func (n NullStringList) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	list := n.List
	if list == nil {
		list = []string{}
	}
	return StringList(list).Value()
}

func (n *NullStringList) Scan(src any) error {
	if src == nil {
		n.List, n.Valid = nil, false
		return nil
	}
	var l StringList
	if err := l.Scan(src); err != nil {
		return err
	}
	n.List, n.Valid = l, true
	return nil
}
