package record

import (
	"fmt"
	"slices"
	"strconv"
	"time"
)

// FieldID is the identifier field shared by every schema.
const FieldID = "id"

// TimestampLayout is the DD-MM-YYYY HH:MM:SS layout used by note timestamps.
const TimestampLayout = "02-01-2006 15:04:05"

// Record - общий контракт всех записей коллекций
type Record interface {
	Kind() Kind
	GetID() int
	SetID(id int)
	// Fields lists the schema's field names in storage order, id first.
	Fields() []string
	// MutableFields lists the fields an edit may change.
	MutableFields() []string
	Field(name string) (string, error)
	SetField(name, value string) error
}

// Entity constrains P to be a pointer to T implementing Record.
type Entity[T any] interface {
	*T
	Record
}

// Touchable records carry a modification timestamp refreshed on every update.
type Touchable interface {
	Touch(now time.Time)
}

// FormatTimestamp formats t with TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp parses a TimestampLayout value in local time.
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, s, time.Local)
}

// IsMutable reports whether field may be changed on rec by an edit.
func IsMutable(rec Record, field string) bool {
	return slices.Contains(rec.MutableFields(), field)
}

func unknownField(k Kind, name string) error {
	return fmt.Errorf("%w: %s.%s", ErrUnknownField, k, name)
}

func invalidValue(k Kind, name, value string, err error) error {
	return fmt.Errorf("%w: %s.%s=%q: %v", ErrInvalidValue, k, name, value, err)
}

func parseID(k Kind, value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	id, err := strconv.Atoi(value)
	if err != nil {
		return 0, invalidValue(k, FieldID, value, err)
	}
	return id, nil
}

func formatID(id int) string {
	if id == 0 {
		return ""
	}
	return strconv.Itoa(id)
}
