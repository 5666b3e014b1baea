package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var ErrInvalidName = errors.New("invalid collection name")

// DecodeError reports persisted content that could not be decoded. The
// stored data is left as it was.
type DecodeError struct {
	Collection string
	Format     string
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s (%s): %v", e.Collection, e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// WriteError reports a failed save. The previously stored data is intact.
type WriteError struct {
	Collection string
	Err        error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Collection, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ValidateName rejects names that could escape the storage root.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) || filepath.IsAbs(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
