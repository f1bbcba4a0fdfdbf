package indexer

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrUnsorted marks a record whose segment precedes the open segment.
var ErrUnsorted = errors.New("records not sorted by position")

// ConfigError reports an invalid indexing parameter or an input the
// parameters cannot apply to. It is raised before any record is read.
type ConfigError struct {
	Field string
	Value string
	cause error
}

func (e *ConfigError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.cause)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error { return e.cause }

// NewConfigError builds a ConfigError for field with the offending value.
func NewConfigError(field, value string, cause error) *ConfigError {
	return &ConfigError{Field: field, Value: value, cause: cause}
}

// MalformedRecordError reports an input line that does not carry the fields
// the indexer needs. Line is 1-based.
//
// The wrapped error (if any) can be accessed via errors.Unwrap.
type MalformedRecordError struct {
	Line   int
	Reason string
	cause  error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("line %d: malformed record: %s", e.Line, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return e.cause }

// NewMalformedRecordError builds a MalformedRecordError.
func NewMalformedRecordError(line int, reason string, cause error) *MalformedRecordError {
	return &MalformedRecordError{Line: line, Reason: reason, cause: cause}
}

// IOError reports a failure to open, read, create or write a file.
type IOError struct {
	Op    string
	Path  string
	cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.cause)
}

func (e *IOError) Unwrap() error { return e.cause }

// NewIOError wraps err with the operation and path it concerns.
// A nil err yields nil. An *fs.PathError is unwrapped so its operation and
// path are not reported twice.
func NewIOError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var ioe *IOError
	if errors.As(err, &ioe) {
		return err
	}
	var pe *fs.PathError
	if errors.As(err, &pe) {
		err = pe.Err
	}
	return &IOError{Op: op, Path: path, cause: err}
}
