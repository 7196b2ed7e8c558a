package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDocumentNotFound  = errors.New("document not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrTemporary         = errors.New("temporary failure")
)

// MismatchMarker precedes the detected format in mismatch messages.
const MismatchMarker = "detected as belonging to:"

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// DecodeError reports that no text could be obtained from a document.
type DecodeError struct {
	FileName string
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("file %s could not be read: %v", e.FileName, e.Err)
	}
	return fmt.Sprintf("file %s has no extractable text", e.FileName)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidInput, e.Err}
	}
	return []error{ErrInvalidInput}
}

// FormatMismatchError reports a document classified as a different known
// format than the caller expected.
type FormatMismatchError struct {
	FileName string
	Expected DocumentFormat
	Detected DocumentFormat
}

func (e *FormatMismatchError) Error() string {
	return fmt.Sprintf(
		"file %s does not match the expected format (%s); %s %s",
		e.FileName, e.Expected, MismatchMarker, e.Detected,
	)
}

func (e *FormatMismatchError) Unwrap() error { return ErrUnsupportedFormat }

// UnidentifiedFormatError reports text that matched no classifier rule.
type UnidentifiedFormatError struct {
	FileName string
}

func (e *UnidentifiedFormatError) Error() string {
	return fmt.Sprintf("file %s has an unidentified document format", e.FileName)
}

func (e *UnidentifiedFormatError) Unwrap() error { return ErrUnsupportedFormat }

// WarningKind distinguishes a missing field from a malformed one.
type WarningKind string

const (
	WarningMissing  WarningKind = "missing"
	WarningMismatch WarningKind = "mismatch"
)

type ValidationWarning struct {
	Field string      `json:"field"`
	Kind  WarningKind `json:"kind"`
	Value string      `json:"value,omitempty"`
}

func (w ValidationWarning) String() string {
	if w.Kind == WarningMissing {
		return fmt.Sprintf("missing field %q", w.Field)
	}
	return fmt.Sprintf("field %q with value %q does not match the expected shape", w.Field, w.Value)
}

// ValidationError is raised under strict validation and lists every failing
// field of the record.
type ValidationError struct {
	FileName string
	Format   DocumentFormat
	Warnings []ValidationWarning
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Warnings))
	for _, w := range e.Warnings {
		parts = append(parts, w.String())
	}
	return fmt.Sprintf("file %s failed %s validation: %s", e.FileName, e.Format, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
