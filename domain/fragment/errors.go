package fragment

import (
	"errors"
	"fmt"
)

// Sentinel errors for the three failure kinds of a split or merge.
var (
	ErrValidation = errors.New("validation failed")
	ErrTransfer   = errors.New("transfer failed")
	ErrIntegrity  = errors.New("integrity check failed")
)

// ValidationError reports a rejected input. It is raised before any file is written.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

// NewValidationError creates a ValidationError for the named input.
func NewValidationError(field, reason string, cause error) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, Err: cause}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap returns the underlying cause.
func (e *ValidationError) Unwrap() error { return e.Err }

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// TransferError reports an I/O failure while reading or writing file content.
type TransferError struct {
	Op   string
	Path string
	Err  error
}

// NewTransferError creates a TransferError for an operation on path.
func NewTransferError(op, path string, cause error) *TransferError {
	return &TransferError{Op: op, Path: path, Err: cause}
}

// Error implements the error interface.
func (e *TransferError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *TransferError) Unwrap() error { return e.Err }

// Is matches ErrTransfer.
func (e *TransferError) Is(target error) bool { return target == ErrTransfer }

// IntegrityError reports content that was transferred without I/O errors but
// does not match the expected checksum.
type IntegrityError struct {
	Path     string
	Expected string
	Actual   string
	Reason   string
}

// NewChecksumMismatch creates an IntegrityError for a digest mismatch on path.
func NewChecksumMismatch(path, expected, actual string) *IntegrityError {
	return &IntegrityError{Path: path, Expected: expected, Actual: actual}
}

// Error implements the error interface.
func (e *IntegrityError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("integrity check failed for %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("checksum mismatch for %s: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// Is matches ErrIntegrity.
func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrity }

// Kind classifies an error into one of the failure kinds.
type Kind int

// Kind values.
const (
	KindUnknown Kind = iota
	KindValidation
	KindTransfer
	KindIntegrity
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransfer:
		return "transfer"
	case KindIntegrity:
		return "integrity"
	default:
		return "unknown"
	}
}

// KindOf returns the failure kind of err. Wrapped errors are unwrapped.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrIntegrity):
		return KindIntegrity
	case errors.Is(err, ErrTransfer):
		return KindTransfer
	default:
		return KindUnknown
	}
}
