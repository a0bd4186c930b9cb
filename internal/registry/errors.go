package registry

import (
	"errors"
	"fmt"

	"github.com/roach88/accolade/internal/ir"
)

// Error represents a rejected registry operation.
//
// Every Error is terminal for the operation that produced it: the store is
// left exactly as it was before the call.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// ID identifies the affected achievement, if any.
	ID uint64

	// Identity identifies the principal involved, if any.
	Identity ir.Identity

	// Err is the underlying cause (an authentication failure, for example).
	Err error
}

// ErrorCode categorizes registry errors.
type ErrorCode string

const (
	// ErrCodeAlreadyInitialized indicates Init ran on an initialized store.
	ErrCodeAlreadyInitialized ErrorCode = "ALREADY_INITIALIZED"

	// ErrCodeUnauthorized indicates an authentication or role check failed.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// ErrCodeNotFound indicates the referenced ID has no record.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeInvalidState indicates an edit or transition the current status forbids.
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"

	// ErrCodeStoreCorruption indicates an index references a missing record.
	// Unreachable while the invariants hold; never recovered.
	ErrCodeStoreCorruption ErrorCode = "STORE_CORRUPTION"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.ID != 0 {
		msg += fmt.Sprintf(" (id=%d)", e.ID)
	}
	if e.Identity != "" {
		msg += fmt.Sprintf(" (identity=%s)", e.Identity)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the ErrorCode of err, or "" if err is not a registry error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var re *Error
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

// IsAlreadyInitialized returns true if err is an ALREADY_INITIALIZED error.
func IsAlreadyInitialized(err error) bool { return CodeOf(err) == ErrCodeAlreadyInitialized }

// IsUnauthorized returns true if err is an UNAUTHORIZED error.
func IsUnauthorized(err error) bool { return CodeOf(err) == ErrCodeUnauthorized }

// IsNotFound returns true if err is a NOT_FOUND error.
func IsNotFound(err error) bool { return CodeOf(err) == ErrCodeNotFound }

// IsInvalidState returns true if err is an INVALID_STATE error.
func IsInvalidState(err error) bool { return CodeOf(err) == ErrCodeInvalidState }

// IsStoreCorruption returns true if err is a STORE_CORRUPTION error.
func IsStoreCorruption(err error) bool { return CodeOf(err) == ErrCodeStoreCorruption }

// NewAlreadyInitializedError creates an Error for a second Init.
func NewAlreadyInitializedError() *Error {
	return &Error{
		Code:    ErrCodeAlreadyInitialized,
		Message: "registry already initialized",
	}
}

// NewUnauthorizedError creates an Error for a failed authorization check.
func NewUnauthorizedError(message string, identity ir.Identity, cause error) *Error {
	return &Error{
		Code:     ErrCodeUnauthorized,
		Message:  message,
		Identity: identity,
		Err:      cause,
	}
}

// NewNotFoundError creates an Error for an unknown achievement.
func NewNotFoundError(id uint64) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: "achievement not found",
		ID:      id,
	}
}

// NewInvalidStateError creates an Error for a forbidden edit or transition.
func NewInvalidStateError(id uint64, status ir.Status, action string) *Error {
	return &Error{
		Code:    ErrCodeInvalidState,
		Message: fmt.Sprintf("cannot %s achievement in status %q", action, status),
		ID:      id,
	}
}

// NewStoreCorruptionError creates an Error for a broken index or record.
func NewStoreCorruptionError(message string, id uint64) *Error {
	return &Error{
		Code:    ErrCodeStoreCorruption,
		Message: message,
		ID:      id,
	}
}
