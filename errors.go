package gobinder

import (
	"errors"
	"syscall"

	"github.com/ehrlich-b/gobinder/internal/errs"
)

// Error is gobinder's structured error type: an error kind from the binder
// taxonomy (spec §7), the operation that produced it, and whatever kernel
// errno or wrapped error explains it. It is a type alias for the taxonomy
// type every internal package already returns, so callers can type-assert
// errors coming out of internal/parcel, internal/binderthread, or
// internal/process without gobinder re-wrapping them.
type Error = errs.Error

// ErrorCode is the binder error taxonomy (spec §7): the set of transport-level
// failure kinds a synchronous call can surface, distinct from the
// exception-reply wire encoding used for service-level errors (see status.go).
type ErrorCode = errs.Code

const (
	ErrOK                 = errs.OK
	ErrNoMemory           = errs.NoMemory
	ErrNoSuchObject       = errs.NoSuchObject
	ErrBadIndex           = errs.BadIndex
	ErrBadValue           = errs.BadValue
	ErrBadType            = errs.BadType
	ErrNameNotFound       = errs.NameNotFound
	ErrPermissionDenied   = errs.PermissionDenied
	ErrNotAllowed         = errs.NotAllowed
	ErrWouldBlock         = errs.WouldBlock
	ErrTimedOut           = errs.TimedOut
	ErrUnexpectedNull     = errs.UnexpectedNull
	ErrNotEnoughData      = errs.NotEnoughData
	ErrDeadObject         = errs.DeadObject
	ErrFailedTransaction  = errs.FailedTransaction
	ErrUnknownTransaction = errs.UnknownTransaction
	ErrFdsNotAllowed      = errs.FdsNotAllowed
	ErrUnexpectedSize     = errs.UnexpectedSize
	ErrUnknown            = errs.Unknown
)

// NewError creates a structured error with the given taxonomy code.
func NewError(op string, code ErrorCode, msg string) *Error {
	return errs.New(op, code, msg)
}

// NewErrorWithErrno creates a structured error carrying the kernel errno that produced it.
func NewErrorWithErrno(op string, code ErrorCode, errno syscall.Errno) *Error {
	return errs.WithErrno(op, code, errno)
}

// WrapError wraps an arbitrary error with operation context, mapping
// syscall.Errno values to the closest taxonomy kind.
func WrapError(op string, inner error) *Error {
	return errs.Wrap(op, inner)
}

// IsCode reports whether err is a *Error with the given taxonomy code.
func IsCode(err error, code ErrorCode) bool {
	var be *Error
	return errors.As(err, &be) && be.Code == code
}

// IsErrno reports whether err is a *Error carrying the given kernel errno.
func IsErrno(err error, errno syscall.Errno) bool {
	var be *Error
	return errors.As(err, &be) && be.Errno == errno
}
