// Package errs defines the binder error taxonomy shared by every internal
// package, so that parcel decode failures, gateway ioctl failures, and
// reference-table bookkeeping errors all surface through the same *Error
// type. The root gobinder package re-exports these names for its public API.
package errs

import (
	"errors"
	"fmt"
	"syscall"
)

// Code is the binder error taxonomy (spec §7).
type Code string

// Error lets a bare Code serve as an errors.Is target (and as an error value).
func (c Code) Error() string { return string(c) }

const (
	OK                 Code = "ok"
	NoMemory           Code = "no-memory"
	NoSuchObject       Code = "no-such-object"
	BadIndex           Code = "bad-index"
	BadValue           Code = "bad-value"
	BadType            Code = "bad-type"
	NameNotFound       Code = "name-not-found"
	PermissionDenied   Code = "permission-denied"
	NotAllowed         Code = "not-allowed"
	WouldBlock         Code = "would-block"
	TimedOut           Code = "timed-out"
	UnexpectedNull     Code = "unexpected-null"
	NotEnoughData      Code = "not-enough-data"
	DeadObject         Code = "dead-object"
	FailedTransaction  Code = "failed-transaction"
	UnknownTransaction Code = "unknown-transaction"
	FdsNotAllowed      Code = "fds-not-allowed"
	UnexpectedSize     Code = "unexpected-size"
	Unknown            Code = "unknown"
)

// Error is the structured error every internal package returns.
type Error struct {
	Op    string
	Code  Code
	Errno syscall.Errno
	Msg   string
	Inner error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Op != "" {
		return fmt.Sprintf("gobinder: %s: %s", e.Op, msg)
	}
	return fmt.Sprintf("gobinder: %s", msg)
}

func (e *Error) Unwrap() error { return e.Inner }

func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if code, ok := target.(Code); ok {
		return e.Code == code
	}
	if te, ok := target.(*Error); ok {
		return e.Code == te.Code
	}
	return false
}

// New creates a structured error with the given taxonomy code.
func New(op string, code Code, msg string) *Error {
	return &Error{Op: op, Code: code, Msg: msg}
}

// Newf creates a structured error with a formatted message.
func Newf(op string, code Code, format string, args ...any) *Error {
	return &Error{Op: op, Code: code, Msg: fmt.Sprintf(format, args...)}
}

// WithErrno creates a structured error carrying a kernel errno.
func WithErrno(op string, code Code, errno syscall.Errno) *Error {
	return &Error{Op: op, Code: code, Errno: errno, Msg: errno.Error()}
}

// Wrap maps an arbitrary error (typically a syscall.Errno from an ioctl) onto
// the taxonomy, preserving it as the wrapped Inner error.
func Wrap(op string, inner error) *Error {
	if inner == nil {
		return nil
	}
	if be, ok := inner.(*Error); ok {
		return &Error{Op: op, Code: be.Code, Errno: be.Errno, Msg: be.Msg, Inner: be.Inner}
	}
	var errno syscall.Errno
	if errors.As(inner, &errno) {
		return &Error{Op: op, Code: mapErrno(errno), Errno: errno, Msg: inner.Error(), Inner: inner}
	}
	return &Error{Op: op, Code: Unknown, Msg: inner.Error(), Inner: inner}
}

func mapErrno(errno syscall.Errno) Code {
	switch errno {
	case syscall.ENOENT:
		return NameNotFound
	case syscall.ENOMEM:
		return NoMemory
	case syscall.EINVAL:
		return BadValue
	case syscall.ENOSYS, syscall.EOPNOTSUPP:
		return NotAllowed
	case syscall.EPERM, syscall.EACCES:
		return PermissionDenied
	case syscall.EAGAIN:
		return WouldBlock
	case syscall.ETIMEDOUT:
		return TimedOut
	case syscall.ESRCH, syscall.ECONNREFUSED, syscall.ENOTCONN:
		return DeadObject
	default:
		return Unknown
	}
}

// Is reports whether err is an *Error with the given taxonomy code.
func Is(err error, code Code) bool {
	var be *Error
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}
