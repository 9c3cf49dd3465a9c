// Package status implements the dispatch surface's reply-encoding
// conventions (spec §4.6): a normal reply is a leading zero, an exception
// reply is a negative exception code followed by a UTF-16 message, a
// "remote exception" integer, and (for the service-specific exception) an
// opaque service error code.
//
// This lives in its own internal package, rather than inline in
// internal/binderthread or internal/dispatch, because both the low-level
// protocol engine (encoding a BC_REPLY and decoding a BR_REPLY in Transact)
// and internal/dispatch (unknown-transaction replies) need the same wire
// convention without creating an import cycle between them.
package status

import (
	"errors"
	"fmt"

	"github.com/ehrlich-b/gobinder/internal/errs"
	"github.com/ehrlich-b/gobinder/internal/parcel"
)

// Exception codes (spec §4.6). The spec gives -129 as the worked example for
// "service-specific"; the rest follow the same family of small negative
// integers used by interoperating binder peers for the common argument/
// state exceptions a native binding's on_transact is likely to raise.
const (
	ExceptionNone            int32 = 0
	ExceptionSecurity        int32 = -1
	ExceptionBadParcelable   int32 = -2
	ExceptionIllegalArgument int32 = -3
	ExceptionNullPointer     int32 = -4
	ExceptionIllegalState    int32 = -5
	ExceptionUnsupportedOp   int32 = -7
	ExceptionServiceSpecific int32 = -129
)

// ServiceError is the user-level exception a native binding's on_transact
// can return: an opaque integer and message carried inside a successful
// transport reply (spec §7: "service-specific(code, message)").
type ServiceError struct {
	Code    int32
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service-specific exception %d: %s", e.Code, e.Message)
}

// WriteReply encodes err (nil for success) into reply using the dispatch
// surface's normal/exception reply convention.
func WriteReply(reply *parcel.Parcel, err error) {
	if err == nil {
		reply.WriteInt32(ExceptionNone)
		return
	}

	if svcErr, ok := err.(*ServiceError); ok {
		reply.WriteInt32(ExceptionServiceSpecific)
		reply.WriteString(svcErr.Message)
		reply.WriteInt32(0) // remote exception code: none, this is a direct throw
		reply.WriteInt32(svcErr.Code)
		return
	}

	code := exceptionCodeFor(err)
	reply.WriteInt32(code)
	reply.WriteString(err.Error())
	reply.WriteInt32(0)
}

func exceptionCodeFor(err error) int32 {
	var code errs.Code
	var be *errs.Error
	switch {
	case errors.As(err, &be):
		code = be.Code
	case errors.As(err, &code):
	default:
		return ExceptionIllegalState
	}
	switch code {
	case errs.BadValue, errs.BadType, errs.BadIndex:
		return ExceptionIllegalArgument
	case errs.UnexpectedNull:
		return ExceptionNullPointer
	case errs.NotAllowed, errs.PermissionDenied:
		return ExceptionSecurity
	case errs.UnknownTransaction:
		return ExceptionUnsupportedOp
	default:
		return ExceptionIllegalState
	}
}

// ReadReply decodes a reply parcel written by WriteReply. A nil error means
// success; reply's cursor is left positioned right after the status header
// in either case, ready for the caller's normal return-value reads.
func ReadReply(reply *parcel.Parcel) error {
	code, err := reply.ReadInt32()
	if err != nil {
		return err
	}
	if code == ExceptionNone {
		return nil
	}

	msg, _, err := reply.ReadString()
	if err != nil {
		return err
	}
	if _, err := reply.ReadInt32(); err != nil { // remote exception code, unused by this client
		return err
	}

	if code == ExceptionServiceSpecific {
		svcCode, err := reply.ReadInt32()
		if err != nil {
			return err
		}
		return &ServiceError{Code: svcCode, Message: msg}
	}

	return errs.New("status.readReply", exceptionToTaxonomy(code), msg)
}

func exceptionToTaxonomy(code int32) errs.Code {
	switch code {
	case ExceptionIllegalArgument, ExceptionBadParcelable:
		return errs.BadValue
	case ExceptionNullPointer:
		return errs.UnexpectedNull
	case ExceptionSecurity:
		return errs.PermissionDenied
	case ExceptionUnsupportedOp:
		return errs.UnknownTransaction
	default:
		return errs.Unknown
	}
}

// WriteUnknownTransaction encodes the "unhandled transaction code" reply a
// native binding must send when its on_transact doesn't recognize the code
// (spec §9 open question: "an unhandled transaction code in a native
// binding returns unknown-transaction as an exception reply").
func WriteUnknownTransaction(reply *parcel.Parcel, code uint32) {
	WriteReply(reply, errs.Newf("dispatch.onTransact", errs.UnknownTransaction, "unknown transaction code %d", code))
}
