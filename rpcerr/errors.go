// Package rpcerr defines the canonical error kinds a MissionRPC request can
// fail with, per the error table in spec.md §7. Every failure that reaches
// the wire is one of these kinds; the dispatcher never lets anything else
// escape to a Response.
package rpcerr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error kinds in spec.md §7. The string value
// is the canonical wire prefix, e.g. "UnknownService".
type Kind string

const (
	UnknownService   Kind = "UnknownService"
	UnknownProcedure Kind = "UnknownProcedure"
	WrongContext     Kind = "WrongContext"
	MissingArgument  Kind = "MissingArgument"
	InvalidArgument  Kind = "InvalidArgument"
	UnknownHandle    Kind = "UnknownHandle"
	NullReference    Kind = "NullReference"
	NullReturn       Kind = "NullReturn"
	ProcedureFailed  Kind = "ProcedureFailed"
)

// Error is a typed RPC failure. Its Error() string is "<Kind>: <detail>",
// matching the literal shape testable property #1 in spec.md §8 demands
// ("error = \"UnknownService: NonExistant\"").
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// Is lets errors.Is(err, rpcerr.Sentinel(rpcerr.UnknownService)) match any
// *Error of the same Kind, whatever its detail.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// New builds an *Error of the given kind with a formatted detail.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Sentinel returns a detail-less *Error usable with errors.Is.
func Sentinel(kind Kind) *Error {
	return &Error{Kind: kind}
}

// KindOf extracts the Kind of err if it is (or wraps) an *rpcerr.Error,
// returning ("", false) otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
