// Package gwerr defines the fixed error taxonomy shared by the off-chain
// generator and the on-chain challenge verifier. Every state-model and
// syscall function returns one of these codes as-is; nothing in this
// package decides whether an error is retryable, only whether it is fatal.
package gwerr

import "fmt"

// Code is a stable integer discriminant for a state-model or syscall error.
// The syscall ABI leaks these values to contracts, so they must never be
// renumbered once assigned.
type Code int

// Recoverable codes: a contract may revert to a snapshot, propagate, or
// translate these into its own return value.
const (
	Success Code = iota
	AccountNotExists
	NotFound
	DuplicatedScriptHash
	InvalidAccountScript
	UnknownScriptCodeHash
	InsufficientBalance
	AmountOverflow
	UnknownArgs
)

// Fatal codes: no state is committed when one of these is returned.
const (
	InvalidContext Code = iota + 100
	InvalidData
	InvalidSudtScript
	BufferOverflow
	SmtFetch
	SmtStore
	SmtVerify
	SmtCalculateRoot
	InvalidCheckPoint
	MismatchReturnData
	ScriptNotFound
	DataCellNotFound
	SignatureCellNotFound
	Unimplemented
)

var names = map[Code]string{
	Success:               "success",
	AccountNotExists:      "account not exists",
	NotFound:              "not found",
	DuplicatedScriptHash:  "duplicated script hash",
	InvalidAccountScript:  "invalid account script",
	UnknownScriptCodeHash: "unknown script code hash",
	InsufficientBalance:   "insufficient balance",
	AmountOverflow:        "amount overflow",
	UnknownArgs:           "unknown args",
	InvalidContext:        "invalid context",
	InvalidData:           "invalid data",
	InvalidSudtScript:     "invalid sudt script",
	BufferOverflow:        "buffer overflow",
	SmtFetch:              "smt fetch failed",
	SmtStore:              "smt store failed",
	SmtVerify:             "smt verify failed",
	SmtCalculateRoot:      "smt calculate root failed",
	InvalidCheckPoint:     "invalid checkpoint",
	MismatchReturnData:    "mismatch return data",
	ScriptNotFound:        "script not found",
	DataCellNotFound:      "data cell not found",
	SignatureCellNotFound: "signature cell not found",
	Unimplemented:         "unimplemented",
}

// String implements fmt.Stringer.
func (c Code) String() string {
	if s, ok := names[c]; ok {
		return s
	}
	return fmt.Sprintf("gwerr(%d)", int(c))
}

// IsFatal reports whether c aborts the transaction without committing any
// state, as opposed to a recoverable code a contract may catch.
func IsFatal(c Code) bool {
	return c >= InvalidContext
}

// Error wraps a Code as a standard error, optionally carrying additional
// diagnostic context from github.com/pkg/errors wrapping at the call site.
type Error struct {
	Code Code
	Err  error
}

// New builds an *Error for code with no wrapped cause.
func New(code Code) *Error {
	return &Error{Code: code}
}

// Wrap builds an *Error for code, carrying cause for diagnostics.
func Wrap(code Code, cause error) *Error {
	return &Error{Code: code, Err: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code.String()
}

// Unwrap allows errors.Is/errors.As to see through to the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf extracts the Code carried by err, or Success if err is nil and
// InvalidContext if err does not carry a *Error (an unexpected error shape
// is treated as fatal rather than silently ignored).
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}
	var ge *Error
	if as(err, &ge) {
		return ge.Code
	}
	return InvalidContext
}

// as is a tiny local errors.As to avoid importing "errors" just for this.
func as(err error, target **Error) bool {
	for err != nil {
		if ge, ok := err.(*Error); ok {
			*target = ge
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
