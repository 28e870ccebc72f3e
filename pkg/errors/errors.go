// Package errors carries the coded errors the layout engine returns.
//
// Every failure that reaches a caller is an [*Error] with a [Code]. The CLI
// turns the code into an exit status and the HTTP API into a response
// status; both show [UserMessage] to people.
//
// The INVALID_* codes and NOT_FOUND reject a request before anything was
// changed. LAYOUT_FAILED means the layered graph algorithm gave up on the
// diagram. Per-flow routing problems never surface here: the passes fall
// back to a template route and note it in the diagnostics.
//
//	if errors.Is(err, errors.ErrCodeInvalidScope) {
//	    // ask for a pool or expanded subprocess
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error class.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidScope    Code = "INVALID_SCOPE"
	ErrCodeInvalidStrategy Code = "INVALID_STRATEGY"
	ErrCodeInvalidDocument Code = "INVALID_DOCUMENT"
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeLayoutFailed    Code = "LAYOUT_FAILED"
	ErrCodeUnsupported     Code = "UNSUPPORTED"
	ErrCodeInternal        Code = "INTERNAL_ERROR"
)

// codes describes each code. Unknown codes behave like ErrCodeInternal.
var codes = map[Code]struct {
	status   int
	rejected bool
}{
	ErrCodeInvalidInput:    {http.StatusBadRequest, true},
	ErrCodeInvalidScope:    {http.StatusBadRequest, true},
	ErrCodeInvalidStrategy: {http.StatusBadRequest, true},
	ErrCodeInvalidDocument: {http.StatusBadRequest, true},
	ErrCodeNotFound:        {http.StatusNotFound, true},
	ErrCodeLayoutFailed:    {http.StatusUnprocessableEntity, false},
	ErrCodeUnsupported:     {http.StatusNotImplemented, false},
	ErrCodeInternal:        {http.StatusInternalServerError, false},
}

// Error is a coded error. Cause, when set, is reachable with errors.Is and
// errors.As.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is like [New] but records cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// GetCode returns the code of the first [*Error] in err's chain, or "".
func GetCode(err error) Code {
	if e := find(err); e != nil {
		return e.Code
	}
	return ""
}

func find(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// Is reports whether err's chain holds an [*Error] and the first one has
// code.
func Is(err error, code Code) bool {
	c := GetCode(err)
	return c != "" && c == code
}

// UserMessage returns the message of the first [*Error] in err's chain
// without its code, or err.Error() for uncoded errors.
func UserMessage(err error) string {
	if e := find(err); e != nil {
		return e.Message
	}
	return err.Error()
}

// IsInvalidRequest reports whether err rejects the caller's arguments, as
// opposed to a failure while computing the layout.
func IsInvalidRequest(err error) bool { return codes[GetCode(err)].rejected }

// HTTPStatus maps err to the status the API responds with.
func HTTPStatus(err error) int {
	if info, ok := codes[GetCode(err)]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}
