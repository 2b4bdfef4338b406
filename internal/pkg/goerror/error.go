// Package goerror defines the error vocabulary shared by usecases and transports.
//
// Usecases return *Error values; the HTTP router and the message consumers
// translate them into status codes and ack/nack decisions.
package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned by repositories when a row does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict is returned by repositories on unique violations.
	ErrConflict = errors.New("resource conflict")
)

// Type groups errors by who is at fault.
type Type int

const (
	TypeServer Type = iota
	TypeBusiness
	TypeValidation
)

func (t Type) String() string {
	switch t {
	case TypeValidation:
		return "ERROR_TYPE_VALIDATION"
	case TypeBusiness:
		return "ERROR_TYPE_BUSINESS"
	case TypeServer:
		return "ERROR_TYPE_SERVER"
	default:
		return "ERROR_TYPE_UNKNOWN"
	}
}

// Code is a stable identifier mapped onto transport status codes.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidFormat
	CodeInvalidInput
	CodeNotFound
	CodeConflict
	CodeUnauthorized
	CodeForbidden
	CodeTimeout
	CodeUnavailable
)

var codeNames = map[Code]string{
	CodeInternal:      "ERROR_CODE_INTERNAL",
	CodeInvalidFormat: "ERROR_CODE_INVALID_FORMAT",
	CodeInvalidInput:  "ERROR_CODE_INVALID_INPUT",
	CodeNotFound:      "ERROR_CODE_NOT_FOUND",
	CodeConflict:      "ERROR_CODE_CONFLICT",
	CodeUnauthorized:  "ERROR_CODE_UNAUTHORIZED",
	CodeForbidden:     "ERROR_CODE_FORBIDDEN",
	CodeTimeout:       "ERROR_CODE_TIMEOUT",
	CodeUnavailable:   "ERROR_CODE_UNAVAILABLE",
}

var codeStatus = map[Code]int{
	CodeInternal:      http.StatusInternalServerError,
	CodeInvalidFormat: http.StatusBadRequest,
	CodeInvalidInput:  http.StatusUnprocessableEntity,
	CodeNotFound:      http.StatusNotFound,
	CodeConflict:      http.StatusConflict,
	CodeUnauthorized:  http.StatusUnauthorized,
	CodeForbidden:     http.StatusForbidden,
	CodeTimeout:       http.StatusRequestTimeout,
	CodeUnavailable:   http.StatusServiceUnavailable,
}

func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return codeNames[CodeInternal]
}

// Error carries a user-facing message next to the underlying cause.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

// Error implements the error interface. The underlying cause wins over the message.
func (e *Error) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	if e.msg != "" {
		return e.msg
	}

	switch e.errType {
	case TypeValidation:
		return "Validation violation"
	case TypeBusiness:
		return "Business rule violation"
	default:
		return "Internal error"
	}
}

// String is the verbose form used in logs.
func (e *Error) String() string {
	return fmt.Sprintf("type=%s code=%s msg=%q cause=%v", e.errType, e.code, e.msg, e.err)
}

func (e *Error) Msg() string { return e.msg }
func (e *Error) Type() Type { return e.errType }
func (e *Error) Code() Code { return e.code }
func (e *Error) Fields() map[string]string { return e.fields }
func (e *Error) Unwrap() error { return e.err }

// StatusCode maps the error code to an HTTP status code.
func (e *Error) StatusCode() int {
	if st, ok := codeStatus[e.code]; ok {
		return st
	}
	return http.StatusInternalServerError
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// NewServer wraps an unexpected failure. The cause is never shown to callers.
func NewServer(err error) error {
	return &Error{err: err, msg: "Internal server error", errType: TypeServer, code: CodeInternal}
}

// NewBusiness reports a rule violation with a caller-facing message.
func NewBusiness(msg string, code Code) error {
	return &Error{msg: msg, errType: TypeBusiness, code: code}
}

// NewInvalidInput reports invalid input. When err is nil the kv pairs are
// collected as field messages.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		return &Error{err: err, msg: "Validation error", errType: TypeValidation, code: CodeInvalidInput}
	}
	if len(kv)%2 != 0 {
		return NewInvalidFormat()
	}

	fields := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[kv[i]] = kv[i+1]
	}

	return &Error{msg: "Validation error", errType: TypeValidation, code: CodeInvalidInput, fields: fields}
}

// NewInvalidFormat reports a body that could not be decoded.
func NewInvalidFormat(msgs ...string) error {
	msg := "Invalid request body"
	if len(msgs) > 0 {
		msg = msgs[0]
	}
	return &Error{msg: msg, errType: TypeValidation, code: CodeInvalidFormat}
}
