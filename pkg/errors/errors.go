package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeInternal     Code = "INTERNAL_ERROR"
)

type Metadata struct {
	HTTPStatus    int
	PublicMessage string
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:   {HTTPStatus: http.StatusBadRequest, PublicMessage: "datos inválidos"},
	CodeUnauthorized: {HTTPStatus: http.StatusUnauthorized, PublicMessage: "debes iniciar sesión"},
	CodeForbidden:    {HTTPStatus: http.StatusForbidden, PublicMessage: "acceso denegado"},
	CodeNotFound:     {HTTPStatus: http.StatusNotFound, PublicMessage: "recurso no encontrado"},
	CodeConflict:     {HTTPStatus: http.StatusConflict, PublicMessage: "conflicto con el estado actual"},
	CodeInternal:     {HTTPStatus: http.StatusInternalServerError, PublicMessage: "error interno del servidor"},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Error is a classified failure. Message is safe to show to end users for
// every code except CodeInternal.
type Error struct {
	code    Code
	message string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf classifies err, treating unknown errors as internal.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.Code()
	}
	return CodeInternal
}

// PublicMessage returns the text that may be shown to the client for err.
func PublicMessage(err error) string {
	typed := As(err)
	if typed == nil || typed.Code() == CodeInternal || typed.Message() == "" {
		return MetadataFor(CodeOf(err)).PublicMessage
	}
	return typed.Message()
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code && err != nil
}
