// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrConstraint   = errors.New("constraint violation")
	ErrInvalidInput = errors.New("invalid input")
	ErrTransport    = errors.New("provider unavailable")
	ErrFormat       = errors.New("malformed payload")
	ErrStore        = errors.New("store failure")
)

const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeConstraint = "CONSTRAINT_VIOLATION"
	CodeTransport  = "PROVIDER_UNAVAILABLE"
	CodeFormat     = "FORMAT_ERROR"
	CodeInternal   = "INTERNAL_ERROR"
)

type AppError struct {
	Code       string
	Message    string
	StatusCode int
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: status,
		Err:        err,
	}
}

func ValidationError(message string) *AppError {
	return NewAppError(CodeValidation, message, http.StatusBadRequest, ErrInvalidInput)
}

func NotFoundError(message string) *AppError {
	return NewAppError(CodeNotFound, message, http.StatusNotFound, ErrNotFound)
}

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// FromError maps the error taxonomy onto HTTP semantics.
func FromError(err error) *AppError {
	if appErr, ok := IsAppError(err); ok {
		return appErr
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return NewAppError(CodeValidation, cleanMessage(err), http.StatusBadRequest, err)
	case errors.Is(err, ErrNotFound):
		return NewAppError(CodeNotFound, cleanMessage(err), http.StatusNotFound, err)
	case errors.Is(err, ErrDuplicateKey), errors.Is(err, ErrConstraint):
		return NewAppError(CodeConstraint, cleanMessage(err), http.StatusBadRequest, err)
	case errors.Is(err, ErrFormat):
		return NewAppError(CodeFormat, cleanMessage(err), http.StatusBadRequest, err)
	case errors.Is(err, ErrTransport):
		return NewAppError(CodeTransport, "Currency provider is unavailable", http.StatusInternalServerError, err)
	default:
		return NewAppError(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
	}
}

func FormatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "len":
			msgs = append(msgs, fmt.Sprintf("%s must be exactly %s characters", field, fe.Param()))
		case "numeric", "number":
			msgs = append(msgs, fmt.Sprintf("%s must contain only digits", field))
		case "alpha":
			msgs = append(msgs, fmt.Sprintf("%s must contain only letters", field))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}

	return strings.Join(msgs, "; ")
}

// cleanMessage drops the wrapped sentinel suffix so clients see the
// outermost context only.
func cleanMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{
		ErrInvalidInput, ErrNotFound, ErrDuplicateKey,
		ErrConstraint, ErrFormat,
	} {
		msg = strings.TrimSuffix(msg, ": "+sentinel.Error())
	}
	return msg
}
