// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound                = errors.New("resource not found")
	ErrInvalidInput            = errors.New("invalid input")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrConflict                = errors.New("conflict")
	ErrTokenExpired            = errors.New("token expired")
	ErrTokenInvalid            = errors.New("token invalid")
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
	ErrServiceUnavailable      = errors.New("service unavailable")
)

// AppError carries an HTTP status and a stable machine-readable code.
type AppError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func BadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, "BAD_REQUEST", message, ErrInvalidInput)
}

func UnauthorizedError(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", message, ErrUnauthorized)
}

func ForbiddenError(message string) *AppError {
	return NewAppError(http.StatusForbidden, "FORBIDDEN", message, ErrForbidden)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(http.StatusNotFound, "NOT_FOUND", resource+" not found", ErrNotFound)
}

func ConflictError(message string) *AppError {
	return NewAppError(http.StatusConflict, "CONFLICT", message, ErrConflict)
}

func UnprocessableError(code, message string, err error) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, code, message, err)
}

func ServiceUnavailableError(message string) *AppError {
	return NewAppError(
		http.StatusServiceUnavailable,
		"SERVICE_UNAVAILABLE",
		message,
		ErrServiceUnavailable,
	)
}

func TokenExpiredError() *AppError {
	return NewAppError(http.StatusUnauthorized, "TOKEN_EXPIRED", "token has expired", ErrTokenExpired)
}

func TokenInvalidError() *AppError {
	return NewAppError(http.StatusUnauthorized, "TOKEN_INVALID", "token is invalid", ErrTokenInvalid)
}
