package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/identity-service/internal/domain"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic and sentinel errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	switch {
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, pgx.ErrNoRows):
		return &DomainError{
			Code:       "NOT_FOUND",
			Message:    "user not found",
			HTTPStatus: http.StatusNotFound,
			Details:    map[string]any{},
		}
	case errors.Is(err, domain.ErrAuthenticationFailed):
		return &DomainError{
			Code:       "AUTHENTICATION_FAILED",
			Message:    domain.ErrAuthenticationFailed.Error(),
			HTTPStatus: http.StatusUnauthorized,
		}
	case errors.Is(err, domain.ErrTokenExpiredOrInvalid):
		return &DomainError{
			Code:       "TOKEN_EXPIRED_OR_INVALID",
			Message:    domain.ErrTokenExpiredOrInvalid.Error(),
			HTTPStatus: http.StatusBadRequest,
		}
	case errors.Is(err, domain.ErrPersistenceFailure):
		return &DomainError{
			Code:       "PERSISTENCE_FAILURE",
			Message:    "storage operation failed",
			HTTPStatus: http.StatusInternalServerError,
			Err:        err,
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
