package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
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

// NewInvalidCredentials covers both unknown-account and wrong-password login
// failures with one indistinguishable message.
func NewInvalidCredentials() error {
	return NewDomainError("INVALID_CREDENTIALS", "invalid credentials", http.StatusUnauthorized, nil)
}

func NewDuplicateAccount() error {
	return NewDomainError("DUPLICATE_ACCOUNT", "account already exists with this email or username", http.StatusConflict, nil)
}

// Token verification failures. Distinct messages, identical status, so a
// caller cannot probe verifier internals by status code.
func NewTokenExpired() error {
	return NewDomainError("TOKEN_EXPIRED", "token has expired", http.StatusForbidden, nil)
}

func NewTokenMalformed() error {
	return NewDomainError("TOKEN_MALFORMED", "invalid token format", http.StatusForbidden, nil)
}

func NewTokenInvalidSignature() error {
	return NewDomainError("TOKEN_INVALID_SIGNATURE", "invalid or expired token", http.StatusForbidden, nil)
}

func NewTokenMissingClaims() error {
	return NewDomainError("TOKEN_MISSING_CLAIMS", "invalid token payload", http.StatusForbidden, nil)
}

func NewOTPNotFound() error {
	return NewDomainError("OTP_NOT_FOUND", "no verification code found", http.StatusBadRequest, nil)
}

func NewOTPExpired() error {
	return NewDomainError("OTP_EXPIRED", "verification code expired", http.StatusBadRequest, nil)
}

func NewOTPMismatch() error {
	return NewDomainError("OTP_MISMATCH", "invalid verification code", http.StatusBadRequest, nil)
}

func NewCSRFMismatch() error {
	return NewDomainError("CSRF_MISMATCH", "invalid CSRF token", http.StatusForbidden, nil)
}

// NewRateLimitExceeded carries retry-after seconds so transport middleware
// can surface it both in the body and the Retry-After header.
func NewRateLimitExceeded(retryAfterSeconds int) error {
	return NewDomainError(
		"RATE_LIMIT_EXCEEDED",
		"too many requests, please try again later",
		http.StatusTooManyRequests,
		map[string]any{"retry_after": retryAfterSeconds},
	)
}

func NewDeliveryFailure(err error) error {
	return &DomainError{
		Code:       "DELIVERY_FAILURE",
		Message:    "could not deliver verification code",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
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

// IsCode reports whether err is a DomainError carrying the given code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}
