package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Error codes shared by the migration engine and the control API.
const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeTicketNotFound     = "TICKET_NOT_FOUND"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeMissingCustomField = "MISSING_CUSTOM_FIELD"
	CodeRemoteWriteFailed  = "REMOTE_WRITE_FAILED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeConflict           = "CONFLICT"
	CodeInternal           = "INTERNAL_ERROR"
)

// Sentinels matched with errors.Is through DomainError.Unwrap.
var (
	ErrNotFound           = errors.New("not found")
	ErrMissingCustomField = errors.New("missing custom field")
	ErrRemoteWrite        = errors.New("remote write failed")
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
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
		Err:        ErrNotFound,
	}
}

// NewTicketNotFound reports a Source ticket that does not exist.
func NewTicketNotFound(ticketID int64) error {
	return &DomainError{
		Code:       CodeTicketNotFound,
		Message:    fmt.Sprintf("source ticket %d not found", ticketID),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"ticket_id": ticketID},
		Err:        ErrNotFound,
	}
}

// NewUserNotFound reports a Source user that does not exist.
func NewUserNotFound(userID int64) error {
	return &DomainError{
		Code:       CodeUserNotFound,
		Message:    fmt.Sprintf("source user %d not found", userID),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"user_id": userID},
		Err:        ErrNotFound,
	}
}

// NewMissingCustomField reports a configured custom field absent on the Source ticket.
func NewMissingCustomField(ticketID int64, field string) error {
	return &DomainError{
		Code:       CodeMissingCustomField,
		Message:    fmt.Sprintf("source ticket %d has no custom field %q", ticketID, field),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"ticket_id": ticketID, "field": field},
		Err:        ErrMissingCustomField,
	}
}

// NewRemoteWriteError wraps a failed create or update against Target.
func NewRemoteWriteError(operation string, status int, body string, cause error) error {
	details := map[string]any{"operation": operation}
	if status > 0 {
		details["status"] = status
	}
	if body != "" {
		details["body"] = body
	}
	err := ErrRemoteWrite
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrRemoteWrite, cause)
	}
	return &DomainError{
		Code:       CodeRemoteWriteFailed,
		Message:    operation + " failed",
		HTTPStatus: http.StatusBadGateway,
		Details:    details,
		Err:        err,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
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
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

// Code returns the DomainError code of err, or CodeInternal.
func Code(err error) string {
	if err == nil {
		return ""
	}
	return ToDomainError(err).Code
}

// IsNotFound reports whether err is a ticket or user not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsMissingCustomField reports whether err is a mapping mismatch.
func IsMissingCustomField(err error) bool {
	return errors.Is(err, ErrMissingCustomField)
}

// IsRemoteWrite reports whether err is a failed Target write.
func IsRemoteWrite(err error) bool {
	return errors.Is(err, ErrRemoteWrite)
}
