package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrNotEligible      = errors.New("vault lifecycle precondition not met")
	ErrAlreadyTriggered = errors.New("inheritance already triggered")
	ErrAlreadyClaimed   = errors.New("inheritance share already claimed")
	ErrInvalidAmount    = errors.New("amount must be a positive integer of satoshis")
	ErrIndexUnavailable = errors.New("vault index unavailable")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrTokenExpired     = errors.New("token expired")
	ErrInvalidInput     = errors.New("invalid input")
)

// Machine-readable codes surfaced to the presentation layer. Every error
// carries a code plus a human message so the UI can show a specific
// remediation, never a bare "operation failed".
const (
	CodeValidation       = "ERR_VALIDATION"
	CodeDecode           = "ERR_DECODE"
	CodeLedgerRejection  = "ERR_LEDGER_REJECTION"
	CodeNotEligible      = "ERR_NOT_ELIGIBLE"
	CodeAlreadyTriggered = "ERR_ALREADY_TRIGGERED"
	CodeAlreadyClaimed   = "ERR_ALREADY_CLAIMED"
	CodeNotFound         = "ERR_NOT_FOUND"
	CodeInvalidAmount    = "ERR_INVALID_AMOUNT"
	CodeIndexUnavailable = "ERR_INDEX_UNAVAILABLE"
	CodeUnauthorized     = "ERR_UNAUTHORIZED"
	CodeForbidden        = "ERR_FORBIDDEN"
	CodeInternalError    = "ERR_INTERNAL"
)

// ValidationError reports the first violated allocation or amount rule.
// Always recoverable locally; surfaced before any network call.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed [%s]: %s", e.Rule, e.Message)
}

func NewValidationError(rule, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Rule: rule, Message: fmt.Sprintf(format, args...)}
}

// LedgerRejection carries the contract's own err response verbatim. The
// engine never re-interprets the ledger's error code.
type LedgerRejection struct {
	Op   string
	Code uint64
}

func (e *LedgerRejection) Error() string {
	return fmt.Sprintf("ledger rejected %s with code u%d", e.Op, e.Code)
}

// AppError is the HTTP-facing error envelope.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{Status: status, Code: code, Message: message, Err: err}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeValidation, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func Conflict(code, message string, err error) *AppError {
	return NewAppError(http.StatusConflict, code, message, err)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

// FromDomain maps a domain error to its HTTP envelope so handlers stay
// switch-free.
func FromDomain(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return NewAppError(http.StatusUnprocessableEntity, CodeValidation, verr.Message, verr)
	}

	var lrej *LedgerRejection
	if errors.As(err, &lrej) {
		return NewAppError(http.StatusBadGateway, CodeLedgerRejection, lrej.Error(), lrej)
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return NotFound(err.Error())
	case errors.Is(err, ErrNotEligible):
		return NewAppError(http.StatusConflict, CodeNotEligible, err.Error(), err)
	case errors.Is(err, ErrAlreadyTriggered):
		return NewAppError(http.StatusConflict, CodeAlreadyTriggered, err.Error(), err)
	case errors.Is(err, ErrAlreadyClaimed):
		return NewAppError(http.StatusConflict, CodeAlreadyClaimed, err.Error(), err)
	case errors.Is(err, ErrInvalidAmount):
		return NewAppError(http.StatusBadRequest, CodeInvalidAmount, err.Error(), err)
	case errors.Is(err, ErrIndexUnavailable):
		return NewAppError(http.StatusServiceUnavailable, CodeIndexUnavailable, err.Error(), err)
	case errors.Is(err, ErrUnauthorized):
		return Unauthorized(err.Error())
	case errors.Is(err, ErrForbidden):
		return Forbidden(err.Error())
	default:
		return InternalError(err)
	}
}
