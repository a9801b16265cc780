package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// HasCode reports whether err is (or wraps) an AppError with the given code.
// Callers branch on codes, never on message strings.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Error codes.
const (
	CodeWebhookSecretMissing = "CFG_001"
	CodeMissingSignature     = "SEC_001"
	CodeInvalidSignature     = "SEC_002"
	CodeInvalidAmount        = "PAY_001"
	CodePaymentCreation      = "PAY_002"
	CodeOrderNotFound        = "PAY_003"
	CodeRateLimitExceeded    = "RATE_001"
	CodeDatabaseError        = "SYS_001"
)

// ---- Configuration (CFG) ----

func ErrWebhookSecretMissing(provider string) *AppError {
	return New(CodeWebhookSecretMissing, fmt.Sprintf("webhook secret is not configured for provider %s", provider), http.StatusInternalServerError)
}

// ---- Webhook Authentication (SEC) ----

func ErrMissingSignature() *AppError {
	return New(CodeMissingSignature, "Missing webhook signature", http.StatusUnauthorized)
}

func ErrInvalidSignature() *AppError {
	return New(CodeInvalidSignature, "Invalid webhook signature", http.StatusUnauthorized)
}

// ---- Payment Business Logic (PAY) ----

func ErrInvalidAmount() *AppError {
	return New(CodeInvalidAmount, "Invalid amount", http.StatusBadRequest)
}

// ErrPaymentCreation reports a failed checkout-session creation. providerMsg
// carries the gateway's own error message when one was safely extracted.
func ErrPaymentCreation(providerMsg string, err error) *AppError {
	msg := "Payment creation failed"
	if providerMsg != "" {
		msg = fmt.Sprintf("Payment creation failed: %s", providerMsg)
	}
	return Wrap(CodePaymentCreation, msg, http.StatusBadGateway, err)
}

func ErrOrderNotFound() *AppError {
	return New(CodeOrderNotFound, "Order not found", http.StatusNotFound)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimitExceeded, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap(CodeDatabaseError, "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeDatabaseError, "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a PAY_001-style validation error with a specific message.
func Validation(message string) *AppError {
	return New(CodeInvalidAmount, message, http.StatusBadRequest)
}
