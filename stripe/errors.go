package stripe

import (
	"errors"
	"fmt"

	stripeapi "github.com/stripe/stripe-go/v82"
)

// Error codes of StripeError.
const (
	CodeNotConfigured     = "not_configured"
	CodeWebhookValidation = "webhook_validation"
	CodeInvalidEvent      = "invalid_event"
	CodeAPICallFailed     = "api_call_failed"
	CodeSessionNotFound   = "session_not_found"
)

// StripeError represents a Stripe-specific error
type StripeError struct {
	Code    string
	Message string
	Type    string
	Err     error
}

func (e *StripeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stripe error [%s]: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("stripe error [%s]: %s", e.Code, e.Message)
}

func (e *StripeError) Unwrap() error {
	return e.Err
}

// Is matches any StripeError with the same code, so the values below can be
// used with errors.Is.
func (e *StripeError) Is(target error) bool {
	t, ok := target.(*StripeError)
	return ok && t.Code == e.Code
}

// Common Stripe errors
var (
	ErrNotConfigured     = &StripeError{Code: CodeNotConfigured, Message: "stripe is not configured"}
	ErrWebhookValidation = &StripeError{Code: CodeWebhookValidation, Message: "webhook signature validation failed"}
	ErrInvalidEvent      = &StripeError{Code: CodeInvalidEvent, Message: "invalid webhook event"}
	ErrAPICallFailed     = &StripeError{Code: CodeAPICallFailed, Message: "stripe API call failed"}
	ErrSessionNotFound   = &StripeError{Code: CodeSessionNotFound, Message: "checkout session not found"}
)

// NewStripeError creates a new StripeError with the given code, message, and underlying error
func NewStripeError(code, message string, err error) *StripeError {
	se := &StripeError{
		Code:    code,
		Message: message,
		Err:     err,
	}
	var apiErr *stripeapi.Error
	if errors.As(err, &apiErr) {
		se.Type = string(apiErr.Type)
	}
	return se
}

// ProviderMessage returns the message of the upstream failure behind err,
// as Stripe wrote it when available.
func ProviderMessage(err error) string {
	var apiErr *stripeapi.Error
	if errors.As(err, &apiErr) && apiErr.Msg != "" {
		return apiErr.Msg
	}
	var se *StripeError
	if errors.As(err, &se) {
		if se.Err != nil {
			return se.Err.Error()
		}
		return se.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
