package stripe

import (
	"errors"
	"fmt"
)

// StripeError represents a Stripe-specific error
type StripeError struct {
	Code    string
	Message string
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

// Common Stripe errors
var (
	ErrInvalidEvent         = &StripeError{Code: "invalid_event", Message: "invalid webhook event"}
	ErrMissingUserMetadata  = &StripeError{Code: "missing_user_metadata", Message: "event metadata carries no user reference"}
	ErrUserNotFound         = &StripeError{Code: "user_not_found", Message: "user not found"}
	ErrCustomerNotFound     = &StripeError{Code: "customer_not_found", Message: "stripe customer not found"}
	ErrPriceNotFound        = &StripeError{Code: "price_not_found", Message: "stripe price not found"}
	ErrInvalidConfiguration = &StripeError{Code: "invalid_configuration", Message: "invalid stripe configuration"}
	ErrAPICallFailed        = &StripeError{Code: "api_call_failed", Message: "stripe API call failed"}
	ErrWebhookValidation    = &StripeError{Code: "webhook_validation", Message: "webhook signature validation failed"}
)

// NewStripeError creates a new StripeError with the given code, message, and underlying error
func NewStripeError(code, message string, err error) *StripeError {
	return &StripeError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsValidationError reports whether the error is a webhook signature
// validation failure, the only class of webhook error that must be answered
// with a non-2xx status so the gateway retries the delivery.
func IsValidationError(err error) bool {
	var stripeErr *StripeError
	if errors.As(err, &stripeErr) {
		return stripeErr.Code == ErrWebhookValidation.Code
	}
	return false
}

// IsRetryableError determines if an error is retryable
func IsRetryableError(err error) bool {
	var stripeErr *StripeError
	if errors.As(err, &stripeErr) {
		switch stripeErr.Code {
		case "api_call_failed", "rate_limit_error", "temporary_error":
			return true
		default:
			return false
		}
	}
	return false
}
