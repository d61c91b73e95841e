package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrOwnerNotFound       = errors.New("user not found")
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	ok := errors.As(err, &validationError)
	return ok
}

var (
	ErrMissingTransactionFields = NewValidationError("All fields are required except location")
	ErrInvalidAmount            = NewValidationError("Amount must be a number greater than zero and below 1000000000000, with at most 4 decimal places")
	ErrInvalidDate              = NewValidationError("Date must be a valid calendar date (YYYY-MM-DD)")
	ErrInvalidPaymentType       = NewValidationError("Payment type must be one of cash, card, upi")
	ErrInvalidCategory          = NewValidationError("Category must be one of expense, saving, investment")
)

// ValidationErrors collects every problem found in one input.
type ValidationErrors struct {
	Errors []error
}

func (ve *ValidationErrors) Error() string {
	errorMessages := ve.Messages()
	return fmt.Sprintf("multiple validation errors: %s", strings.Join(errorMessages, "; "))
}

func (ve *ValidationErrors) Add(err error) {
	ve.Errors = append(ve.Errors, err)
}

func (ve *ValidationErrors) Messages() []string {
	errorMessages := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		errorMessages[i] = err.Error()
	}
	return errorMessages
}

// ErrOrNil returns nil when nothing was collected, the single error when one was, and ve otherwise.
func (ve *ValidationErrors) ErrOrNil() error {
	switch len(ve.Errors) {
	case 0:
		return nil
	case 1:
		return ve.Errors[0]
	default:
		return ve
	}
}

func IsValidationErrors(err error) bool {
	var validationErrors *ValidationErrors
	ok := errors.As(err, &validationErrors)
	return ok
}
