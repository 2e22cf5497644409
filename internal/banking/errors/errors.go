package errors

import (
	"errors"
	"fmt"
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

// ProviderError marks a failure talking to the banking aggregator. These are
// recorded on the connection and retried on the next scheduled sync, never
// retried inline.
type ProviderError struct {
	Msg string
	Err error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(msg string, err error) error {
	return &ProviderError{Msg: msg, Err: err}
}

func IsProviderError(err error) bool {
	var providerError *ProviderError
	ok := errors.As(err, &providerError)
	return ok
}

type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string {
	return e.Msg
}

func NewNotFoundError(msg string) error {
	return &NotFoundError{Msg: msg}
}

func IsNotFoundError(err error) bool {
	var notFoundError *NotFoundError
	ok := errors.As(err, &notFoundError)
	return ok
}

var ErrInvalidCategory = NewValidationError("Invalid category")
var ErrInsufficientHistory = NewValidationError("At least 2 months of transaction history is required for a forecast")
