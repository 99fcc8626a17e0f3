package service

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeValidation            Code = "validation"
	CodeNotFound              Code = "not_found"
	CodeConflict              Code = "conflict"
	CodeInsufficientInventory Code = "insufficient_inventory"
	CodeStore                 Code = "store"
)

// Error is returned by every service operation. Message is safe to show to
// API callers; Err carries the underlying cause for store failures.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidationError(format string, args ...interface{}) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(message string) *Error {
	return &Error{Code: CodeNotFound, Message: message}
}

func NewConflictError(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

func NewInsufficientInventoryError(productName string) *Error {
	return &Error{Code: CodeInsufficientInventory, Message: "Insufficient inventory for " + productName}
}

func NewStoreError(message string, err error) *Error {
	return &Error{Code: CodeStore, Message: message, Err: err}
}

// CodeOf classifies err; anything that is not a *Error counts as a store failure.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeStore
}
