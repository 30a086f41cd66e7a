// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// DuplicatePhoneError is returned when an insert would violate the unique
// phone constraint.
type DuplicatePhoneError struct {
	Phone string
}

func (e *DuplicatePhoneError) Error() string {
	return fmt.Sprintf("customer with phone %s already exists", e.Phone)
}

// Helper constructor
func NewDuplicatePhone(phone string) error {
	return &DuplicatePhoneError{Phone: phone}
}

// CustomerNotFoundError is returned when an update/delete/search target does
// not exist.
type CustomerNotFoundError struct {
	Phone string
}

func (e *CustomerNotFoundError) Error() string {
	return fmt.Sprintf("customer with phone %s not found", e.Phone)
}

func NewCustomerNotFound(phone string) error {
	return &CustomerNotFoundError{Phone: phone}
}

// ValidationError carries a user-facing message for rejected input. No state
// change has happened when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// StoreError wraps an unexpected storage-layer failure. The unit of work that
// produced it has been rolled back.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewStore(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

func IsDuplicate(err error) bool {
	var target *DuplicatePhoneError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *CustomerNotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
