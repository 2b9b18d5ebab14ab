package domain

import "errors"

var (
	// ErrDuplicatePayment means a payment log already exists for the id.
	ErrDuplicatePayment = errors.New("payment already processed")

	// ErrPaymentLogNotFound means no log exists for the id.
	ErrPaymentLogNotFound = errors.New("payment log not found")
)

// VerifyError is a verification failure with its HTTP mapping.
type VerifyError struct {
	Status    int
	Message   string
	Duplicate bool
}

func (e *VerifyError) Error() string {
	return e.Message
}

// NewVerifyError builds a non-duplicate verification failure.
func NewVerifyError(status int, message string) *VerifyError {
	return &VerifyError{Status: status, Message: message}
}
