package approval

import "errors"

var (
	// ErrRecordNotFound is returned when no expense record exists for the id
	ErrRecordNotFound = errors.New("record not found")

	// ErrAlreadyFinalized is returned for a decision on a record that is
	// terminal or already fully approved; guards against duplicate actuation
	ErrAlreadyFinalized = errors.New("record already finalized")

	// ErrPaymentNotFound is returned when a payment confirmation references a
	// record that does not exist or is not awaiting payment
	ErrPaymentNotFound = errors.New("record not found for payment")

	// ErrBadActionToken is returned when an inbound action token cannot be decoded
	ErrBadActionToken = errors.New("malformed action token")
)
