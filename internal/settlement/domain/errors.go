package settlement

import "errors"

var (
	// ErrEventNotFound means the referenced event id does not exist.
	ErrEventNotFound = errors.New("settlement: event not found")

	// ErrEventClosed means the event is already closed; the
	// open-to-closed transition is terminal.
	ErrEventClosed = errors.New("settlement: event already closed")

	ErrNilEvent          = errors.New("settlement: nil event")
	ErrEmptyName         = errors.New("settlement: event name required")
	ErrNegativeCost      = errors.New("settlement: total cost must not be negative")
	ErrNegativeConsumers = errors.New("settlement: consumers count must not be negative")
	ErrZeroAmount        = errors.New("settlement: amount must not be zero")
)

// IsInvalidInput reports whether err is one of the creation-constraint
// violations.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrEmptyName) ||
		errors.Is(err, ErrNegativeCost) ||
		errors.Is(err, ErrNegativeConsumers) ||
		errors.Is(err, ErrZeroAmount)
}
