// Package settlement holds the domain model of the shared-cost
// settlement engine: events with their payments, and the fund ledger
// fed by event closures.
package settlement

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"expense-tracker/internal/money"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	StatusOpen   EventStatus = "open"
	StatusClosed EventStatus = "closed"
)

// allowedTransitions is the full transition table. Closing is terminal;
// there is no way back to open.
var allowedTransitions = map[EventStatus]EventStatus{
	StatusOpen: StatusClosed,
}

// CanTransitionTo reports whether the status may move to next.
func (s EventStatus) CanTransitionTo(next EventStatus) bool {
	return allowedTransitions[s] == next
}

// Event is the aggregate root for one shared-cost occasion.
// PerPersonAmount and SurplusOrDeficit are nil while the event is open
// and frozen at close time.
type Event struct {
	ID             int64
	Name           string
	Date           time.Time
	TotalCost      decimal.Decimal
	ConsumersCount int
	Notes          string
	Status         EventStatus

	PerPersonAmount  *decimal.Decimal
	SurplusOrDeficit *decimal.Decimal

	Payments []Payment
}

// NewEvent builds an open event with no payments.
func NewEvent(name string, date time.Time, totalCost decimal.Decimal, consumersCount int, notes string) (*Event, error) {
	e := &Event{
		Name:           strings.TrimSpace(name),
		Date:           date,
		TotalCost:      totalCost,
		ConsumersCount: consumersCount,
		Notes:          notes,
		Status:         StatusOpen,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks the creation constraints.
func (e *Event) Validate() error {
	if e == nil {
		return ErrNilEvent
	}
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if e.TotalCost.IsNegative() {
		return ErrNegativeCost
	}
	if e.ConsumersCount < 0 {
		return ErrNegativeConsumers
	}
	return nil
}

// PerPersonShare is the even split of the total cost. A non-positive
// consumer count yields zero rather than an error.
func (e *Event) PerPersonShare() decimal.Decimal {
	if e.ConsumersCount <= 0 {
		return decimal.Zero
	}
	return money.Round2(e.TotalCost.Div(decimal.NewFromInt(int64(e.ConsumersCount))))
}

// TotalCollected sums the recorded payments. Inputs are already
// two-decimal values; the sum is rounded once anyway.
func (e *Event) TotalCollected() decimal.Decimal {
	amounts := make([]decimal.Decimal, len(e.Payments))
	for i, p := range e.Payments {
		amounts[i] = p.Amount
	}
	return money.Round2(money.Sum(amounts))
}

// SurplusOrDeficitNow is collected minus cost at this instant.
// Positive banks money, negative is a shortfall.
func (e *Event) SurplusOrDeficitNow() decimal.Decimal {
	return money.Round2(e.TotalCollected().Sub(e.TotalCost))
}

// Close freezes the settlement figures and flips the status. It is the
// only mutation of Status and the snapshot fields; a second close is a
// conflict.
func (e *Event) Close() error {
	if e == nil {
		return ErrNilEvent
	}
	if !e.Status.CanTransitionTo(StatusClosed) {
		return ErrEventClosed
	}
	perPerson := e.PerPersonShare()
	surplus := e.SurplusOrDeficitNow()
	e.PerPersonAmount = &perPerson
	e.SurplusOrDeficit = &surplus
	e.Status = StatusClosed
	return nil
}
