package settlement

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository is the persistence gateway consumed by the settlement
// core. Implementations assign integer ids on insert and report a
// missing event as ErrEventNotFound.
type Repository interface {
	// GetEvent loads an event without its payments.
	GetEvent(ctx context.Context, id int64) (*Event, error)

	// GetEventWithPayments loads an event and its payments ordered by
	// payment id ascending.
	GetEventWithPayments(ctx context.Context, id int64) (*Event, error)

	// ListEventsByDateDesc returns all events ordered by date descending.
	ListEventsByDateDesc(ctx context.Context) ([]Event, error)

	// CreateEvent persists a new event and returns the assigned id.
	CreateEvent(ctx context.Context, event *Event) (int64, error)

	// AddPayment persists a payment and returns the assigned id.
	AddPayment(ctx context.Context, payment *Payment) (int64, error)

	// CloseEvent persists the closed event's status and snapshot fields
	// and, when tx is non-nil, appends the fund transaction in the same
	// atomic commit. A concurrent reader must never observe a closed
	// event without snapshots, nor a non-zero surplus without its ledger
	// row. Implementations serialize concurrent closes of the same event
	// and return ErrEventClosed when the stored row is no longer open.
	CloseEvent(ctx context.Context, event *Event, tx *FundTransaction) error

	// AddFundTransaction appends a ledger row and returns the assigned id.
	AddFundTransaction(ctx context.Context, tx *FundTransaction) (int64, error)

	// ListFundTransactions returns all ledger rows ordered by id ascending.
	ListFundTransactions(ctx context.Context) ([]FundTransaction, error)

	// SumFundTransactions returns the unrounded sum of all ledger amounts.
	SumFundTransactions(ctx context.Context) (decimal.Decimal, error)
}
