// Package memory provides an in-memory persistence gateway used by
// unit tests and local development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	settlement "expense-tracker/internal/settlement/domain"
)

// Repository is an in-memory implementation of settlement.Repository.
// The single mutex doubles as the per-event close lock.
type Repository struct {
	mu sync.RWMutex

	events   map[int64]*settlement.Event
	payments map[int64][]settlement.Payment
	fund     []settlement.FundTransaction

	nextEventID   int64
	nextPaymentID int64
	nextFundID    int64
}

var _ settlement.Repository = (*Repository)(nil)

// NewRepository constructs an empty repository.
func NewRepository() *Repository {
	return &Repository{
		events:   make(map[int64]*settlement.Event),
		payments: make(map[int64][]settlement.Payment),
	}
}

// GetEvent loads an event without payments.
func (r *Repository) GetEvent(ctx context.Context, id int64) (*settlement.Event, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.events[id]
	if !ok {
		return nil, settlement.ErrEventNotFound
	}
	return cloneEvent(e, nil), nil
}

// GetEventWithPayments loads an event with payments ordered by id.
func (r *Repository) GetEventWithPayments(ctx context.Context, id int64) (*settlement.Event, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.events[id]
	if !ok {
		return nil, settlement.ErrEventNotFound
	}
	return cloneEvent(e, r.payments[id]), nil
}

// ListEventsByDateDesc returns all events, newest date first.
func (r *Repository) ListEventsByDateDesc(ctx context.Context) ([]settlement.Event, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]settlement.Event, 0, len(r.events))
	for _, e := range r.events {
		list = append(list, *cloneEvent(e, nil))
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

// CreateEvent assigns an id and stores the event.
func (r *Repository) CreateEvent(ctx context.Context, event *settlement.Event) (int64, error) {
	_ = ctx
	if event == nil {
		return 0, settlement.ErrNilEvent
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextEventID++
	event.ID = r.nextEventID
	r.events[event.ID] = cloneEvent(event, nil)
	return event.ID, nil
}

// AddPayment assigns an id and stores the payment. The owning event
// must exist; its status is deliberately not checked here.
func (r *Repository) AddPayment(ctx context.Context, payment *settlement.Payment) (int64, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[payment.EventID]; !ok {
		return 0, settlement.ErrEventNotFound
	}
	r.nextPaymentID++
	payment.ID = r.nextPaymentID
	r.payments[payment.EventID] = append(r.payments[payment.EventID], *payment)
	return payment.ID, nil
}

// CloseEvent persists the status flip, snapshots, and optional ledger
// append under one lock, mirroring the transactional close in Postgres.
func (r *Repository) CloseEvent(ctx context.Context, event *settlement.Event, tx *settlement.FundTransaction) error {
	_ = ctx
	if event == nil {
		return settlement.ErrNilEvent
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.events[event.ID]
	if !ok {
		return settlement.ErrEventNotFound
	}
	if stored.Status != settlement.StatusOpen {
		return settlement.ErrEventClosed
	}
	stored.Status = event.Status
	stored.PerPersonAmount = cloneDecimal(event.PerPersonAmount)
	stored.SurplusOrDeficit = cloneDecimal(event.SurplusOrDeficit)
	if tx != nil {
		r.appendFundLocked(tx)
	}
	return nil
}

// AddFundTransaction appends a ledger row.
func (r *Repository) AddFundTransaction(ctx context.Context, tx *settlement.FundTransaction) (int64, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appendFundLocked(tx)
	return tx.ID, nil
}

// ListFundTransactions returns all ledger rows ordered by id.
func (r *Repository) ListFundTransactions(ctx context.Context) ([]settlement.FundTransaction, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]settlement.FundTransaction, len(r.fund))
	copy(list, r.fund)
	return list, nil
}

// SumFundTransactions returns the raw sum of all ledger amounts.
func (r *Repository) SumFundTransactions(ctx context.Context) (decimal.Decimal, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := decimal.Zero
	for _, tx := range r.fund {
		total = total.Add(tx.Amount)
	}
	return total, nil
}

func (r *Repository) appendFundLocked(tx *settlement.FundTransaction) {
	r.nextFundID++
	tx.ID = r.nextFundID
	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now().UTC()
	}
	r.fund = append(r.fund, *tx)
}

func cloneEvent(e *settlement.Event, payments []settlement.Payment) *settlement.Event {
	if e == nil {
		return nil
	}
	clone := *e
	clone.PerPersonAmount = cloneDecimal(e.PerPersonAmount)
	clone.SurplusOrDeficit = cloneDecimal(e.SurplusOrDeficit)
	clone.Payments = nil
	if payments != nil {
		clone.Payments = make([]settlement.Payment, len(payments))
		copy(clone.Payments, payments)
		sort.Slice(clone.Payments, func(i, j int) bool {
			return clone.Payments[i].ID < clone.Payments[j].ID
		})
	}
	return &clone
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
