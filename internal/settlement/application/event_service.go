// Package application orchestrates the settlement workflows: event
// creation, payment recording, the close transition, and fund reads.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"expense-tracker/internal/money"
	"expense-tracker/internal/observability/metrics"
	settlement "expense-tracker/internal/settlement/domain"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// EventService is the single authority over the settlement state
// machine. It is the sole writer of event status and snapshot fields
// and the sole creator of event-linked fund transactions.
type EventService struct {
	repo  settlement.Repository
	clock Clock
}

// NewEventService constructs a service.
func NewEventService(repo settlement.Repository, clock Clock) (*EventService, error) {
	if repo == nil {
		return nil, errors.New("event service: nil repository")
	}
	if clock == nil {
		clock = systemClock{}
	}
	return &EventService{repo: repo, clock: clock}, nil
}

// EventSummary is the list/detail projection of an event.
type EventSummary struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	Date           time.Time        `json:"date"`
	TotalCost      decimal.Decimal  `json:"total_cost"`
	ConsumersCount int              `json:"consumers_count"`
	Notes          string           `json:"notes,omitempty"`
	Status         string           `json:"status"`
	PerPerson      *decimal.Decimal `json:"per_person_amount,omitempty"`
	Surplus        *decimal.Decimal `json:"surplus_or_deficit,omitempty"`
}

// PaymentRow is the detail projection of a payment.
type PaymentRow struct {
	ID     int64           `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
	Notes  string          `json:"notes,omitempty"`
}

// EventDetails carries an event with its computed settlement figures
// and payments in insertion order.
type EventDetails struct {
	Event          EventSummary    `json:"event"`
	PerPerson      decimal.Decimal `json:"per_person"`
	TotalCollected decimal.Decimal `json:"total_collected"`
	Surplus        decimal.Decimal `json:"surplus"`
	Payments       []PaymentRow    `json:"payments"`
}

// CreateEventInput are the creation parameters.
type CreateEventInput struct {
	Name           string
	Date           time.Time
	TotalCost      decimal.Decimal
	ConsumersCount int
	Notes          string
}

// AddPaymentInput are the payment parameters. Unknown method tags are
// coerced to "other".
type AddPaymentInput struct {
	Amount decimal.Decimal
	Method string
	Notes  string
}

// CloseResult reports the frozen figures of a just-closed event.
type CloseResult struct {
	EventID           int64           `json:"event_id"`
	Status            string          `json:"status"`
	PerPerson         decimal.Decimal `json:"per_person"`
	Surplus           decimal.Decimal `json:"surplus"`
	FundTransactionID *int64          `json:"fund_transaction_id,omitempty"`
}

// ListEvents returns all events ordered by date descending.
func (s *EventService) ListEvents(ctx context.Context) ([]EventSummary, error) {
	events, err := s.repo.ListEventsByDateDesc(ctx)
	if err != nil {
		return nil, fmt.Errorf("event service: list events: %w", err)
	}
	list := make([]EventSummary, len(events))
	for i := range events {
		list[i] = summarize(&events[i])
	}
	return list, nil
}

// GetEventDetails loads an event with its payments and the settlement
// figures. Open events report live figures; closed events report the
// snapshots frozen at close time, while collected stays live so
// post-close corrections remain visible.
func (s *EventService) GetEventDetails(ctx context.Context, id int64) (*EventDetails, error) {
	e, err := s.repo.GetEventWithPayments(ctx, id)
	if err != nil {
		return nil, err
	}

	perPerson := e.PerPersonShare()
	surplus := e.SurplusOrDeficitNow()
	if e.Status == settlement.StatusClosed {
		if e.PerPersonAmount != nil {
			perPerson = *e.PerPersonAmount
		}
		if e.SurplusOrDeficit != nil {
			surplus = *e.SurplusOrDeficit
		}
	}

	payments := make([]PaymentRow, len(e.Payments))
	for i, p := range e.Payments {
		payments[i] = PaymentRow{
			ID:     p.ID,
			Amount: p.Amount,
			Method: string(p.Method),
			Notes:  p.Notes,
		}
	}

	return &EventDetails{
		Event:          summarize(e),
		PerPerson:      perPerson,
		TotalCollected: e.TotalCollected(),
		Surplus:        surplus,
		Payments:       payments,
	}, nil
}

// CreateEvent validates the input and persists a new open event,
// returning the assigned id.
func (s *EventService) CreateEvent(ctx context.Context, in CreateEventInput) (int64, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveEventCreate(result, time.Since(start))
	}()

	e, err := settlement.NewEvent(in.Name, in.Date, in.TotalCost, in.ConsumersCount, in.Notes)
	if err != nil {
		result = metrics.ResultError
		return 0, err
	}
	id, err := s.repo.CreateEvent(ctx, e)
	if err != nil {
		result = metrics.ResultError
		return 0, fmt.Errorf("event service: create event: %w", err)
	}
	slog.Info("event created", "event_id", id, "name", e.Name)
	return id, nil
}

// AddPayment records a payment against an event. Event status is
// deliberately not checked: a closed event still accepts payments as a
// late-correction path, logged at warn level.
func (s *EventService) AddPayment(ctx context.Context, eventID int64, in AddPaymentInput) (int64, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObservePaymentAdd(result, time.Since(start))
	}()

	e, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		result = metrics.ResultError
		return 0, err
	}
	if e.Status == settlement.StatusClosed {
		slog.Warn("payment recorded on closed event", "event_id", eventID)
	}

	method, known := settlement.NormalizePaymentMethod(in.Method)
	if !known {
		slog.Debug("unknown payment method coerced to other", "event_id", eventID, "method", in.Method)
	}
	payment := &settlement.Payment{
		EventID: eventID,
		Amount:  in.Amount,
		Method:  method,
		Notes:   in.Notes,
	}
	id, err := s.repo.AddPayment(ctx, payment)
	if err != nil {
		result = metrics.ResultError
		return 0, fmt.Errorf("event service: add payment: %w", err)
	}
	return id, nil
}

// CloseEvent performs the one-way open-to-closed transition: it
// computes the figures at this instant, freezes them as snapshots, and
// posts the surplus or deficit into the fund when it is non-zero. The
// gateway commits all of it atomically and rejects a concurrent or
// repeated close with ErrEventClosed.
func (s *EventService) CloseEvent(ctx context.Context, id int64) (*CloseResult, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveEventClose(result, time.Since(start))
	}()

	e, err := s.repo.GetEventWithPayments(ctx, id)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if err := e.Close(); err != nil {
		result = metrics.ResultError
		return nil, err
	}

	var tx *settlement.FundTransaction
	if !e.SurplusOrDeficit.IsZero() {
		tx = &settlement.FundTransaction{
			Timestamp: s.clock.Now(),
			Amount:    *e.SurplusOrDeficit,
			EventID:   &e.ID,
			Notes:     fmt.Sprintf("Close event '%s'", e.Name),
		}
	}
	if err := s.repo.CloseEvent(ctx, e, tx); err != nil {
		result = metrics.ResultError
		if errors.Is(err, settlement.ErrEventClosed) || errors.Is(err, settlement.ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("event service: close event: %w", err)
	}

	res := &CloseResult{
		EventID:   e.ID,
		Status:    string(e.Status),
		PerPerson: *e.PerPersonAmount,
		Surplus:   *e.SurplusOrDeficit,
	}
	if tx != nil {
		res.FundTransactionID = &tx.ID
	}
	slog.Info("event closed",
		"event_id", e.ID,
		"per_person", res.PerPerson,
		"surplus", res.Surplus,
		"fund_posted", tx != nil,
	)
	return res, nil
}

// GetFundBalance derives the communal balance from the full ledger.
func (s *EventService) GetFundBalance(ctx context.Context) (decimal.Decimal, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveFundBalance(result, time.Since(start))
	}()

	sum, err := s.repo.SumFundTransactions(ctx)
	if err != nil {
		result = metrics.ResultError
		return decimal.Zero, fmt.Errorf("event service: fund balance: %w", err)
	}
	return money.Round2(sum), nil
}

// ListFundTransactions returns the full ledger, oldest first.
func (s *EventService) ListFundTransactions(ctx context.Context) ([]settlement.FundTransaction, error) {
	txs, err := s.repo.ListFundTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("event service: list fund transactions: %w", err)
	}
	return txs, nil
}

// AddFundTransaction appends a manual adjustment with no event
// reference: positive for donations, negative for payouts.
func (s *EventService) AddFundTransaction(ctx context.Context, amount decimal.Decimal, notes string) (int64, error) {
	if amount.IsZero() {
		return 0, settlement.ErrZeroAmount
	}
	tx := &settlement.FundTransaction{
		Timestamp: s.clock.Now(),
		Amount:    money.Round2(amount),
		Notes:     notes,
	}
	id, err := s.repo.AddFundTransaction(ctx, tx)
	if err != nil {
		return 0, fmt.Errorf("event service: add fund transaction: %w", err)
	}
	slog.Info("manual fund adjustment", "fund_transaction_id", id, "amount", tx.Amount)
	return id, nil
}

func summarize(e *settlement.Event) EventSummary {
	return EventSummary{
		ID:             e.ID,
		Name:           e.Name,
		Date:           e.Date,
		TotalCost:      e.TotalCost,
		ConsumersCount: e.ConsumersCount,
		Notes:          e.Notes,
		Status:         string(e.Status),
		PerPerson:      e.PerPersonAmount,
		Surplus:        e.SurplusOrDeficit,
	}
}
