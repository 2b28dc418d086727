// Package postgres implements the settlement persistence gateway on
// PostgreSQL through database/sql.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	settlement "expense-tracker/internal/settlement/domain"
)

// Repository is the Postgres implementation of settlement.Repository.
type Repository struct {
	db *sql.DB
}

var _ settlement.Repository = (*Repository)(nil)

// NewRepository constructs a repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetEvent loads an event without payments.
func (r *Repository) GetEvent(ctx context.Context, id int64) (*settlement.Event, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("settlement repo: nil db")
	}
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, event_date, total_cost, consumers_count, notes, status,
	per_person_amount, surplus_or_deficit
FROM events
WHERE id = $1`, id)
	return scanEvent(row)
}

// GetEventWithPayments loads an event and its payments ordered by id.
func (r *Repository) GetEventWithPayments(ctx context.Context, id int64) (*settlement.Event, error) {
	event, err := r.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, event_id, amount, method, notes
FROM payments
WHERE event_id = $1
ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("settlement repo: query payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p settlement.Payment
		var method string
		var notes sql.NullString
		if err := rows.Scan(&p.ID, &p.EventID, &p.Amount, &method, &notes); err != nil {
			return nil, fmt.Errorf("settlement repo: scan payment: %w", err)
		}
		p.Method = settlement.PaymentMethod(method)
		p.Notes = notes.String
		event.Payments = append(event.Payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("settlement repo: iterate payments: %w", err)
	}
	return event, nil
}

// ListEventsByDateDesc returns all events, newest date first.
func (r *Repository) ListEventsByDateDesc(ctx context.Context) ([]settlement.Event, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("settlement repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, event_date, total_cost, consumers_count, notes, status,
	per_person_amount, surplus_or_deficit
FROM events
ORDER BY event_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("settlement repo: query events: %w", err)
	}
	defer rows.Close()

	var list []settlement.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("settlement repo: iterate events: %w", err)
	}
	return list, nil
}

// CreateEvent inserts an event and returns the assigned id.
func (r *Repository) CreateEvent(ctx context.Context, event *settlement.Event) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("settlement repo: nil db")
	}
	if event == nil {
		return 0, settlement.ErrNilEvent
	}
	err := r.db.QueryRowContext(ctx, `
INSERT INTO events (name, event_date, total_cost, consumers_count, notes, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`,
		event.Name,
		event.Date.UTC(),
		event.TotalCost,
		event.ConsumersCount,
		nullString(event.Notes),
		string(event.Status),
	).Scan(&event.ID)
	if err != nil {
		return 0, fmt.Errorf("settlement repo: insert event: %w", err)
	}
	return event.ID, nil
}

// AddPayment inserts a payment and returns the assigned id. The owning
// event must exist.
func (r *Repository) AddPayment(ctx context.Context, payment *settlement.Payment) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("settlement repo: nil db")
	}
	if payment == nil {
		return 0, errors.New("settlement repo: nil payment")
	}
	err := r.db.QueryRowContext(ctx, `
INSERT INTO payments (event_id, amount, method, notes)
SELECT e.id, $2, $3, $4
FROM events e
WHERE e.id = $1
RETURNING id`,
		payment.EventID,
		payment.Amount,
		string(payment.Method),
		nullString(payment.Notes),
	).Scan(&payment.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, settlement.ErrEventNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("settlement repo: insert payment: %w", err)
	}
	return payment.ID, nil
}

// CloseEvent commits the status flip, the snapshot writes, and the
// optional ledger append as one transaction. The row lock serializes
// concurrent closes of the same event; the loser observes the closed
// status and gets ErrEventClosed.
func (r *Repository) CloseEvent(ctx context.Context, event *settlement.Event, fundTx *settlement.FundTransaction) error {
	if r == nil || r.db == nil {
		return errors.New("settlement repo: nil db")
	}
	if event == nil {
		return settlement.ErrNilEvent
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("settlement repo: begin close: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM events WHERE id = $1 FOR UPDATE`, event.ID,
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return settlement.ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("settlement repo: lock event: %w", err)
	}
	if settlement.EventStatus(status) != settlement.StatusOpen {
		return settlement.ErrEventClosed
	}

	_, err = tx.ExecContext(ctx, `
UPDATE events
SET status = $2, per_person_amount = $3, surplus_or_deficit = $4
WHERE id = $1`,
		event.ID,
		string(event.Status),
		nullDecimal(event.PerPersonAmount),
		nullDecimal(event.SurplusOrDeficit),
	)
	if err != nil {
		return fmt.Errorf("settlement repo: update event: %w", err)
	}

	if fundTx != nil {
		err = tx.QueryRowContext(ctx, `
INSERT INTO fund_transactions (created_at, amount, event_id, notes)
VALUES ($1, $2, $3, $4)
RETURNING id`,
			fundTx.Timestamp.UTC(),
			fundTx.Amount,
			fundTx.EventID,
			nullString(fundTx.Notes),
		).Scan(&fundTx.ID)
		if err != nil {
			return fmt.Errorf("settlement repo: insert fund transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("settlement repo: commit close: %w", err)
	}
	return nil
}

// AddFundTransaction appends a ledger row and returns the assigned id.
func (r *Repository) AddFundTransaction(ctx context.Context, fundTx *settlement.FundTransaction) (int64, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("settlement repo: nil db")
	}
	if fundTx == nil {
		return 0, errors.New("settlement repo: nil fund transaction")
	}
	err := r.db.QueryRowContext(ctx, `
INSERT INTO fund_transactions (created_at, amount, event_id, notes)
VALUES ($1, $2, $3, $4)
RETURNING id`,
		fundTx.Timestamp.UTC(),
		fundTx.Amount,
		fundTx.EventID,
		nullString(fundTx.Notes),
	).Scan(&fundTx.ID)
	if err != nil {
		return 0, fmt.Errorf("settlement repo: insert fund transaction: %w", err)
	}
	return fundTx.ID, nil
}

// ListFundTransactions returns all ledger rows ordered by id.
func (r *Repository) ListFundTransactions(ctx context.Context) ([]settlement.FundTransaction, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("settlement repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, created_at, amount, event_id, notes
FROM fund_transactions
ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("settlement repo: query fund transactions: %w", err)
	}
	defer rows.Close()

	var list []settlement.FundTransaction
	for rows.Next() {
		var t settlement.FundTransaction
		var eventID sql.NullInt64
		var notes sql.NullString
		if err := rows.Scan(&t.ID, &t.Timestamp, &t.Amount, &eventID, &notes); err != nil {
			return nil, fmt.Errorf("settlement repo: scan fund transaction: %w", err)
		}
		if eventID.Valid {
			id := eventID.Int64
			t.EventID = &id
		}
		t.Notes = notes.String
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("settlement repo: iterate fund transactions: %w", err)
	}
	return list, nil
}

// SumFundTransactions returns the raw sum of all ledger amounts.
func (r *Repository) SumFundTransactions(ctx context.Context) (decimal.Decimal, error) {
	if r == nil || r.db == nil {
		return decimal.Zero, errors.New("settlement repo: nil db")
	}
	var sum decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM fund_transactions`,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("settlement repo: sum fund transactions: %w", err)
	}
	return sum, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*settlement.Event, error) {
	var e settlement.Event
	var notes sql.NullString
	var status string
	var perPerson, surplus decimal.NullDecimal
	err := row.Scan(
		&e.ID, &e.Name, &e.Date, &e.TotalCost, &e.ConsumersCount,
		&notes, &status, &perPerson, &surplus,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, settlement.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("settlement repo: scan event: %w", err)
	}
	e.Notes = notes.String
	e.Status = settlement.EventStatus(status)
	if perPerson.Valid {
		e.PerPersonAmount = &perPerson.Decimal
	}
	if surplus.Valid {
		e.SurplusOrDeficit = &surplus.Decimal
	}
	return &e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
