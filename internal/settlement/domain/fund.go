package settlement

import (
	"time"

	"github.com/shopspring/decimal"

	"expense-tracker/internal/money"
)

// FundTransaction is one signed posting into the shared fund.
// Positive amounts increase the fund (event surplus, donations),
// negative amounts decrease it. EventID is nil for manual adjustments.
// Transactions are append-only: never updated or deleted.
type FundTransaction struct {
	ID        int64
	Timestamp time.Time
	Amount    decimal.Decimal
	EventID   *int64
	Notes     string
}

// SumTransactions derives the fund balance from a full transaction
// list. The stored rows are the source of truth; callers that cache a
// running total must be reconcilable against this sum.
func SumTransactions(txs []FundTransaction) decimal.Decimal {
	amounts := make([]decimal.Decimal, len(txs))
	for i, tx := range txs {
		amounts[i] = tx.Amount
	}
	return money.Round2(money.Sum(amounts))
}
