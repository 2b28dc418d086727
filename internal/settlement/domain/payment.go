package settlement

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentMethod tags how a payment was made.
type PaymentMethod string

const (
	MethodCash               PaymentMethod = "cash"
	MethodElectronicTransfer PaymentMethod = "e_transfer"
	MethodCredit             PaymentMethod = "credit"
	MethodOther              PaymentMethod = "other"
)

// NormalizePaymentMethod maps a raw tag to a known method. Unknown tags
// report false; callers coerce those to MethodOther by policy rather
// than failing.
func NormalizePaymentMethod(value string) (PaymentMethod, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "cash":
		return MethodCash, true
	case "e_transfer", "etransfer", "electronic_transfer", "electronictransfer":
		return MethodElectronicTransfer, true
	case "credit":
		return MethodCredit, true
	case "other":
		return MethodOther, true
	default:
		return MethodOther, false
	}
}

// Payment is a contribution recorded against an event. Payments belong
// to exactly one event and do not outlive it.
type Payment struct {
	ID      int64
	EventID int64
	Amount  decimal.Decimal
	Method  PaymentMethod
	Notes   string
}
