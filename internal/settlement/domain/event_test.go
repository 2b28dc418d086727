package settlement

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(s)
}

func TestPerPersonShare(t *testing.T) {
	cases := []struct {
		name      string
		totalCost string
		consumers int
		want      string
	}{
		{"even split", "100.00", 4, "25"},
		{"repeating decimal rounds", "100.00", 3, "33.33"},
		{"half rounds away from zero", "0.25", 2, "0.13"},
		{"zero consumers yields zero", "100.00", 0, "0"},
		{"negative consumers yields zero", "100.00", -1, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := &Event{TotalCost: dec(t, tc.totalCost), ConsumersCount: tc.consumers}
			if got := e.PerPersonShare(); !got.Equal(dec(t, tc.want)) {
				t.Errorf("PerPersonShare = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestSurplusOrDeficitIndependentOfPaymentOrder(t *testing.T) {
	payments := []Payment{
		{Amount: dec(t, "50.00")},
		{Amount: dec(t, "30.00")},
		{Amount: dec(t, "20.00")},
	}
	reversed := []Payment{payments[2], payments[1], payments[0]}

	a := &Event{TotalCost: dec(t, "90.00"), Payments: payments}
	b := &Event{TotalCost: dec(t, "90.00"), Payments: reversed}

	if !a.SurplusOrDeficitNow().Equal(b.SurplusOrDeficitNow()) {
		t.Errorf("surplus depends on payment order: %s vs %s",
			a.SurplusOrDeficitNow(), b.SurplusOrDeficitNow())
	}
	if got := a.SurplusOrDeficitNow(); !got.Equal(dec(t, "10.00")) {
		t.Errorf("SurplusOrDeficitNow = %s, want 10.00", got)
	}
}

func TestSurplusOrDeficitOnFreshEvent(t *testing.T) {
	e := &Event{TotalCost: dec(t, "75.50")}
	if got := e.TotalCollected(); !got.Equal(decimal.Zero) {
		t.Errorf("TotalCollected = %s, want 0", got)
	}
	if got := e.SurplusOrDeficitNow(); !got.Equal(dec(t, "-75.50")) {
		t.Errorf("SurplusOrDeficitNow = %s, want -75.50", got)
	}
}

func TestCloseFreezesSnapshots(t *testing.T) {
	e := &Event{
		Name:           "team dinner",
		TotalCost:      dec(t, "100.00"),
		ConsumersCount: 3,
		Status:         StatusOpen,
		Payments: []Payment{
			{Amount: dec(t, "40.00")},
			{Amount: dec(t, "40.00")},
			{Amount: dec(t, "20.00")},
		},
	}
	wantShare := e.PerPersonShare()
	wantSurplus := e.SurplusOrDeficitNow()

	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if e.Status != StatusClosed {
		t.Errorf("Status = %s, want %s", e.Status, StatusClosed)
	}
	if e.PerPersonAmount == nil || !e.PerPersonAmount.Equal(wantShare) {
		t.Errorf("PerPersonAmount = %v, want %s", e.PerPersonAmount, wantShare)
	}
	if e.SurplusOrDeficit == nil || !e.SurplusOrDeficit.Equal(wantSurplus) {
		t.Errorf("SurplusOrDeficit = %v, want %s", e.SurplusOrDeficit, wantSurplus)
	}

	if err := e.Close(); err != ErrEventClosed {
		t.Errorf("second Close = %v, want ErrEventClosed", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	if !StatusOpen.CanTransitionTo(StatusClosed) {
		t.Error("open must be allowed to close")
	}
	if StatusClosed.CanTransitionTo(StatusOpen) {
		t.Error("closed must never reopen")
	}
	if StatusClosed.CanTransitionTo(StatusClosed) {
		t.Error("closed must not close again")
	}
}

func TestNewEventValidation(t *testing.T) {
	date := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)

	if _, err := NewEvent("  ", date, dec(t, "10"), 2, ""); err != ErrEmptyName {
		t.Errorf("empty name: err = %v, want ErrEmptyName", err)
	}
	if _, err := NewEvent("picnic", date, dec(t, "-5"), 2, ""); err != ErrNegativeCost {
		t.Errorf("negative cost: err = %v, want ErrNegativeCost", err)
	}
	if _, err := NewEvent("picnic", date, dec(t, "5"), -1, ""); err != ErrNegativeConsumers {
		t.Errorf("negative consumers: err = %v, want ErrNegativeConsumers", err)
	}

	e, err := NewEvent("picnic", date, dec(t, "5"), 0, "park")
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	if e.Status != StatusOpen {
		t.Errorf("Status = %s, want %s", e.Status, StatusOpen)
	}
	if e.PerPersonAmount != nil || e.SurplusOrDeficit != nil {
		t.Error("snapshots must be nil while open")
	}
}

func TestNormalizePaymentMethod(t *testing.T) {
	cases := []struct {
		in    string
		want  PaymentMethod
		known bool
	}{
		{"cash", MethodCash, true},
		{"Cash", MethodCash, true},
		{"e_transfer", MethodElectronicTransfer, true},
		{"ETransfer", MethodElectronicTransfer, true},
		{"ElectronicTransfer", MethodElectronicTransfer, true},
		{"credit", MethodCredit, true},
		{"other", MethodOther, true},
		{"iou", MethodOther, false},
		{"", MethodOther, false},
	}
	for _, tc := range cases {
		got, known := NormalizePaymentMethod(tc.in)
		if got != tc.want || known != tc.known {
			t.Errorf("NormalizePaymentMethod(%q) = (%s, %v), want (%s, %v)",
				tc.in, got, known, tc.want, tc.known)
		}
	}
}

func TestSumTransactions(t *testing.T) {
	txs := []FundTransaction{
		{Amount: dec(t, "10.00")},
		{Amount: dec(t, "-3.50")},
		{Amount: dec(t, "0.25")},
	}
	if got := SumTransactions(txs); !got.Equal(dec(t, "6.75")) {
		t.Errorf("SumTransactions = %s, want 6.75", got)
	}
	if got := SumTransactions(nil); !got.Equal(decimal.Zero) {
		t.Errorf("SumTransactions(nil) = %s, want 0", got)
	}
}
