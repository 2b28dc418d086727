package interfaces

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"expense-tracker/internal/settlement/application"
	"expense-tracker/internal/settlement/infrastructure/memory"
)

func assertDec(t *testing.T, label, got, want string) {
	t.Helper()
	g, err := decimal.NewFromString(got)
	if err != nil {
		t.Fatalf("%s: parse %q: %v", label, got, err)
	}
	if !g.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", label, got, want)
	}
}

func newHandlers(t *testing.T) (*EventsHandler, *FundHandler) {
	t.Helper()
	svc, err := application.NewEventService(memory.NewRepository(), nil)
	if err != nil {
		t.Fatalf("NewEventService: %v", err)
	}
	events, err := NewEventsHandler(svc, nil)
	if err != nil {
		t.Fatalf("NewEventsHandler: %v", err)
	}
	fund, err := NewFundHandler(svc, nil)
	if err != nil {
		t.Fatalf("NewFundHandler: %v", err)
	}
	return events, fund
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createTestEvent(t *testing.T, h *EventsHandler, name string, cost string, consumers int) int64 {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/v1/events", map[string]any{
		"name":            name,
		"date":            "2026-03-20",
		"total_cost":      cost,
		"consumers_count": consumers,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create event status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp.ID
}

func TestEventLifecycleOverHTTP(t *testing.T) {
	events, fund := newHandlers(t)

	id := createTestEvent(t, events, "team dinner", "90.00", 2)

	for _, amount := range []string{"50.00", "50.00"} {
		rec := doJSON(t, events, http.MethodPost, fmt.Sprintf("/api/v1/events/%d/payments", id), map[string]any{
			"amount": amount,
			"method": "cash",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("add payment status = %d, body = %s", rec.Code, rec.Body)
		}
	}

	rec := doJSON(t, events, http.MethodGet, fmt.Sprintf("/api/v1/events/%d", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get details status = %d", rec.Code)
	}
	var details struct {
		PerPerson      string `json:"per_person"`
		TotalCollected string `json:"total_collected"`
		Surplus        string `json:"surplus"`
		Payments       []any  `json:"payments"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &details); err != nil {
		t.Fatalf("decode details: %v", err)
	}
	assertDec(t, "total_collected", details.TotalCollected, "100.00")
	assertDec(t, "surplus", details.Surplus, "10.00")
	assertDec(t, "per_person", details.PerPerson, "45.00")
	if len(details.Payments) != 2 {
		t.Errorf("payments = %d, want 2", len(details.Payments))
	}

	rec = doJSON(t, events, http.MethodPost, fmt.Sprintf("/api/v1/events/%d/close", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("close status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, events, http.MethodPost, fmt.Sprintf("/api/v1/events/%d/close", id), nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("second close status = %d, want 409", rec.Code)
	}

	rec = doJSON(t, fund, http.MethodGet, "/api/v1/fund/balance", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("balance status = %d", rec.Code)
	}
	var balance struct {
		Balance string `json:"balance"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &balance); err != nil {
		t.Fatalf("decode balance: %v", err)
	}
	assertDec(t, "balance", balance.Balance, "10.00")

	rec = doJSON(t, fund, http.MethodGet, "/api/v1/fund/transactions", nil)
	var txs []fundTransactionRow
	if err := json.Unmarshal(rec.Body.Bytes(), &txs); err != nil {
		t.Fatalf("decode transactions: %v", err)
	}
	if len(txs) != 1 || txs[0].EventID == nil || *txs[0].EventID != id {
		t.Errorf("transactions = %+v", txs)
	}
}

func TestErrorMappingOverHTTP(t *testing.T) {
	events, fund := newHandlers(t)

	if rec := doJSON(t, events, http.MethodGet, "/api/v1/events/42", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing event status = %d, want 404", rec.Code)
	}
	if rec := doJSON(t, events, http.MethodGet, "/api/v1/events/not-a-number", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}

	rec := doJSON(t, events, http.MethodPost, "/api/v1/events", map[string]any{
		"name":            "bad",
		"date":            "2026-03-20",
		"total_cost":      "-5",
		"consumers_count": 2,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative cost status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, events, http.MethodPost, "/api/v1/events", map[string]any{
		"name": "bad date", "date": "tomorrow", "total_cost": "5",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad date status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, fund, http.MethodPost, "/api/v1/fund/transactions", map[string]any{
		"amount": "0", "notes": "noop",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("zero adjustment status = %d, want 400", rec.Code)
	}

	if rec := doJSON(t, events, http.MethodDelete, "/api/v1/events", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("delete status = %d, want 405", rec.Code)
	}
}

func TestManualFundAdjustmentOverHTTP(t *testing.T) {
	_, fund := newHandlers(t)

	rec := doJSON(t, fund, http.MethodPost, "/api/v1/fund/transactions", map[string]any{
		"amount": "25.00",
		"notes":  "donation",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("adjustment status = %d, body = %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, fund, http.MethodGet, "/api/v1/fund/transactions", nil)
	var txs []fundTransactionRow
	if err := json.Unmarshal(rec.Body.Bytes(), &txs); err != nil {
		t.Fatalf("decode transactions: %v", err)
	}
	if len(txs) != 1 || txs[0].EventID != nil {
		t.Errorf("transactions = %+v", txs)
	}
	if txs[0].Timestamp.IsZero() {
		t.Error("timestamp must be set")
	}
}

func TestStatementExports(t *testing.T) {
	events, _ := newHandlers(t)
	id := createTestEvent(t, events, "export me", "30.00", 3)

	rec := doJSON(t, events, http.MethodGet, fmt.Sprintf("/api/v1/events/%d/export.pdf", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pdf export status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("pdf content type = %s", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("pdf export must start with %PDF")
	}

	rec = doJSON(t, events, http.MethodGet, fmt.Sprintf("/api/v1/events/%d/export.xlsx", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("xlsx export status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("xlsx content type = %s", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("xlsx export must not be empty")
	}
}

func TestParseDate(t *testing.T) {
	if _, err := parseDate("2026-03-20"); err != nil {
		t.Errorf("date-only: %v", err)
	}
	want := time.Date(2026, time.March, 20, 18, 30, 0, 0, time.UTC)
	got, err := parseDate("2026-03-20T18:30:00Z")
	if err != nil || !got.Equal(want) {
		t.Errorf("rfc3339 = %v, %v", got, err)
	}
	if _, err := parseDate("soon"); err == nil {
		t.Error("garbage date must fail")
	}
}
