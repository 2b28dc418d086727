package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"expense-tracker/internal/audit"
	"expense-tracker/internal/auth"
	"expense-tracker/internal/settlement/application"
)

// FundHandler handles the fund ledger routes.
type FundHandler struct {
	service     *application.EventService
	auditLogger audit.Logger
}

// NewFundHandler constructs a handler.
func NewFundHandler(service *application.EventService, auditLogger audit.Logger) (*FundHandler, error) {
	if service == nil {
		return nil, errors.New("fund handler: nil service")
	}
	return &FundHandler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP handles routes under /api/v1/fund.
func (h *FundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/v1/fund/balance":
		if r.Method == http.MethodGet {
			h.handleBalance(w, r)
			return
		}
	case "/api/v1/fund/transactions":
		switch r.Method {
		case http.MethodGet:
			h.handleListTransactions(w, r)
			return
		case http.MethodPost:
			h.handleAddTransaction(w, r)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *FundHandler) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.service.GetFundBalance(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, map[string]any{"balance": balance})
}

type fundTransactionRow struct {
	ID        int64           `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Amount    decimal.Decimal `json:"amount"`
	EventID   *int64          `json:"event_id,omitempty"`
	Notes     string          `json:"notes,omitempty"`
}

func (h *FundHandler) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.service.ListFundTransactions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	rows := make([]fundTransactionRow, len(txs))
	for i, tx := range txs {
		rows[i] = fundTransactionRow{
			ID:        tx.ID,
			Timestamp: tx.Timestamp,
			Amount:    tx.Amount,
			EventID:   tx.EventID,
			Notes:     tx.Notes,
		}
	}
	writeJSON(w, rows)
}

func (h *FundHandler) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
		Notes  string          `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	id, err := h.service.AddFundTransaction(r.Context(), req.Amount, req.Notes)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]any{"id": id})
	h.logAudit(r, "fund.adjust", strconv.FormatInt(id, 10), map[string]any{"amount": req.Amount})
}

func (h *FundHandler) logAudit(r *http.Request, action, resourceID string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "fund_transaction",
		ResourceID:   resourceID,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
		Metadata:     payload,
	})
}
