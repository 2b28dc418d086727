// Package interfaces exposes the settlement service over HTTP.
package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"expense-tracker/internal/audit"
	"expense-tracker/internal/auth"
	"expense-tracker/internal/observability/metrics"
	"expense-tracker/internal/settlement/application"
	settlement "expense-tracker/internal/settlement/domain"
)

// EventsHandler handles the event routes.
type EventsHandler struct {
	service     *application.EventService
	auditLogger audit.Logger
}

// NewEventsHandler constructs a handler.
func NewEventsHandler(service *application.EventService, auditLogger audit.Logger) (*EventsHandler, error) {
	if service == nil {
		return nil, errors.New("events handler: nil service")
	}
	return &EventsHandler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP handles routes under /api/v1/events.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	if path == "/api/v1/events" {
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}
	if rest, ok := strings.CutPrefix(path, "/api/v1/events/"); ok {
		h.handleByID(w, r, rest)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *EventsHandler) handleByID(w http.ResponseWriter, r *http.Request, rest string) {
	parts := strings.Split(rest, "/")
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}
	if len(parts) == 1 && r.Method == http.MethodGet {
		h.handleGet(w, r, id)
		return
	}
	if len(parts) == 2 {
		switch parts[1] {
		case "payments":
			if r.Method == http.MethodPost {
				h.handleAddPayment(w, r, id)
				return
			}
		case "close":
			if r.Method == http.MethodPost {
				h.handleClose(w, r, id)
				return
			}
		case "export.pdf":
			if r.Method == http.MethodGet {
				h.handleExport(w, r, id, "pdf")
				return
			}
		case "export.xlsx":
			if r.Method == http.MethodGet {
				h.handleExport(w, r, id, "xlsx")
				return
			}
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *EventsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.ListEvents(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if events == nil {
		events = []application.EventSummary{}
	}
	writeJSON(w, events)
}

func (h *EventsHandler) handleGet(w http.ResponseWriter, r *http.Request, id int64) {
	details, err := h.service.GetEventDetails(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, details)
}

func (h *EventsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string          `json:"name"`
		Date           string          `json:"date"`
		TotalCost      decimal.Decimal `json:"total_cost"`
		ConsumersCount int             `json:"consumers_count"`
		Notes          string          `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD or RFC 3339", http.StatusBadRequest)
		return
	}
	id, err := h.service.CreateEvent(r.Context(), application.CreateEventInput{
		Name:           req.Name,
		Date:           date,
		TotalCost:      req.TotalCost,
		ConsumersCount: req.ConsumersCount,
		Notes:          req.Notes,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]any{"id": id})
	h.logAudit(r, "event.create", strconv.FormatInt(id, 10), map[string]any{"name": req.Name})
}

func (h *EventsHandler) handleAddPayment(w http.ResponseWriter, r *http.Request, id int64) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
		Method string          `json:"method"`
		Notes  string          `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	paymentID, err := h.service.AddPayment(r.Context(), id, application.AddPaymentInput{
		Amount: req.Amount,
		Method: req.Method,
		Notes:  req.Notes,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]any{"id": paymentID})
	h.logAudit(r, "event.payment", strconv.FormatInt(id, 10), map[string]any{
		"payment_id": paymentID,
		"method":     req.Method,
	})
}

func (h *EventsHandler) handleClose(w http.ResponseWriter, r *http.Request, id int64) {
	res, err := h.service.CloseEvent(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, res)
	h.logAudit(r, "event.close", strconv.FormatInt(id, 10), map[string]any{
		"surplus":    res.Surplus,
		"per_person": res.PerPerson,
	})
}

func (h *EventsHandler) handleExport(w http.ResponseWriter, r *http.Request, id int64, format string) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveEventExport(format, result, time.Since(start))
	}()

	details, err := h.service.GetEventDetails(r.Context(), id)
	if err != nil {
		result = metrics.ResultError
		respondServiceError(w, err)
		return
	}

	var data []byte
	var contentType string
	switch format {
	case "pdf":
		data, err = BuildEventStatementPDF(details)
		contentType = "application/pdf"
	case "xlsx":
		data, err = BuildEventStatementXLSX(details)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		result = metrics.ResultError
		http.Error(w, "export error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	h.logAudit(r, "event.export", strconv.FormatInt(id, 10), map[string]any{"format": format})
}

func (h *EventsHandler) logAudit(r *http.Request, action, resourceID string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "event",
		ResourceID:   resourceID,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
		Metadata:     payload,
	})
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondServiceError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, settlement.ErrEventNotFound):
		http.Error(w, "event not found", http.StatusNotFound)
	case errors.Is(err, settlement.ErrEventClosed):
		http.Error(w, "event already closed", http.StatusConflict)
	case settlement.IsInvalidInput(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "storage failure", http.StatusInternalServerError)
	}
}
