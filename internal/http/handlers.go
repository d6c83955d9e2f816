package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"spendlog/internal/analytics"
	"spendlog/internal/auth"
	"spendlog/internal/core"
	"spendlog/internal/expense"
	"spendlog/internal/log"
	"spendlog/internal/store"
)

// Handlers holds the services behind the JSON API. The clock is
// injectable so relative time resolution is testable.
type Handlers struct {
	expenses *expense.Service
	engine   *analytics.Engine
	gate     *auth.Gatekeeper
	logger   *log.Logger

	defaultUser string
	now         func() time.Time
}

func NewHandlers(expenses *expense.Service, engine *analytics.Engine, gate *auth.Gatekeeper, logger *log.Logger, defaultUser string) *Handlers {
	return &Handlers{
		expenses:    expenses,
		engine:      engine,
		gate:        gate,
		logger:      logger.WithComponent(log.ComponentHTTP),
		defaultUser: defaultUser,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type expenseDTO struct {
	RowID       string    `json:"row_id"`
	UserID      string    `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Notes       string    `json:"notes,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func toDTO(rec core.ExpenseRecord) expenseDTO {
	tags := rec.Tags
	if tags == nil {
		tags = []string{}
	}
	return expenseDTO{
		RowID:       rec.RowID,
		UserID:      rec.UserID,
		AmountCents: rec.Amount.Cents,
		Amount:      rec.Amount.String(),
		Currency:    rec.Currency,
		Category:    rec.Category.String(),
		Description: rec.Description,
		Tags:        tags,
		Notes:       rec.Notes,
		Timestamp:   rec.Timestamp,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrEmptyUserID),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrDescriptionTooLong),
		errors.Is(err, core.ErrZeroTimestamp),
		errors.Is(err, core.ErrEmptyQuery),
		errors.Is(err, core.ErrTimeRangeUnresolved):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrExtractionFailed):
		status = http.StatusBadGateway
	case errors.Is(err, core.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}
	return true
}

func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "spendlog",
		"status":  "ok",
	})
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	token, expiresAt, err := h.gate.Login(req.Password, h.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"expires_at":   expiresAt,
	})
}

func (h *Handlers) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	subject, err := h.gate.Verify(req.Token)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"valid": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "subject": subject})
}

func (h *Handlers) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text   string `json:"text"`
		UserID string `json:"user_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	userID := req.UserID
	if userID == "" {
		userID = h.defaultUser
	}
	rec, err := h.expenses.Submit(r.Context(), req.Text, userID, h.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDTO(rec))
}

// parseFilter reads optional start, end (YYYY-MM-DD) and category query
// parameters.
func parseFilter(r *http.Request) (store.Filter, error) {
	var f store.Filter
	q := r.URL.Query()
	if v := q.Get("start"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
		if err != nil {
			return f, errors.New("invalid start date, want YYYY-MM-DD")
		}
		f.Start = t
	}
	if v := q.Get("end"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
		if err != nil {
			return f, errors.New("invalid end date, want YYYY-MM-DD")
		}
		f.End = t
	}
	if v := q.Get("category"); v != "" {
		cat, ok := core.ParseCategory(v)
		if !ok {
			return f, core.ErrInvalidCategory
		}
		f.Category = &cat
	}
	return f, nil
}

func (h *Handlers) handleList(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	recs, err := h.expenses.List(r.Context(), r.PathValue("user_id"), f)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]expenseDTO, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toDTO(rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": out, "count": len(out)})
}

func (h *Handlers) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.expenses.Get(r.Context(), r.PathValue("user_id"), r.PathValue("row_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDTO(rec))
}

func (h *Handlers) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount      *float64  `json:"amount"`
		Currency    *string   `json:"currency"`
		Category    *string   `json:"category"`
		Description *string   `json:"description"`
		Tags        *[]string `json:"tags"`
		Notes       *string   `json:"notes"`
		Timestamp   *string   `json:"timestamp"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var patch core.FieldPatch
	if req.Amount != nil {
		cents, err := core.ParseFloatToCents(*req.Amount)
		if err != nil {
			writeError(w, err)
			return
		}
		patch.Amount = &core.Money{Cents: cents}
	}
	patch.Currency = req.Currency
	if req.Category != nil {
		cat, ok := core.ParseCategory(*req.Category)
		if !ok {
			writeError(w, core.ErrInvalidCategory)
			return
		}
		patch.Category = &cat
	}
	patch.Description = req.Description
	patch.Tags = req.Tags
	patch.Notes = req.Notes
	if req.Timestamp != nil {
		t, err := time.Parse(time.RFC3339, *req.Timestamp)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid timestamp, want RFC 3339"})
			return
		}
		patch.Timestamp = &t
	}

	rec, err := h.expenses.Update(r.Context(), r.PathValue("user_id"), r.PathValue("row_id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDTO(rec))
}

func (h *Handlers) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.expenses.Delete(r.Context(), r.PathValue("user_id"), r.PathValue("row_id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query  string `json:"query"`
		UserID string `json:"user_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	userID := req.UserID
	if userID == "" {
		userID = h.defaultUser
	}
	resp, err := h.engine.Query(r.Context(), userID, req.Query, h.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) handleSpendingTotal(w http.ResponseWriter, r *http.Request) {
	rng, err := analytics.PeriodRange(r.URL.Query().Get("period"), h.now())
	if err != nil {
		writeError(w, err)
		return
	}
	recs, err := h.expenses.List(r.Context(), r.PathValue("user_id"), store.Filter{Start: rng.Start, End: rng.End})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"period": rng.Label,
		"total":  analytics.Total(recs, rng),
	})
}

func (h *Handlers) handleSpendingByCategory(w http.ResponseWriter, r *http.Request) {
	rng, err := analytics.PeriodRange(r.URL.Query().Get("period"), h.now())
	if err != nil {
		writeError(w, err)
		return
	}
	recs, err := h.expenses.List(r.Context(), r.PathValue("user_id"), store.Filter{Start: rng.Start, End: rng.End})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"period":     rng.Label,
		"categories": analytics.ByCategory(recs),
	})
}

func (h *Handlers) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	recs, err := h.expenses.Search(r.Context(), r.PathValue("user_id"), q)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]expenseDTO, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toDTO(rec))
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": out, "count": len(out), "query": q})
}
