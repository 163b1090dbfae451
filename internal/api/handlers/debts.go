package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/voznikov/banknote/internal/api/middleware"
	"github.com/voznikov/banknote/internal/debt"
	"github.com/voznikov/banknote/internal/domain"
)

// DebtsHandler exposes debt CRUD plus derived statuses.
type DebtsHandler struct {
	debts *debt.Tracker
	log   zerolog.Logger
}

// NewDebtsHandler creates a new debts handler.
func NewDebtsHandler(t *debt.Tracker, log zerolog.Logger) *DebtsHandler {
	return &DebtsHandler{debts: t, log: log}
}

// debtView is a debt plus its derived status.
type debtView struct {
	domain.Debt
	Status domain.DebtStatus `json:"status"`
}

// List handles GET /api/debts. Statuses are derived at response time.
func (h *DebtsHandler) List(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	debts := h.debts.Debts()
	views := make([]debtView, len(debts))
	for i, d := range debts {
		views[i] = debtView{Debt: d, Status: debt.Status(d.DueDate, d.IsPaid, now)}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"debts": views,
		"count": len(views),
	})
}

// Create handles POST /api/debts.
func (h *DebtsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
		DueDate     string          `json:"due_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	dueDate, err := time.Parse(domain.DateFormat, req.DueDate)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "due_date must be YYYY-MM-DD")
		return
	}

	d, err := h.debts.Add(req.Description, req.Amount, dueDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, d)
}

// TogglePaid handles POST /api/debts/toggle.
func (h *DebtsHandler) TogglePaid(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	d, err := h.debts.TogglePaid(req.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, debtView{
		Debt:   d,
		Status: debt.Status(d.DueDate, d.IsPaid, time.Now()),
	})
}

// Delete handles POST /api/debts/delete.
func (h *DebtsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.debts.Remove(req.ID); err != nil {
		writeDomainError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
