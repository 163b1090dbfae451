package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/voznikov/banknote/internal/api/middleware"
	"github.com/voznikov/banknote/internal/domain"
	"github.com/voznikov/banknote/internal/ledger"
)

// LedgerHandler exposes accounts, categories, balances and the transaction
// log to the UI layer.
type LedgerHandler struct {
	ledger *ledger.Ledger
	log    zerolog.Logger
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(l *ledger.Ledger, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{ledger: l, log: log}
}

// ListAccounts handles GET /api/accounts. Balances are derived on every
// read.
func (h *LedgerHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts := h.ledger.Balances()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

// CreateAccount handles POST /api/accounts.
func (h *LedgerHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string          `json:"name"`
		InitialBalance decimal.Decimal `json:"initial_balance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.ledger.AddAccount(req.Name, req.InitialBalance)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, account)
}

// ListCategories handles GET /api/categories.
func (h *LedgerHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.ledger.Categories()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// CreateCategory handles POST /api/categories.
func (h *LedgerHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Icon string `json:"icon"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := h.ledger.AddCategory(req.Name, req.Icon)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, category)
}

// ListTransactions handles GET /api/transactions. The log is returned in
// display order: most recent date first, undated entries last.
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions := h.ledger.Transactions()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	var incompleteErr *domain.IncompleteDataError

	switch {
	case errors.As(err, &validationErr):
		middleware.WriteError(w, http.StatusUnprocessableEntity, validationErr.Error())
	case errors.As(err, &incompleteErr):
		middleware.WriteError(w, http.StatusUnprocessableEntity, incompleteErr.Error())
	default:
		middleware.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
