package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/voznikov/banknote/internal/api/middleware"
	"github.com/voznikov/banknote/internal/pipeline"
)

// ParseHandler exposes the parsing pipeline's lifecycle: start, status,
// commit, abort.
type ParseHandler struct {
	pipeline *pipeline.Pipeline
	log      zerolog.Logger
}

// NewParseHandler creates a new parse handler.
func NewParseHandler(p *pipeline.Pipeline, log zerolog.Logger) *ParseHandler {
	return &ParseHandler{pipeline: p, log: log}
}

// Start handles POST /api/parse. A second start while a parse is in flight
// is rejected with 409.
func (h *ParseHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MessageID int64 `json:"message_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// The parse outlives this request, so it must not inherit the request
	// context; only an explicit abort cancels it.
	if err := h.pipeline.StartParse(context.Background(), req.MessageID); err != nil {
		if errors.Is(err, pipeline.ErrBusy) {
			middleware.WriteError(w, http.StatusConflict, err.Error())
			return
		}
		middleware.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, h.pipeline.Status())
}

// Status handles GET /api/parse.
func (h *ParseHandler) Status(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.pipeline.Status())
}

// Commit handles POST /api/parse/commit. A validation failure leaves the
// pipeline in review so the caller can correct selections and retry.
func (h *ParseHandler) Commit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID  int64  `json:"account_id"`
		CategoryID int64  `json:"category_id"`
		Notes      string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.pipeline.Commit(req.AccountID, req.CategoryID, req.Notes)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoCandidate) {
			middleware.WriteError(w, http.StatusConflict, err.Error())
			return
		}
		writeDomainError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// Abort handles POST /api/parse/abort. Always succeeds; the inbox message
// stays available for retry.
func (h *ParseHandler) Abort(w http.ResponseWriter, r *http.Request) {
	h.pipeline.Abort()
	middleware.WriteJSON(w, http.StatusOK, h.pipeline.Status())
}
