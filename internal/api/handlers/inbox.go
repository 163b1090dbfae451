package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/voznikov/banknote/internal/api/middleware"
	"github.com/voznikov/banknote/internal/inbox"
)

// InboxHandler exposes the pending-message inbox.
type InboxHandler struct {
	inbox *inbox.Inbox
	log   zerolog.Logger
}

// NewInboxHandler creates a new inbox handler.
func NewInboxHandler(in *inbox.Inbox, log zerolog.Logger) *InboxHandler {
	return &InboxHandler{inbox: in, log: log}
}

// List handles GET /api/inbox.
func (h *InboxHandler) List(w http.ResponseWriter, r *http.Request) {
	messages := h.inbox.Messages()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"count":    len(messages),
	})
}

// Add handles POST /api/inbox: a new raw bank notification enters the
// inbox, e.g. forwarded by a device-side collector.
func (h *InboxHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sender string `json:"sender"`
		Text   string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Text == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Text is required")
		return
	}

	msg := h.inbox.Add(req.Sender, req.Text)
	middleware.WriteJSON(w, http.StatusCreated, msg)
}
