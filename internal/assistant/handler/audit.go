package handler

import (
	"context"
	"net/http"

	"github.com/theefatymah/Aurralis/internal/audit"
)

// AuditSource Описываем, что нам нужно от хранилища trail
type AuditSource interface {
	FetchEvents(ctx context.Context, activityID, action string) ([]audit.Event, error)
}

type AuditHandler struct {
	source AuditSource
}

func NewAuditHandler(s AuditSource) *AuditHandler {
	return &AuditHandler{source: s}
}

type AuditResponse struct {
	Events []audit.Event `json:"events"`
}

// GetLogs — выборка trail с фильтрами ?activity_id=...&action=...
// GET /api/audit
func (h *AuditHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	activityID := r.URL.Query().Get("activity_id")
	action := r.URL.Query().Get("action")

	events, err := h.source.FetchEvents(r.Context(), activityID, action)
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	writeJSON(w, http.StatusOK, AuditResponse{Events: events})
}
