package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/theefatymah/Aurralis/internal/domain"
	"github.com/theefatymah/Aurralis/internal/lifecycle"
)

// ActivityService Описываем, что нам нужно от менеджера жизненного цикла
type ActivityService interface {
	Approve(ctx context.Context, activityID string) (*lifecycle.ApprovalResult, error)
	Deny(ctx context.Context, activityID string) error
	GetActivity(ctx context.Context, id string) (*domain.Activity, error)
	ListActivities(ctx context.Context) ([]*domain.Activity, error)
}

type ActivityHandler struct {
	service ActivityService
}

func NewActivityHandler(s ActivityService) *ActivityHandler {
	return &ActivityHandler{service: s}
}

// Approve — решение оператора "исполнить". Конфликтные исходы различаются
// статусом ответа: 409 уже исполняется, 400 статус не решаемый, 403 политика
// перестала пропускать, 404 нет такой заявки.
// POST /api/approve/{id}
func (h *ActivityHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := h.service.Approve(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type DenyResponse struct {
	Message    string `json:"message"`
	ActivityID string `json:"activity_id"`
}

// Deny — решение оператора "отклонить".
// POST /api/deny/{id}
func (h *ActivityHandler) Deny(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Deny(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DenyResponse{
		Message:    "Transaction denied",
		ActivityID: id,
	})
}

type ActivitiesResponse struct {
	Activities []*domain.Activity `json:"activities"`
}

// List — вся лента заявок с транзакциями, новые первыми.
// GET /api/activities
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListActivities(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ActivitiesResponse{Activities: list})
}

// Get — одна заявка по ID.
// GET /api/activities/{id}
func (h *ActivityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	act, err := h.service.GetActivity(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, act)
}
