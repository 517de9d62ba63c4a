package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/theefatymah/Aurralis/internal/domain"
)

// PolicyService Описываем, что нам нужно от сервиса политик
type PolicyService interface {
	Current(ctx context.Context) (*domain.Policy, error)
	Update(ctx context.Context, u domain.PolicyUpdate) (*domain.Policy, error)
}

type PolicyHandler struct {
	service PolicyService
}

func NewPolicyHandler(s PolicyService) *PolicyHandler {
	return &PolicyHandler{service: s}
}

// Get возвращает действующую политику; при пустой таблице создает дефолтную.
// GET /api/policy
func (h *PolicyHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Update накладывает частичное обновление (только переданные поля).
// PUT /api/policy
func (h *PolicyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var u domain.PolicyUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.service.Update(r.Context(), u)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
