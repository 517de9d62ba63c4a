package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/theefatymah/Aurralis/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Encoding error", http.StatusInternalServerError)
	}
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// writeError — единая карта ошибок домена на HTTP-статусы:
// 404 нет заявки, 409 lock занят, 400 статус не решаемый,
// 403 нарушение политики при повторной валидации, иначе 500.
func writeError(w http.ResponseWriter, err error) {
	var pv *domain.PolicyViolationError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "Activity not found"})
	case errors.Is(err, domain.ErrLocked):
		writeJSON(w, http.StatusConflict, errorResponse{Detail: "Transaction already being processed"})
	case errors.Is(err, domain.ErrInvalidState):
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Cannot decide transaction in its current status"})
	case errors.As(err, &pv):
		writeJSON(w, http.StatusForbidden, errorResponse{Detail: pv.Violation})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: err.Error()})
	}
}
