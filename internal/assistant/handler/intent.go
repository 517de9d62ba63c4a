package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/theefatymah/Aurralis/internal/domain"
	"github.com/theefatymah/Aurralis/internal/lifecycle"
)

// IntentService Описываем, что нам нужно от менеджера жизненного цикла
type IntentService interface {
	ProcessIntent(ctx context.Context, query string) (*lifecycle.IntentOutcome, error)
}

type IntentHandler struct {
	service IntentService
}

func NewIntentHandler(s IntentService) *IntentHandler {
	return &IntentHandler{service: s}
}

type IntentRequest struct {
	Query string `json:"query"`
}

// IntentResponse — данные для Decision Card на фронте.
type IntentResponse struct {
	ActivityID       string                `json:"activity_id"`
	StructuredIntent domain.Intent         `json:"structured_intent"`
	AIReasoning      string                `json:"ai_reasoning"`
	PolicyChecks     []domain.PolicyCheck  `json:"policy_checks"`
	Status           domain.ActivityStatus `json:"status"`
	IsValid          bool                  `json:"is_valid"`
	Violations       []string              `json:"violations"`
	RequiresApproval bool                  `json:"requires_approval"`
	RiskLevel        string                `json:"risk_level"`
}

type NonTransactionResponse struct {
	Message       string `json:"message"`
	IsTransaction bool   `json:"is_transaction"`
}

// Process обрабатывает текстовый запрос пользователя.
// POST /api/intent
func (h *IntentHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req IntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	out, err := h.service.ProcessIntent(r.Context(), req.Query)
	if err != nil {
		writeError(w, err)
		return
	}

	if !out.IsTransaction {
		writeJSON(w, http.StatusOK, NonTransactionResponse{
			Message:       out.Message,
			IsTransaction: false,
		})
		return
	}

	violations := out.Validation.Violations
	if violations == nil {
		violations = []string{}
	}
	writeJSON(w, http.StatusOK, IntentResponse{
		ActivityID:       out.Activity.ID,
		StructuredIntent: out.Activity.StructuredIntent,
		AIReasoning:      out.Activity.AIReasoning,
		PolicyChecks:     out.Activity.PolicyChecks,
		Status:           out.Activity.Status,
		IsValid:          out.Validation.IsValid,
		Violations:       violations,
		RequiresApproval: out.RequiresApproval,
		RiskLevel:        out.RiskLevel,
	})
}
