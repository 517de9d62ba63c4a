package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/theefatymah/Aurralis/internal/assistant/handler"
	"github.com/theefatymah/Aurralis/internal/audit"
	"github.com/theefatymah/Aurralis/internal/domain"
	"github.com/theefatymah/Aurralis/internal/lifecycle"
	"github.com/theefatymah/Aurralis/internal/notify"
	"github.com/theefatymah/Aurralis/internal/repository/memory"
	"github.com/theefatymah/Aurralis/internal/transfer"
)

// echoExtractor отдает фиксированный intent (nil — не транзакция).
type echoExtractor struct {
	intent *domain.Intent
}

func (e echoExtractor) ProcessQuery(context.Context, string, domain.Policy) (*domain.Intent, error) {
	if e.intent == nil {
		return nil, nil
	}
	cp := *e.intent
	return &cp, nil
}

type fixedExecutor struct {
	result *transfer.Result
}

func (f fixedExecutor) Transfer(_ context.Context, amount float64, recipient string) (*transfer.Result, error) {
	cp := *f.result
	cp.Amount = amount
	cp.Recipient = recipient
	return &cp, nil
}

type trailStub struct{}

func (trailStub) Log(audit.Event) {}

type env struct {
	store  *memory.Store
	server *AssistantServer
}

func newEnv(t *testing.T, intent *domain.Intent) *env {
	t.Helper()
	store := memory.NewStore()
	logger := zap.NewNop()

	mgr := lifecycle.NewManager(store, store, store,
		echoExtractor{intent: intent},
		fixedExecutor{result: &transfer.Result{TxHash: "0xfeed", Status: domain.TransferConfirmed}},
		trailStub{}, notify.Noop{}, nil, logger)
	policies := lifecycle.NewPolicyService(store, notify.Noop{}, logger)

	srv := NewAssistantServer(logger,
		handler.NewIntentHandler(mgr),
		handler.NewActivityHandler(mgr),
		handler.NewPolicyHandler(policies),
		handler.NewAuditHandler(store),
	)
	e := &env{store: store, server: srv}

	// Бутстрапим дефолтную политику через реальный эндпоинт
	rec := e.do(t, http.MethodGet, "/api/policy", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return e
}

func (e *env) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestIntentEndpointCreatesActivity(t *testing.T) {
	e := newEnv(t, &domain.Intent{Amount: 50, Recipient: "0x1", RecipientName: "Stripe", Reasoning: "ok"})

	rec := e.do(t, http.MethodPost, "/api/intent", map[string]string{"query": "Send $50 to Stripe"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))

	var resp handler.IntentResponse
	decode(t, rec, &resp)
	assert.NotEmpty(t, resp.ActivityID)
	assert.Equal(t, domain.StatusPendingApproval, resp.Status)
	assert.True(t, resp.IsValid)
	assert.Empty(t, resp.Violations)
	assert.NotEmpty(t, resp.PolicyChecks)
}

func TestIntentEndpointNonTransactional(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(t, http.MethodPost, "/api/intent", map[string]string{"query": "hello"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.NonTransactionResponse
	decode(t, rec, &resp)
	assert.False(t, resp.IsTransaction)
	assert.Contains(t, resp.Message, "specify an amount and recipient")
}

func TestIntentEndpointRejectsBadBody(t *testing.T) {
	e := newEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/intent", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/intent", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func createActivity(t *testing.T, e *env) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/intent", map[string]string{"query": "Send $50 to Stripe"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.IntentResponse
	decode(t, rec, &resp)
	return resp.ActivityID
}

func TestApproveEndpointReturnsProof(t *testing.T) {
	e := newEnv(t, &domain.Intent{Amount: 50, Recipient: "0x1", RecipientName: "Stripe"})
	id := createActivity(t, e)

	rec := e.do(t, http.MethodPost, "/api/approve/"+id, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var res lifecycle.ApprovalResult
	decode(t, rec, &res)
	assert.Equal(t, id, res.ActivityID)
	assert.Equal(t, "0xfeed", res.TxHash)
	assert.Contains(t, res.ExplorerURL, "arc-explorer.com/tx/0xfeed")
	assert.Equal(t, domain.TransferConfirmed, res.Status)
	assert.Len(t, res.ProofData.Steps, 3)
}

func TestApproveEndpointMissingActivity(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(t, http.MethodPost, "/api/approve/unknown", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApproveEndpointConflictWhenLocked(t *testing.T) {
	e := newEnv(t, &domain.Intent{Amount: 50, Recipient: "0x1", RecipientName: "Stripe"})
	id := createActivity(t, e)

	// Заявку уже держит конкурентный approve
	_, err := e.store.AcquireLock(context.Background(), id, time.Now())
	require.NoError(t, err)

	rec := e.do(t, http.MethodPost, "/api/approve/"+id, nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestApproveEndpointAfterDeny(t *testing.T) {
	e := newEnv(t, &domain.Intent{Amount: 50, Recipient: "0x1", RecipientName: "Stripe"})
	id := createActivity(t, e)

	rec := e.do(t, http.MethodPost, "/api/deny/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var deny handler.DenyResponse
	decode(t, rec, &deny)
	assert.Equal(t, "Transaction denied", deny.Message)
	assert.Equal(t, id, deny.ActivityID)

	// Заявка уже rejected: повторное решение невозможно
	rec = e.do(t, http.MethodPost, "/api/approve/"+id, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/deny/"+id, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApproveEndpointPolicyRevalidation(t *testing.T) {
	e := newEnv(t, &domain.Intent{Amount: 800, Recipient: "0x1", RecipientName: "Stripe"})
	id := createActivity(t, e)

	// Ужесточаем лимит между созданием и approve
	limit := 500.0
	rec := e.do(t, http.MethodPut, "/api/policy", domain.PolicyUpdate{MaxTxAmount: &limit})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/approve/"+id, nil)

	require.Equal(t, http.StatusForbidden, rec.Code)
	var resp struct {
		Detail string `json:"detail"`
	}
	decode(t, rec, &resp)
	assert.Contains(t, resp.Detail, "800")
}

func TestActivitiesEndpointListsNewestFirst(t *testing.T) {
	e := newEnv(t, &domain.Intent{Amount: 50, Recipient: "0x1", RecipientName: "Stripe"})
	first := createActivity(t, e)
	second := createActivity(t, e)

	rec := e.do(t, http.MethodGet, "/api/activities", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.ActivitiesResponse
	decode(t, rec, &resp)
	require.Len(t, resp.Activities, 2)
	// Обе созданы в один инстант? Проверяем только принадлежность
	ids := []string{resp.Activities[0].ID, resp.Activities[1].ID}
	assert.Contains(t, ids, first)
	assert.Contains(t, ids, second)

	rec = e.do(t, http.MethodGet, "/api/activities/"+first, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var act domain.Activity
	decode(t, rec, &act)
	assert.Equal(t, first, act.ID)

	rec = e.do(t, http.MethodGet, "/api/activities/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPolicyEndpointBootstrapsDefault(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(t, http.MethodGet, "/api/policy", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var p domain.Policy
	decode(t, rec, &p)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, 1000.0, p.MaxTxAmount)
	assert.Equal(t, 5000.0, p.MonthlyBudget)
	assert.Equal(t, []string{"Stripe", "Circle", "Amazon"}, p.AllowList)
	assert.Empty(t, p.BlockList)

	// Повторный GET не создает вторую политику
	rec = e.do(t, http.MethodGet, "/api/policy", nil)
	var p2 domain.Policy
	decode(t, rec, &p2)
	assert.Equal(t, p.ID, p2.ID)
}

func TestPolicyEndpointPartialUpdate(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(t, http.MethodGet, "/api/policy", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	limit := 2500.0
	rec = e.do(t, http.MethodPut, "/api/policy", domain.PolicyUpdate{MaxTxAmount: &limit})

	require.Equal(t, http.StatusOK, rec.Code)
	var p domain.Policy
	decode(t, rec, &p)
	assert.Equal(t, 2500.0, p.MaxTxAmount)
	// Остальные поля не тронуты
	assert.Equal(t, 5000.0, p.MonthlyBudget)
	assert.Equal(t, []string{"Stripe", "Circle", "Amazon"}, p.AllowList)
}

func TestAuditEndpointFiltersByActivity(t *testing.T) {
	e := newEnv(t, &domain.Intent{Amount: 50, Recipient: "0x1", RecipientName: "Stripe"})
	id := createActivity(t, e)

	// Пишем события напрямую: в этом окружении trail-воркер не поднят
	require.NoError(t, e.store.WriteBatch(context.Background(), []audit.Event{
		{ID: "e1", ActivityID: id, Action: audit.ActionIntentProcessed},
		{ID: "e2", ActivityID: "other", Action: audit.ActionDenied},
	}))

	rec := e.do(t, http.MethodGet, "/api/audit?activity_id="+id, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.AuditResponse
	decode(t, rec, &resp)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "e1", resp.Events[0].ID)
}

func TestHealthEndpoint(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}
