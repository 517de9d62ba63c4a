package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/theefatymah/Aurralis/internal/assistant/handler"
	"github.com/theefatymah/Aurralis/internal/infra"
)

type AssistantServer struct {
	router *chi.Mux
	logger *zap.Logger

	// Обработчики бизнес-доменов
	intentHandler   *handler.IntentHandler   // /api/intent
	activityHandler *handler.ActivityHandler // /api/approve, /api/deny, /api/activities
	policyHandler   *handler.PolicyHandler   // /api/policy
	auditHandler    *handler.AuditHandler    // /api/audit
}

// NewAssistantServer инициализирует HTTP-поверхность ассистента
func NewAssistantServer(
	logger *zap.Logger,
	intentH *handler.IntentHandler,
	activityH *handler.ActivityHandler,
	policyH *handler.PolicyHandler,
	auditH *handler.AuditHandler,
) *AssistantServer {
	s := &AssistantServer{
		router:          chi.NewRouter(),
		logger:          logger.Named("assistant-api"),
		intentHandler:   intentH,
		activityHandler: activityH,
		policyHandler:   policyH,
		auditHandler:    auditH,
	}

	s.routes()
	return s
}

func (s *AssistantServer) routes() {
	r := s.router

	// Глобальные инфраструктурные Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(TracingMiddleware)

	// Информационный корень и healthcheck для мониторинга
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Aurralis API","version":"1.0.0","status":"running"}`))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		// Обработка запроса пользователя -> Decision Card
		r.Post("/intent", s.intentHandler.Process)

		// Решения оператора (HITL)
		r.Post("/approve/{id}", s.activityHandler.Approve)
		r.Post("/deny/{id}", s.activityHandler.Deny)

		// Лента заявок
		r.Get("/activities", s.activityHandler.List)
		r.Get("/activities/{id}", s.activityHandler.Get)

		// Политика трат
		r.Get("/policy", s.policyHandler.Get)
		r.Put("/policy", s.policyHandler.Update)

		// Аудит (Observability)
		r.Get("/audit", s.auditHandler.GetLogs)
	})
}

// TracingMiddleware инициализирует Trace-ID для каждого запроса
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Пытаемся достать ID из заголовка (если пришел от прокси/фронтенда)
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.New().String()
		}

		ctx := infra.WithTraceID(r.Context(), traceID)

		// Добавляем в ответ, чтобы клиент тоже знал ID своего запроса
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ServeHTTP позволяет использовать AssistantServer как стандартный http.Handler
func (s *AssistantServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
