package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/theefatymah/Aurralis/internal/assistant/handler"
	"github.com/theefatymah/Aurralis/internal/assistant/server"
	"github.com/theefatymah/Aurralis/internal/audit"
	"github.com/theefatymah/Aurralis/internal/extractor"
	"github.com/theefatymah/Aurralis/internal/infra"
	"github.com/theefatymah/Aurralis/internal/lifecycle"
	"github.com/theefatymah/Aurralis/internal/notify"
	"github.com/theefatymah/Aurralis/internal/repository/memory"
	"github.com/theefatymah/Aurralis/internal/repository/postgres"
	"github.com/theefatymah/Aurralis/internal/transfer"
)

func main() {
	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Контекст для управления жизненным циклом фоновых горутин
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Хранилище: Postgres в проде, in-memory для demo-режима без БД
	var (
		activityStore lifecycle.ActivityStore
		txStore       lifecycle.TransactionStore
		policyStore   lifecycle.PolicyStore
		auditStorage  audit.StorageInterface
		auditSource   handler.AuditSource
	)
	if cfg.Database.URL != "" {
		repo, err := postgres.NewRepo(appCtx, cfg.Database.URL)
		if err != nil {
			logger.Fatal("failed to init postgres", zap.Error(err))
		}
		defer repo.Close()

		// Проверяем соединение с таймаутом
		pingCtx, pingCancel := context.WithTimeout(appCtx, 5*time.Second)
		if err := repo.Ping(pingCtx); err != nil {
			logger.Fatal("database unreachable", zap.Error(err))
		}
		pingCancel()

		activityStore, txStore, policyStore = repo, repo, repo
		auditStorage, auditSource = repo, repo
	} else {
		logger.Warn("database.url is empty, running on in-memory store")
		mem := memory.NewStore()
		activityStore, txStore, policyStore = mem, mem, mem
		auditStorage, auditSource = mem, mem
	}

	// 3. Сигналы наружу (Redis Pub/Sub); без Redis работаем молча
	var notifier notify.Notifier = notify.Noop{}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		notifier = notify.NewRedisNotifier(rdb, logger)
	}

	// 4. Извлечение intent: Gemini + деградация до pattern-парсера
	var primary extractor.Extractor
	if cfg.Extractor.GeminiAPIKey != "" {
		gem, err := extractor.NewGeminiExtractor(appCtx,
			cfg.Extractor.GeminiAPIKey, cfg.Extractor.GeminiModel, 15*time.Second)
		if err != nil {
			logger.Fatal("failed to init gemini extractor", zap.Error(err))
		}
		primary = gem
	} else {
		logger.Warn("extractor.gemini_api_key is empty, pattern parser only")
	}
	boundary := extractor.NewBoundary(primary, logger)

	// 5. Платежный бэкенд + Надежность (Rate Limit, Circuit Breaker)
	var backend transfer.PaymentBackend
	if cfg.Transfer.UseMock || cfg.Transfer.CircleAPIKey == "" {
		logger.Warn("transfer backend is mocked")
		backend = &transfer.MockBackend{Latency: 2 * time.Second}
	} else {
		backend = transfer.NewCircleClient(
			cfg.Transfer.CircleBaseURL, cfg.Transfer.CircleAPIKey, cfg.Transfer.Timeout)
	}
	executor := transfer.NewExecutor(
		transfer.NewReliabilityWrapper(backend), cfg.Transfer.Timeout, logger)

	// 6. Audit trail: события летят в базу пачками
	trail := audit.NewTrail(auditStorage, logger,
		cfg.Audit.BufferSize, cfg.Audit.BatchSize, cfg.Audit.FlushInterval)
	trail.Start()
	defer trail.Stop()

	// 7. Метрики
	reg := prometheus.NewRegistry()
	metrics := lifecycle.NewMetrics(reg)
	go func() {
		http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		log.Fatal(http.ListenAndServe(":9090", nil))
	}()

	// 8. Сборка ядра и HTTP-поверхности
	manager := lifecycle.NewManager(activityStore, txStore, policyStore,
		boundary, executor, trail, notifier, metrics, logger)
	policyService := lifecycle.NewPolicyService(policyStore, notifier, logger)

	api := server.NewAssistantServer(logger,
		handler.NewIntentHandler(manager),
		handler.NewActivityHandler(manager),
		handler.NewPolicyHandler(policyService),
		handler.NewAuditHandler(auditSource),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Aurralis API started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-stop // Ждем сигнал
	logger.Info("Aurralis stopping...")

	// Даем время на завершение approve в полете
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}
	logger.Info("Aurralis exited properly")
}
