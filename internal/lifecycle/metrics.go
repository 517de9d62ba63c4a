package lifecycle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Traffic: обработанные запросы на извлечение intent
	IntentsTotal *prometheus.CounterVec

	// Решения оператора и их исходы
	ApprovalsTotal *prometheus.CounterVec

	// Latency полного цикла approve (включая платежный бэкенд)
	ApprovalDuration prometheus.Histogram

	// Неоднозначные завершения перевода (деньги в полете)
	TransferTimeouts prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern: без регистратора метрики живут в изолированном реестре
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		IntentsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "aurralis_intents_total",
			Help: "Total number of processed intent queries.",
		}, []string{"outcome"}), // transaction, non_transaction, flagged

		ApprovalsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "aurralis_approvals_total",
			Help: "Total number of approval attempts by result.",
		}, []string{"result"}), // executed, executing, conflict, revalidation_failed, invalid_state, failed

		ApprovalDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "aurralis_approval_duration_seconds",
			Help:    "Histogram of end-to-end approval latencies.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),

		TransferTimeouts: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "aurralis_transfer_timeouts_total",
			Help: "Transfers that exceeded the deadline and were marked pending_on_chain.",
		}),
	}
}
