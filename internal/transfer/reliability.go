package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ReliabilityWrapper защищает платежный бэкенд: rate limiter + circuit breaker,
// а для read-only проверок статуса — еще и ретраи с умным бэкоффом.
//
// CreateTransfer НЕ ретраится: повтор создания перевода — это риск двойного
// списания. Неоднозначные исходы разруливает Executor (timeout => pending_on_chain).
type ReliabilityWrapper struct {
	next    PaymentBackend
	cb      *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

func NewReliabilityWrapper(next PaymentBackend) *ReliabilityWrapper {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "payment-backend",
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	limiter := rate.NewLimiter(rate.Limit(50), 10)

	return &ReliabilityWrapper{
		next:    next,
		cb:      cb,
		limiter: limiter,
	}
}

func (w *ReliabilityWrapper) CreateTransfer(ctx context.Context, amount float64, recipient string) (*Receipt, error) {
	if err := w.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	result, err := w.cb.Execute(func() (interface{}, error) {
		// Single shot: at-most-once
		return w.next.CreateTransfer(ctx, amount, recipient)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Receipt), nil
}

func (w *ReliabilityWrapper) GetTransferStatus(ctx context.Context, txHash string) (*StatusResult, error) {
	if err := w.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	var final *StatusResult

	result, err := w.cb.Execute(func() (interface{}, error) {
		r := retry.New(
			retry.Context(ctx),
			retry.Attempts(3),
			retry.DelayType(func(n uint, err error, config retry.DelayContext) time.Duration {
				// Если бэкенд прислал Retry-After — уважаем его
				var tErr *ThrottleError
				if errors.As(err, &tErr) {
					return tErr.RetryAfter
				}
				return retry.BackOffDelay(n, err, config)
			}),
		)

		retryErr := r.Do(func() error {
			tCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			var callErr error
			final, callErr = w.next.GetTransferStatus(tCtx, txHash)
			return callErr
		})

		return final, retryErr
	})
	if err != nil {
		return nil, err
	}
	return result.(*StatusResult), nil
}
