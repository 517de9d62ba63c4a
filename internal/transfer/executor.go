package transfer

/*
Executor исполняет одобренный Intent против платежного бэкенда, гоняя вызов
наперегонки с дедлайном.

Центральное решение по отказам: истекший таймаут — НЕ ошибка. Средства могут
быть уже в полете, поэтому исполнитель синтезирует предварительную квитанцию
pending_on_chain с TimedOut=true и новым хэшем. Сверку доделает внешний
confirmation poller. Репортить таймаут как hard failure нельзя — вызывающий
начнет ретраить и рискует заплатить дважды.
*/

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/theefatymah/Aurralis/internal/domain"
)

// Result — исход исполнения с признаком неоднозначного завершения.
type Result struct {
	TxHash    string
	Status    domain.TransferStatus
	Amount    float64
	Recipient string
	TimedOut  bool
}

type Executor struct {
	backend PaymentBackend
	timeout time.Duration
	logger  *zap.Logger
}

func NewExecutor(backend PaymentBackend, timeout time.Duration, logger *zap.Logger) *Executor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Executor{
		backend: backend,
		timeout: timeout,
		logger:  logger.Named("executor"),
	}
}

// Transfer запускает перевод и ждет ответа бэкенда не дольше таймаута.
// Ошибку возвращает только при явном отказе бэкенда ДО дедлайна —
// в этом случае деньги гарантированно не ушли.
func (e *Executor) Transfer(ctx context.Context, amount float64, recipient string) (*Result, error) {
	type outcome struct {
		receipt *Receipt
		err     error
	}
	ch := make(chan outcome, 1)

	// Вызов не наследует отмену от родителя: обрыв HTTP-запроса не отменяет
	// перевод на стороне бэкенда, а горутина не должна зависнуть навечно.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*e.timeout)

	go func() {
		defer cancel()
		receipt, err := e.backend.CreateTransfer(callCtx, amount, recipient)
		ch <- outcome{receipt: receipt, err: err}
	}()

	deadline := time.NewTimer(e.timeout)
	defer deadline.Stop()

	select {
	case out := <-ch:
		if out.err != nil {
			return nil, fmt.Errorf("transfer failed: %w", out.err)
		}
		return &Result{
			TxHash:    out.receipt.TxHash,
			Status:    out.receipt.Status,
			Amount:    amount,
			Recipient: recipient,
		}, nil

	case <-deadline.C:
		// Неоднозначный исход: средства, возможно, уже уходят.
		e.logger.Warn("transfer deadline elapsed, marking pending_on_chain",
			zap.Float64("amount", amount),
			zap.String("recipient", recipient),
			zap.Duration("timeout", e.timeout))

		return &Result{
			TxHash:    SynthTxHash(amount, recipient),
			Status:    domain.TransferPendingOnChain,
			Amount:    amount,
			Recipient: recipient,
			TimedOut:  true,
		}, nil
	}
}

// SynthTxHash порождает хэш для предварительной квитанции по таймауту.
func SynthTxHash(amount float64, recipient string) string {
	seed := fmt.Sprintf("%v%s%d", amount, recipient, time.Now().UnixNano())
	sum := sha256.Sum256([]byte(seed))
	return "0x" + hex.EncodeToString(sum[:])
}
