package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/theefatymah/Aurralis/internal/domain"
)

func TestTransferReturnsBackendReceiptBeforeDeadline(t *testing.T) {
	backend := &MockBackend{Latency: 5 * time.Millisecond}
	exec := NewExecutor(backend, time.Second, zap.NewNop())

	res, err := exec.Transfer(context.Background(), 50, "0xabcd")

	require.NoError(t, err)
	assert.False(t, res.TimedOut)
	assert.Equal(t, domain.TransferPendingOnChain, res.Status)
	assert.NotEmpty(t, res.TxHash)
	assert.Equal(t, 50.0, res.Amount)
	assert.Equal(t, "0xabcd", res.Recipient)
}

func TestTransferTimeoutYieldsAmbiguousPendingResult(t *testing.T) {
	// Бэкенд отвечает дольше дедлайна — деньги могут быть в полете
	backend := &MockBackend{Latency: 500 * time.Millisecond}
	exec := NewExecutor(backend, 20*time.Millisecond, zap.NewNop())

	res, err := exec.Transfer(context.Background(), 75, "0xdead")

	// Таймаут НИКОГДА не репортится как ошибка
	require.NoError(t, err)
	assert.True(t, res.TimedOut)
	assert.Equal(t, domain.TransferPendingOnChain, res.Status)
	assert.NotEmpty(t, res.TxHash)
}

func TestTransferBackendFailureBeforeDeadlineIsHardError(t *testing.T) {
	backend := &MockBackend{Fail: true}
	exec := NewExecutor(backend, time.Second, zap.NewNop())

	res, err := exec.Transfer(context.Background(), 10, "0xbeef")

	require.Error(t, err)
	assert.Nil(t, res)
}

func TestSynthTxHashShape(t *testing.T) {
	h := SynthTxHash(10, "0x1")
	assert.Len(t, h, 2+64)
	assert.Equal(t, "0x", h[:2])
}
