package transfer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/theefatymah/Aurralis/internal/domain"
)

// MockBackend имитирует платежный сандбокс: задержка + детерминированные хэши.
// Используется в тестах и demo-режиме (без Circle API key).
type MockBackend struct {
	Latency time.Duration // 0 — мгновенный ответ
	Fail    bool          // имитация отказа бэкенда
}

func (m *MockBackend) CreateTransfer(ctx context.Context, amount float64, recipient string) (*Receipt, error) {
	if m.Latency > 0 {
		select {
		case <-time.After(m.Latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.Fail {
		return nil, fmt.Errorf("payment backend internal error")
	}

	sum := sha256.Sum256([]byte(fmt.Sprintf("%v%s", amount, recipient)))
	return &Receipt{
		TxHash:    "0x" + hex.EncodeToString(sum[:]),
		Status:    domain.TransferPendingOnChain,
		Amount:    amount,
		Recipient: recipient,
	}, nil
}

func (m *MockBackend) GetTransferStatus(ctx context.Context, txHash string) (*StatusResult, error) {
	if m.Fail {
		return nil, fmt.Errorf("payment backend internal error")
	}
	return &StatusResult{
		TxHash:        txHash,
		Status:        domain.TransferConfirmed,
		Confirmations: 12,
	}, nil
}
