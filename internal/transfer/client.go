package transfer

/*
Клиент платежного бэкенда (Circle-style REST sandbox).
Ядро видит только интерфейс PaymentBackend — реальный клиент, mock и
reliability-обертка взаимозаменяемы.
*/

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/theefatymah/Aurralis/internal/domain"
)

// Receipt — ответ бэкенда на создание перевода.
type Receipt struct {
	TxHash    string                `json:"tx_hash"`
	Status    domain.TransferStatus `json:"status"`
	Amount    float64               `json:"amount"`
	Recipient string                `json:"recipient"`
}

// StatusResult — ответ на проверку статуса по хэшу.
type StatusResult struct {
	TxHash        string                `json:"tx_hash"`
	Status        domain.TransferStatus `json:"status"`
	Confirmations int                   `json:"confirmations"`
}

// PaymentBackend — операции платежного сервиса, которые потребляет ядро.
type PaymentBackend interface {
	CreateTransfer(ctx context.Context, amount float64, recipient string) (*Receipt, error)
	GetTransferStatus(ctx context.Context, txHash string) (*StatusResult, error)
}

// CircleClient — HTTP-клиент к Circle API (sandbox).
type CircleClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewCircleClient(baseURL, apiKey string, timeout time.Duration) *CircleClient {
	if baseURL == "" {
		baseURL = "https://api-sandbox.circle.com"
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &CircleClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *CircleClient) CreateTransfer(ctx context.Context, amount float64, recipient string) (*Receipt, error) {
	body, _ := json.Marshal(map[string]any{
		"amount":    map[string]any{"amount": fmt.Sprintf("%.2f", amount), "currency": domain.DefaultCurrency},
		"recipient": recipient,
	})

	var out Receipt
	if err := c.do(ctx, http.MethodPost, "/v1/transfers", bytes.NewReader(body), &out); err != nil {
		return nil, err
	}
	if out.Status == "" {
		out.Status = domain.TransferPendingOnChain
	}
	out.Amount = amount
	out.Recipient = recipient
	return &out, nil
}

func (c *CircleClient) GetTransferStatus(ctx context.Context, txHash string) (*StatusResult, error) {
	var out StatusResult
	if err := c.do(ctx, http.MethodGet, "/v1/transfers/"+txHash, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CircleClient) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("circle: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("circle: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &ThrottleError{RetryAfter: parseRetryAfter(resp), Cause: fmt.Errorf("circle: rate limited")}
	}
	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("circle: %s %s returned %d: %s", method, path, resp.StatusCode, raw)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("circle: decode response: %w", err)
	}
	return nil
}

func parseRetryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			return d
		}
	}
	return 2 * time.Second
}
