package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/theefatymah/Aurralis/internal/domain"
)

// jsonBlockRe вырезает первый JSON-объект из ответа модели
// (модели любят оборачивать JSON в markdown и пояснения).
var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// GeminiExtractor — основной классификатор намерений через Gemini API.
type GeminiExtractor struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGeminiExtractor(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiExtractor{client: client, model: model, timeout: timeout}, nil
}

// geminiIntent — ожидаемая форма JSON-ответа модели.
type geminiIntent struct {
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Recipient     string  `json:"recipient"`
	RecipientName string  `json:"recipientName"`
	Reasoning     string  `json:"reasoning"`
}

func (g *GeminiExtractor) ProcessQuery(ctx context.Context, query string, p domain.Policy) (*domain.Intent, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(buildPrompt(query, p)), nil)
	if err != nil {
		return nil, fmt.Errorf("gemini call failed: %w", err)
	}

	raw := resp.Text()
	block := jsonBlockRe.FindString(raw)
	if block == "" {
		return nil, fmt.Errorf("gemini returned no JSON object: %q", truncate(raw, 120))
	}

	var gi geminiIntent
	if err := json.Unmarshal([]byte(block), &gi); err != nil {
		return nil, fmt.Errorf("gemini returned malformed JSON: %w", err)
	}

	// amount отсутствует/null — модель решила, что это не транзакция
	if gi.Amount <= 0 {
		return nil, nil
	}

	return &domain.Intent{
		Amount:        gi.Amount,
		Currency:      gi.Currency,
		Recipient:     gi.Recipient,
		RecipientName: gi.RecipientName,
		Reasoning:     gi.Reasoning,
	}, nil
}

func buildPrompt(query string, p domain.Policy) string {
	var b strings.Builder
	b.WriteString("You are a financial AI assistant analyzing transaction requests.\n\n")
	b.WriteString("Current Policy Limits:\n")
	fmt.Fprintf(&b, "- Max Transaction: $%.0f\n", p.MaxTxAmount)
	fmt.Fprintf(&b, "- Monthly Budget: $%.0f\n", p.MonthlyBudget)
	fmt.Fprintf(&b, "- Current Monthly Spent: $%.2f\n", p.CurrentMonthlySpent)
	fmt.Fprintf(&b, "- Approved Vendors: %s\n\n", strings.Join(p.AllowList, ", "))
	fmt.Fprintf(&b, "User Query: %q\n\n", query)
	b.WriteString(`Extract the following information in JSON format:
1. amount: The transaction amount (number, no currency symbol)
2. currency: The currency (default: "USDC")
3. recipient: Generate a mock blockchain address or use vendor name
4. recipientName: The vendor/merchant name (e.g., "Stripe", "Circle")
5. reasoning: A brief explanation (2-3 sentences) of why this transaction is or isn't safe based on policy limits

If the query is not a transaction request, return null for amount.

Respond ONLY with valid JSON, no additional text.`)
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
