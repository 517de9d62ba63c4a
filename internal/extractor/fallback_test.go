package extractor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/theefatymah/Aurralis/internal/domain"
)

func TestFallbackParseDollarAmountAndRecipient(t *testing.T) {
	intent := FallbackParse("Send $50 to Stripe")

	require.NotNil(t, intent)
	assert.Equal(t, 50.0, intent.Amount)
	assert.Equal(t, "Stripe", intent.RecipientName)
	assert.Equal(t, domain.DefaultCurrency, intent.Currency)
	assert.NotEmpty(t, intent.Recipient)
}

func TestFallbackParseNonTransactional(t *testing.T) {
	assert.Nil(t, FallbackParse("what's my current policy?"))
	assert.Nil(t, FallbackParse("hello there"))
}

func TestPseudoAddressIsDeterministic(t *testing.T) {
	a := PseudoAddress("Stripe", 50)
	b := PseudoAddress("Stripe", 50)
	other := PseudoAddress("Stripe", 51)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, other)
	assert.Contains(t, a, "0x")
	assert.Contains(t, a, "...")
}

type failingExtractor struct{}

func (failingExtractor) ProcessQuery(context.Context, string, domain.Policy) (*domain.Intent, error) {
	return nil, errors.New("upstream timeout")
}

func TestBoundaryFallsBackWhenPrimaryFails(t *testing.T) {
	b := NewBoundary(failingExtractor{}, zap.NewNop())

	intent, err := b.ProcessQuery(context.Background(), "Pay $25 to Circle", domain.DefaultPolicy())

	require.NoError(t, err)
	require.NotNil(t, intent)
	assert.Equal(t, 25.0, intent.Amount)
	assert.Equal(t, "Circle", intent.RecipientName)
}

func TestBoundaryNonTransactionalAfterFallback(t *testing.T) {
	b := NewBoundary(failingExtractor{}, zap.NewNop())

	intent, err := b.ProcessQuery(context.Background(), "how are you?", domain.DefaultPolicy())

	require.NoError(t, err)
	assert.Nil(t, intent)
}

type bareIntentExtractor struct{}

func (bareIntentExtractor) ProcessQuery(context.Context, string, domain.Policy) (*domain.Intent, error) {
	// Классификатор опустил recipient и currency
	return &domain.Intent{Amount: 75, RecipientName: "Amazon", Reasoning: "ok"}, nil
}

func TestBoundarySynthesizesMissingRecipient(t *testing.T) {
	b := NewBoundary(bareIntentExtractor{}, zap.NewNop())

	intent, err := b.ProcessQuery(context.Background(), "pay amazon", domain.DefaultPolicy())

	require.NoError(t, err)
	require.NotNil(t, intent)
	assert.Equal(t, PseudoAddress("Amazon", 75), intent.Recipient)
	assert.Equal(t, domain.DefaultCurrency, intent.Currency)
}
