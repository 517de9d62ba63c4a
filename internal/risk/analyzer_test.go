package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/theefatymah/Aurralis/internal/domain"
)

func TestApprovalRequiredAboveThreshold(t *testing.T) {
	a := NewAnalyzer(zap.NewNop())
	p := domain.DefaultPolicy() // threshold 500

	assert.False(t, a.IsRequired(p, domain.Intent{Amount: 100}, false))
	assert.False(t, a.IsRequired(p, domain.Intent{Amount: 500}, false))
	assert.True(t, a.IsRequired(p, domain.Intent{Amount: 501}, false))
}

func TestApprovalRequiredWhenFlagged(t *testing.T) {
	a := NewAnalyzer(zap.NewNop())
	p := domain.DefaultPolicy()

	// Нарушение политики всегда требует явного решения, даже на мелкой сумме
	assert.True(t, a.IsRequired(p, domain.Intent{Amount: 10}, true))
}

func TestApprovalThresholdDisabled(t *testing.T) {
	a := NewAnalyzer(zap.NewNop())
	p := domain.DefaultPolicy()
	p.RequiredApprovalThreshold = 0

	assert.False(t, a.IsRequired(p, domain.Intent{Amount: 999999}, false))
}

func TestRiskLevels(t *testing.T) {
	a := NewAnalyzer(zap.NewNop())
	p := domain.DefaultPolicy() // max_tx 1000

	assert.Equal(t, LevelLow, a.Level(p, domain.Intent{Amount: 100}))
	assert.Equal(t, LevelElevated, a.Level(p, domain.Intent{Amount: 500}))
	assert.Equal(t, LevelElevated, a.Level(p, domain.Intent{Amount: 999}))
	assert.Equal(t, LevelHigh, a.Level(p, domain.Intent{Amount: 1000}))

	p.MaxTxAmount = 0
	assert.Equal(t, LevelLow, a.Level(p, domain.Intent{Amount: 5000}))
}
