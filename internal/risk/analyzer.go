package risk

import (
	"go.uber.org/zap"

	"github.com/theefatymah/Aurralis/internal/domain"
)

// Уровни риска для Decision Card.
const (
	LevelLow      = "low"
	LevelElevated = "elevated"
	LevelHigh     = "high"
)

type Analyzer struct {
	logger *zap.Logger
}

func NewAnalyzer(logger *zap.Logger) *Analyzer {
	return &Analyzer{logger: logger.Named("analyzer")}
}

// IsRequired проверяет, нужно ли явное решение человека (HITL).
// Суммы ниже required_approval_threshold UI может одобрять в один клик;
// все, что выше порога или уже зацепило политику, требует осознанного решения.
func (a *Analyzer) IsRequired(p domain.Policy, in domain.Intent, flagged bool) bool {
	if flagged {
		return true
	}
	if p.RequiredApprovalThreshold > 0 && in.Amount > p.RequiredApprovalThreshold {
		a.logger.Warn("DYNAMIC APPROVAL TRIGGERED",
			zap.Float64("amount", in.Amount),
			zap.Float64("threshold", p.RequiredApprovalThreshold),
		)
		return true
	}
	return false
}

// Level оценивает риск как долю суммы от max_tx_amount.
func (a *Analyzer) Level(p domain.Policy, in domain.Intent) string {
	if p.MaxTxAmount <= 0 {
		return LevelLow
	}
	ratio := in.Amount / p.MaxTxAmount
	switch {
	case ratio >= 1:
		return LevelHigh
	case ratio >= 0.5:
		return LevelElevated
	default:
		return LevelLow
	}
}
