package domain

import "time"

// Policy — действующий набор лимитов и вендорских списков.
// "Текущей" считается последняя созданная запись (ORDER BY created_at DESC LIMIT 1).
// CurrentMonthlySpent монотонно растет; уменьшение — только административный сброс (вне системы).
type Policy struct {
	ID                        string    `json:"id"`
	MaxTxAmount               float64   `json:"max_tx_amount"`
	MonthlyBudget             float64   `json:"monthly_budget"`
	CurrentMonthlySpent       float64   `json:"current_monthly_spent"`
	RequiredApprovalThreshold float64   `json:"required_approval_threshold"`
	AllowList                 []string  `json:"allow_list"`
	BlockList                 []string  `json:"block_list"`
	CreatedAt                 time.Time `json:"created_at"`
}

// PolicyUpdate — частичное обновление: перезаписываются только переданные поля.
type PolicyUpdate struct {
	MaxTxAmount               *float64  `json:"max_tx_amount,omitempty"`
	MonthlyBudget             *float64  `json:"monthly_budget,omitempty"`
	RequiredApprovalThreshold *float64  `json:"required_approval_threshold,omitempty"`
	AllowList                 *[]string `json:"allow_list,omitempty"`
	BlockList                 *[]string `json:"block_list,omitempty"`
}

// DefaultPolicy — документированные дефолты, создаются при первом GET /api/policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxTxAmount:               1000,
		MonthlyBudget:             5000,
		CurrentMonthlySpent:       0,
		RequiredApprovalThreshold: 500,
		AllowList:                 []string{"Stripe", "Circle", "Amazon"},
		BlockList:                 []string{},
	}
}

// Apply возвращает копию политики с наложенными переданными полями.
// Политика — immutable value record: обновление порождает новую версию, не мутацию общей.
func (p Policy) Apply(u PolicyUpdate) Policy {
	if u.MaxTxAmount != nil {
		p.MaxTxAmount = *u.MaxTxAmount
	}
	if u.MonthlyBudget != nil {
		p.MonthlyBudget = *u.MonthlyBudget
	}
	if u.RequiredApprovalThreshold != nil {
		p.RequiredApprovalThreshold = *u.RequiredApprovalThreshold
	}
	if u.AllowList != nil {
		p.AllowList = append([]string(nil), (*u.AllowList)...)
	}
	if u.BlockList != nil {
		p.BlockList = append([]string(nil), (*u.BlockList)...)
	}
	return p
}
