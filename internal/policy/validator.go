package policy

/*
Файл validator.go — чистый движок проверки Intent против Policy.
Никакого I/O и состояния: вход — значения, выход — вердикт.
Порядок правил фиксирован и является частью контракта:
он определяет порядок policy_checks и violations в ответе API.
*/

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theefatymah/Aurralis/internal/domain"
)

// Имена правил — идут в policy_checks заявки (audit display).
const (
	RuleMaxTx          = "Max Transaction Limit"
	RuleMonthlyBudget  = "Monthly Budget"
	RuleApprovedVendor = "Approved Vendor"
	RuleBlockList      = "Block List"
)

// Result — итог прогона всех правил.
type Result struct {
	IsValid    bool                 `json:"is_valid"`
	Violations []string             `json:"violations"`
	Checks     []domain.PolicyCheck `json:"policy_checks"`
}

// Validate прогоняет intent через правила политики в фиксированном порядке.
//
// Асимметрия по дизайну: провал Approved Vendor фиксируется как check,
// но НЕ дает violation (список advisory). Попадание в Block List —
// всегда violation. Не унифицировать в один "on list" boolean.
func Validate(intent domain.Intent, p domain.Policy) Result {
	violations := make([]string, 0)
	checks := make([]domain.PolicyCheck, 0, 4)

	amount := intent.Amount
	name := intent.RecipientName

	// 1. Max Transaction Limit
	maxPassed := amount <= p.MaxTxAmount
	sign := "≤"
	if !maxPassed {
		sign = ">"
	}
	checks = append(checks, domain.PolicyCheck{
		Rule:    RuleMaxTx,
		Passed:  maxPassed,
		Message: fmt.Sprintf("$%s %s $%s", fmtAmount(amount), sign, fmtAmount(p.MaxTxAmount)),
	})
	if !maxPassed {
		violations = append(violations,
			fmt.Sprintf("Amount $%s exceeds max transaction limit of $%s", fmtAmount(amount), fmtAmount(p.MaxTxAmount)))
	}

	// 2. Monthly Budget
	remaining := p.MonthlyBudget - p.CurrentMonthlySpent
	budgetPassed := p.CurrentMonthlySpent+amount <= p.MonthlyBudget
	msg := fmt.Sprintf("Remaining: $%.2f", remaining)
	if !budgetPassed {
		msg = fmt.Sprintf("Would exceed by $%.2f", p.CurrentMonthlySpent+amount-p.MonthlyBudget)
	}
	checks = append(checks, domain.PolicyCheck{
		Rule:    RuleMonthlyBudget,
		Passed:  budgetPassed,
		Message: msg,
	})
	if !budgetPassed {
		violations = append(violations,
			fmt.Sprintf("Would exceed monthly limit. Remaining: $%.2f", remaining))
	}

	// 3. Approved Vendor — правило вообще не эмитится при пустом allow_list
	// (не auto-pass, а отсутствие check-записи)
	if len(p.AllowList) > 0 {
		onAllow := matchVendor(name, p.AllowList)
		verdict := "on"
		if !onAllow {
			verdict = "not on"
		}
		checks = append(checks, domain.PolicyCheck{
			Rule:    RuleApprovedVendor,
			Passed:  onAllow,
			Message: fmt.Sprintf("%s is %s approved list", name, verdict),
		})
		// Advisory: без violation
	}

	// 4. Block List — check появляется только при совпадении и всегда блокирует
	if matchVendor(name, p.BlockList) {
		checks = append(checks, domain.PolicyCheck{
			Rule:    RuleBlockList,
			Passed:  false,
			Message: fmt.Sprintf("%s is on the block list", name),
		})
		violations = append(violations, fmt.Sprintf("Recipient %s is on the block list", name))
	}

	return Result{
		IsValid:    len(violations) == 0,
		Violations: violations,
		Checks:     checks,
	}
}

// DetermineStatus маппит вердикт в стартовый статус заявки.
func DetermineStatus(isValid bool) domain.ActivityStatus {
	if isValid {
		return domain.StatusPendingApproval
	}
	return domain.StatusFlaggedByPolicy
}

// matchVendor — case-insensitive вхождение имени вендора из списка в recipient name.
func matchVendor(recipientName string, vendors []string) bool {
	if recipientName == "" {
		return false
	}
	lower := strings.ToLower(recipientName)
	for _, v := range vendors {
		if v == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(v)) {
			return true
		}
	}
	return false
}

// fmtAmount печатает сумму без хвостовых нулей ($50, $1500.5).
func fmtAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
