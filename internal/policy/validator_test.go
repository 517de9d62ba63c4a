package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theefatymah/Aurralis/internal/domain"
)

func basePolicy() domain.Policy {
	return domain.Policy{
		MaxTxAmount:         1000,
		MonthlyBudget:       5000,
		CurrentMonthlySpent: 0,
		AllowList:           []string{"Stripe"},
		BlockList:           []string{},
	}
}

func TestValidateApprovedVendorWithinLimits(t *testing.T) {
	res := Validate(domain.Intent{Amount: 50, RecipientName: "Stripe"}, basePolicy())

	require.True(t, res.IsValid)
	require.Empty(t, res.Violations)
	assert.Equal(t, domain.StatusPendingApproval, DetermineStatus(res.IsValid))

	// Порядок checks — часть контракта
	require.Len(t, res.Checks, 3)
	assert.Equal(t, RuleMaxTx, res.Checks[0].Rule)
	assert.Equal(t, RuleMonthlyBudget, res.Checks[1].Rule)
	assert.Equal(t, RuleApprovedVendor, res.Checks[2].Rule)
	assert.True(t, res.Checks[2].Passed)
}

func TestValidateAmountOverMaxLimit(t *testing.T) {
	res := Validate(domain.Intent{Amount: 1500, RecipientName: "dev"}, basePolicy())

	require.False(t, res.IsValid)
	require.NotEmpty(t, res.Violations)
	assert.Contains(t, res.Violations[0], "1500")
	assert.Contains(t, res.Violations[0], "1000")
	assert.False(t, res.Checks[0].Passed)
	assert.Equal(t, domain.StatusFlaggedByPolicy, DetermineStatus(res.IsValid))
}

func TestValidateMonthlyBudgetExceeded(t *testing.T) {
	p := basePolicy()
	p.CurrentMonthlySpent = 4800

	res := Validate(domain.Intent{Amount: 500, RecipientName: "Stripe"}, p)

	require.False(t, res.IsValid)
	assert.False(t, res.Checks[1].Passed)
	assert.Contains(t, res.Checks[1].Message, "Would exceed by $300.00")
	assert.Contains(t, res.Violations[0], "Remaining: $200.00")
}

func TestValidateMonthlyBudgetReportsHeadroom(t *testing.T) {
	p := basePolicy()
	p.CurrentMonthlySpent = 1000

	res := Validate(domain.Intent{Amount: 50, RecipientName: "Stripe"}, p)

	require.True(t, res.IsValid)
	assert.Equal(t, "Remaining: $4000.00", res.Checks[1].Message)
}

func TestValidateVendorNotOnAllowListIsAdvisory(t *testing.T) {
	// Провал Approved Vendor фиксируется как check, но сам по себе не блокирует
	res := Validate(domain.Intent{Amount: 50, RecipientName: "UnknownVendor"}, basePolicy())

	require.True(t, res.IsValid)
	require.Len(t, res.Checks, 3)
	assert.False(t, res.Checks[2].Passed)
	assert.Empty(t, res.Violations)
}

func TestValidateEmptyAllowListOmitsVendorRule(t *testing.T) {
	p := basePolicy()
	p.AllowList = nil

	res := Validate(domain.Intent{Amount: 50, RecipientName: "anyone"}, p)

	require.True(t, res.IsValid)
	// Правило не эмитится вовсе, а не auto-pass
	require.Len(t, res.Checks, 2)
	for _, c := range res.Checks {
		assert.NotEqual(t, RuleApprovedVendor, c.Rule)
	}
}

func TestValidateBlockListAlwaysBlocks(t *testing.T) {
	p := basePolicy()
	p.AllowList = []string{"Evil Corp"} // даже если вендор "одобрен"
	p.BlockList = []string{"Evil Corp"}

	res := Validate(domain.Intent{Amount: 10, RecipientName: "Evil Corp"}, p)

	require.False(t, res.IsValid)
	last := res.Checks[len(res.Checks)-1]
	assert.Equal(t, RuleBlockList, last.Rule)
	assert.False(t, last.Passed)
	assert.Contains(t, res.Violations, "Recipient Evil Corp is on the block list")
}

func TestValidateBlockListMatchIsCaseInsensitive(t *testing.T) {
	p := basePolicy()
	p.BlockList = []string{"scammer"}

	res := Validate(domain.Intent{Amount: 10, RecipientName: "SCAMMER Ltd"}, p)

	require.False(t, res.IsValid)
}

func TestValidateCleanRecipientSkipsBlockListCheck(t *testing.T) {
	res := Validate(domain.Intent{Amount: 10, RecipientName: "Stripe"}, basePolicy())

	for _, c := range res.Checks {
		assert.NotEqual(t, RuleBlockList, c.Rule)
	}
}
