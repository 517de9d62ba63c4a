package extractor

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/theefatymah/Aurralis/internal/domain"
)

var (
	amountRe    = regexp.MustCompile(`\$?(\d+(?:\.\d{2})?)`)
	recipientRe = regexp.MustCompile(`(?i)to\s+([a-zA-Z0-9]+)`)
)

// FallbackParse — минимальный pattern-парсер на случай отказа классификатора.
// Распознает сумму с ведущим долларом и токен "to <name>"; иначе nil.
func FallbackParse(query string) *domain.Intent {
	amountMatch := amountRe.FindStringSubmatch(query)
	recipientMatch := recipientRe.FindStringSubmatch(query)

	if amountMatch == nil || recipientMatch == nil {
		return nil
	}

	amount, err := strconv.ParseFloat(amountMatch[1], 64)
	if err != nil || amount <= 0 {
		return nil
	}
	name := recipientMatch[1]

	return &domain.Intent{
		Amount:        amount,
		Currency:      domain.DefaultCurrency,
		Recipient:     PseudoAddress(name, amount),
		RecipientName: name,
		Reasoning: fmt.Sprintf(
			"Detected payment of $%s to %s. Please review the transaction details and policy limits before approving.",
			amountMatch[1], name),
	}
}
