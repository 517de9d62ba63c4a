package extractor

/*
Граница извлечения Intent. Ядро зависит только от интерфейса Extractor:
классификатор — внешний коллаборатор, который может отвалиться или вернуть мусор.
Boundary гарантирует контракт ядра: либо nil (не транзакция), либо полностью
заполненный Intent с детерминированным placeholder-адресом.
*/

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/theefatymah/Aurralis/internal/domain"
)

// Extractor превращает свободный текст + контекст политики в догадку об Intent.
// nil intent без ошибки — запрос не является транзакцией.
type Extractor interface {
	ProcessQuery(ctx context.Context, query string, p domain.Policy) (*domain.Intent, error)
}

// Boundary оборачивает основной классификатор деградацией до pattern-парсера.
// Отказ классификатора (таймаут, битый вывод) — не ошибка для вызывающего:
// сначала fallback, и только если он тоже пуст — запрос нетранзакционный.
type Boundary struct {
	primary Extractor // может быть nil (режим без LLM)
	logger  *zap.Logger
}

func NewBoundary(primary Extractor, logger *zap.Logger) *Boundary {
	return &Boundary{
		primary: primary,
		logger:  logger.Named("extractor"),
	}
}

func (b *Boundary) ProcessQuery(ctx context.Context, query string, p domain.Policy) (*domain.Intent, error) {
	var intent *domain.Intent

	if b.primary != nil {
		got, err := b.primary.ProcessQuery(ctx, query, p)
		if err != nil {
			// Деградация, не отказ
			b.logger.Warn("primary extractor failed, falling back to pattern parse",
				zap.Error(err))
		} else {
			intent = got
		}
	}

	if intent == nil {
		intent = FallbackParse(query)
	}

	if intent == nil || intent.Amount <= 0 {
		return nil, nil // не транзакция
	}

	normalize(intent)
	return intent, nil
}

// normalize достраивает обязательные поля контракта.
func normalize(in *domain.Intent) {
	if in.Currency == "" {
		in.Currency = domain.DefaultCurrency
	}
	if in.Recipient == "" {
		in.Recipient = PseudoAddress(in.RecipientName, in.Amount)
	}
}

// PseudoAddress синтезирует placeholder-адрес из (имя, сумма).
// Детерминирован: одна и та же пара всегда дает один адрес.
func PseudoAddress(recipientName string, amount float64) string {
	name := recipientName
	if name == "" {
		name = "unknown"
	}
	sum := md5.Sum([]byte(name + strconv.FormatFloat(amount, 'f', -1, 64)))
	h := hex.EncodeToString(sum[:])[:8]
	return fmt.Sprintf("0x%s...%s", h, h[4:])
}
