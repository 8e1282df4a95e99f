package currency

import (
	"context"
	"fmt"

	"github.com/books/backend/internal/domain/ledger"
	"github.com/books/backend/internal/domain/shared"
	"github.com/books/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// StaticRateProvider serves exchange rates from a fixed in-process
// table, keyed "FROM/TO". Missing pairs fall back through the inverse
// rate before failing.
type StaticRateProvider struct {
	rates map[string]decimal.Decimal
}

// NewStaticRateProvider creates a provider from a rate table keyed
// "FROM/TO", e.g. {"EUR/USD": 1.0855}
func NewStaticRateProvider(rates map[string]decimal.Decimal) *StaticRateProvider {
	table := make(map[string]decimal.Decimal, len(rates))
	for pair, rate := range rates {
		table[pair] = rate
	}
	return &StaticRateProvider{rates: table}
}

// Rate returns the exchange rate for a currency pair
func (p *StaticRateProvider) Rate(_ context.Context, from, to valueobject.Currency) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	if rate, ok := p.rates[pairKey(from, to)]; ok {
		return rate, nil
	}
	if inverse, ok := p.rates[pairKey(to, from)]; ok && !inverse.IsZero() {
		return decimal.NewFromInt(1).DivRound(inverse, 12), nil
	}
	return decimal.Zero, fmt.Errorf("no rate for %s/%s: %w", from, to, shared.ErrUnknownCurrency)
}

func pairKey(from, to valueobject.Currency) string {
	return from.String() + "/" + to.String()
}

var _ ledger.RateProvider = (*StaticRateProvider)(nil)
