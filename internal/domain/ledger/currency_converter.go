package ledger

import (
	"context"
	"fmt"

	"github.com/books/backend/internal/domain/shared"
	"github.com/books/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// RateProvider supplies exchange rates for currency pairs. Lookups are
// read-mostly; implementations may cache with a bounded TTL. Staleness
// is a business risk callers accept, not a correctness one.
type RateProvider interface {
	// Rate returns the exchange rate from one currency to another.
	// Returns shared.ErrUnknownCurrency if no rate exists for the pair.
	Rate(ctx context.Context, from, to valueobject.Currency) (decimal.Decimal, error)
}

// CurrencyConverter converts cent amounts between currencies
type CurrencyConverter interface {
	// Convert converts an amount in cents from one currency to another.
	// Identity when the currencies match; fails with
	// shared.ErrUnknownCurrency when no rate exists.
	Convert(ctx context.Context, amountCents int64, from, to valueobject.Currency) (int64, error)

	// ConvertMoney converts a Money value into the target currency
	ConvertMoney(ctx context.Context, amount valueobject.Money, to valueobject.Currency) (valueobject.Money, error)
}

// RateTableConverter converts amounts through a RateProvider.
// Conversion rounds half-up on amount x rate, the same rule Money uses
// at float boundaries.
type RateTableConverter struct {
	rates RateProvider
}

// NewRateTableConverter creates a converter backed by a rate provider
func NewRateTableConverter(rates RateProvider) *RateTableConverter {
	return &RateTableConverter{rates: rates}
}

// Convert converts an amount in cents between currencies
func (c *RateTableConverter) Convert(ctx context.Context, amountCents int64, from, to valueobject.Currency) (int64, error) {
	if from == to {
		// Identity conversion never touches the rate table.
		return amountCents, nil
	}

	rate, err := c.rates.Rate(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("convert %s to %s: %w", from, to, err)
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return 0, fmt.Errorf("convert %s to %s: %w", from, to, shared.ErrUnknownCurrency)
	}

	return decimal.NewFromInt(amountCents).Mul(rate).Round(0).IntPart(), nil
}

// ConvertMoney converts a Money value into the target currency
func (c *RateTableConverter) ConvertMoney(ctx context.Context, amount valueobject.Money, to valueobject.Currency) (valueobject.Money, error) {
	cents, err := c.Convert(ctx, amount.Amount(), amount.Currency(), to)
	if err != nil {
		return valueobject.Money{}, err
	}
	return valueobject.MustNewMoney(cents, to), nil
}
