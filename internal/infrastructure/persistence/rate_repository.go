package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/books/backend/internal/domain/ledger"
	"github.com/books/backend/internal/domain/shared"
	"github.com/books/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExchangeRateModel is one row of the exchange rate table
type ExchangeRateModel struct {
	FromCurrency string          `gorm:"type:varchar(3);primary_key"`
	ToCurrency   string          `gorm:"type:varchar(3);primary_key"`
	Rate         decimal.Decimal `gorm:"type:decimal(18,8);not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ExchangeRateModel) TableName() string {
	return "exchange_rates"
}

// GormRateProvider implements ledger.RateProvider from the
// exchange_rates table. Missing direct pairs fall back through the
// inverse rate before failing.
type GormRateProvider struct {
	db *gorm.DB
}

// NewGormRateProvider creates a new GormRateProvider
func NewGormRateProvider(db *gorm.DB) *GormRateProvider {
	return &GormRateProvider{db: db}
}

// Rate returns the exchange rate for a currency pair
func (r *GormRateProvider) Rate(ctx context.Context, from, to valueobject.Currency) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	rate, err := r.lookup(ctx, from, to)
	if err == nil {
		return rate, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, err
	}

	inverse, err := r.lookup(ctx, to, from)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, fmt.Errorf("no rate for %s/%s: %w", from, to, shared.ErrUnknownCurrency)
		}
		return decimal.Zero, err
	}
	if inverse.IsZero() {
		return decimal.Zero, fmt.Errorf("zero rate for %s/%s: %w", to, from, shared.ErrUnknownCurrency)
	}
	return decimal.NewFromInt(1).DivRound(inverse, 12), nil
}

// UpsertRate stores a rate for a currency pair
func (r *GormRateProvider) UpsertRate(ctx context.Context, from, to valueobject.Currency, rate decimal.Decimal) error {
	if rate.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Exchange rate must be positive")
	}
	model := ExchangeRateModel{
		FromCurrency: string(from),
		ToCurrency:   string(to),
		Rate:         rate,
	}
	return dbFrom(ctx, r.db).Save(&model).Error
}

func (r *GormRateProvider) lookup(ctx context.Context, from, to valueobject.Currency) (decimal.Decimal, error) {
	var model ExchangeRateModel
	err := dbFrom(ctx, r.db).
		First(&model, "from_currency = ? AND to_currency = ?", string(from), string(to)).Error
	if err != nil {
		return decimal.Zero, err
	}
	return model.Rate, nil
}

var _ ledger.RateProvider = (*GormRateProvider)(nil)
