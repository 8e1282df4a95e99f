package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	USD Currency = "USD" // US Dollar (default)
	EUR Currency = "EUR" // Euro
	GBP Currency = "GBP" // British Pound
	CAD Currency = "CAD" // Canadian Dollar
	AUD Currency = "AUD" // Australian Dollar
	JPY Currency = "JPY" // Japanese Yen
)

// DefaultCurrency is the fallback currency when none is configured
const DefaultCurrency = USD

// String returns the ISO 4217 code
func (c Currency) String() string {
	return string(c)
}

// Money is a value object representing a monetary amount in integer cents.
// It is immutable - all operations return new Money instances.
// Amounts are never stored as floating point; floats only enter at system
// boundaries through NewMoneyFromFloat, which rounds half-up.
type Money struct {
	amount   int64 // cents
	currency Currency
}

// NewMoney creates a new Money with the specified amount in cents and currency
func NewMoney(amountCents int64, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{
		amount:   amountCents,
		currency: currency,
	}, nil
}

// MustNewMoney creates Money and panics on invalid currency.
// Intended for constants and tests.
func MustNewMoney(amountCents int64, currency Currency) Money {
	m, err := NewMoney(amountCents, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// NewMoneyFromFloat converts a float amount in major units (e.g. 10.99) to
// Money, rounding half-up to the nearest cent. This is the only place float
// input is accepted.
func NewMoneyFromFloat(amount float64, currency Currency) (Money, error) {
	cents := int64(math.Floor(amount*100 + 0.5))
	return NewMoney(cents, currency)
}

// NewMoneyFromDecimal converts a decimal amount in major units to Money,
// rounding half-up to the nearest cent.
func NewMoneyFromDecimal(amount decimal.Decimal, currency Currency) (Money, error) {
	cents := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return NewMoney(cents, currency)
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	return Money{amount: 0, currency: currency}
}

// Amount returns the amount in integer cents
func (m Money) Amount() int64 {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount == 0
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.amount > 0
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount < 0
}

// Add returns a new Money with the sum of both amounts
// Returns error if currencies don't match
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// MustAdd adds two Money values, panics if currencies don't match
func (m Money) MustAdd(other Money) Money {
	result, err := m.Add(other)
	if err != nil {
		panic(err)
	}
	return result
}

// Subtract returns a new Money with the difference
// Returns error if currencies don't match
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot subtract money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount - other.amount, currency: m.currency}, nil
}

// MustSubtract subtracts two Money values, panics if currencies don't match
func (m Money) MustSubtract(other Money) Money {
	result, err := m.Subtract(other)
	if err != nil {
		panic(err)
	}
	return result
}

// MultiplyByRate applies a Rate to this Money. Percentage rates use the
// round-half-up rule from RateCalculator; Fixed rates return the fixed
// amount in this Money's currency regardless of the base amount.
func (m Money) MultiplyByRate(rate Rate) Money {
	return Money{amount: rate.ApplyTo(m.amount), currency: m.currency}
}

// Negate returns a new Money with the sign reversed
func (m Money) Negate() Money {
	return Money{amount: -m.amount, currency: m.currency}
}

// Abs returns a new Money with the absolute value
func (m Money) Abs() Money {
	if m.amount < 0 {
		return m.Negate()
	}
	return m
}

// Equals returns true if both Money values are equal (same amount and currency)
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount == other.amount
}

// Cmp compares two Money values: -1 if m < other, 0 if equal, +1 if m > other.
// Returns error if currencies don't match.
func (m Money) Cmp(other Money) (int, error) {
	if m.currency != other.currency {
		return 0, fmt.Errorf("cannot compare money with different currencies: %s and %s", m.currency, other.currency)
	}
	switch {
	case m.amount < other.amount:
		return -1, nil
	case m.amount > other.amount:
		return 1, nil
	default:
		return 0, nil
	}
}

// GreaterThan returns true if this Money is greater than the other
func (m Money) GreaterThan(other Money) (bool, error) {
	c, err := m.Cmp(other)
	return c > 0, err
}

// LessThan returns true if this Money is less than the other
func (m Money) LessThan(other Money) (bool, error) {
	c, err := m.Cmp(other)
	return c < 0, err
}

// Decimal returns the amount in major units as a decimal (display only)
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.amount, -2)
}

// String returns a string representation of the Money
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Decimal().StringFixed(2), m.currency)
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   int64    `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.amount,
		Currency: m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler. The amount is integer cents.
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   int64    `json:"amount"`
		Currency Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	m.amount = v.Amount
	m.currency = v.Currency
	return nil
}

// Value implements driver.Valuer for database storage.
// Stores the amount in cents; currency lives in its own column.
func (m Money) Value() (driver.Value, error) {
	return m.amount, nil
}

// Scan implements sql.Scanner for database retrieval. Only the cent amount
// is scanned; currency defaults to DefaultCurrency unless already set.
func (m *Money) Scan(value any) error {
	if value == nil {
		m.amount = 0
		if m.currency == "" {
			m.currency = DefaultCurrency
		}
		return nil
	}

	switch v := value.(type) {
	case int64:
		m.amount = v
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return fmt.Errorf("invalid money value: %w", err)
		}
		m.amount = d.IntPart()
	default:
		return fmt.Errorf("cannot scan %T into Money", value)
	}
	if m.currency == "" {
		m.currency = DefaultCurrency
	}
	return nil
}
