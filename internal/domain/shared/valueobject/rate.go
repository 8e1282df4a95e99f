package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Computation distinguishes how a Rate is applied to an amount
type Computation string

const (
	ComputationPercentage Computation = "PERCENTAGE"
	ComputationFixed      Computation = "FIXED"
)

// IsValid checks if the computation mode is valid
func (c Computation) IsValid() bool {
	return c == ComputationPercentage || c == ComputationFixed
}

// String returns the string representation of Computation
func (c Computation) String() string {
	return string(c)
}

// IsPercentage returns true for percentage computation
func (c Computation) IsPercentage() bool {
	return c == ComputationPercentage
}

// IsFixed returns true for fixed-amount computation
func (c Computation) IsFixed() bool {
	return c == ComputationFixed
}

// RateScale is the factor percentage rates are scaled by for storage:
// 10% is stored as 100_000. Four decimal places of a percentage survive
// the scaling without loss.
const RateScale = 10_000

// rateDivisor converts a cents*scaledRate product back to cents
// (100 for the percent, RateScale for the scaling).
const rateDivisor = 100 * RateScale

// Rate is a scaled-integer representation of a percentage or fixed
// adjustment. Percentage rates hold the percent value multiplied by
// RateScale; fixed rates hold an amount in cents.
type Rate struct {
	scaled      int64
	computation Computation
}

// NewPercentageRate creates a Rate from an already-scaled percentage value
func NewPercentageRate(scaled int64) Rate {
	return Rate{scaled: scaled, computation: ComputationPercentage}
}

// NewPercentageRateFromDecimal creates a percentage Rate from a decimal
// percent value (e.g. 10.5 for 10.5%); scaling rounds half-up.
func NewPercentageRateFromDecimal(percent decimal.Decimal) Rate {
	scaled := percent.Mul(decimal.NewFromInt(RateScale)).Round(0).IntPart()
	return Rate{scaled: scaled, computation: ComputationPercentage}
}

// NewFixedRate creates a fixed Rate from an amount in cents
func NewFixedRate(amountCents int64) Rate {
	return Rate{scaled: amountCents, computation: ComputationFixed}
}

// NewRate creates a Rate with an explicit computation mode
func NewRate(scaled int64, computation Computation) (Rate, error) {
	if !computation.IsValid() {
		return Rate{}, fmt.Errorf("invalid rate computation: %q", computation)
	}
	return Rate{scaled: scaled, computation: computation}, nil
}

// Scaled returns the raw scaled value (percentage) or cents (fixed)
func (r Rate) Scaled() int64 {
	return r.scaled
}

// Computation returns the computation mode
func (r Rate) Computation() Computation {
	return r.computation
}

// IsZero returns true if the rate has no effect
func (r Rate) IsZero() bool {
	return r.scaled == 0
}

// ApplyTo applies the rate to an amount in cents. Percentage rates use
// PercentageOf; fixed rates return the stored cent amount unchanged.
func (r Rate) ApplyTo(amountCents int64) int64 {
	if r.computation.IsPercentage() {
		return PercentageOf(amountCents, r.scaled)
	}
	return r.scaled
}

// Percent returns the percentage value as a decimal (e.g. 10.5),
// zero for fixed rates. Display use only.
func (r Rate) Percent() decimal.Decimal {
	if !r.computation.IsPercentage() {
		return decimal.Zero
	}
	return decimal.New(r.scaled, 0).Div(decimal.NewFromInt(RateScale))
}

// String returns a human-readable representation of the rate
func (r Rate) String() string {
	if r.computation.IsPercentage() {
		return r.Percent().String() + "%"
	}
	return decimal.New(r.scaled, -2).StringFixed(2)
}

// PercentageOf computes scaledRate percent of amountCents with the exact
// rounding the settlement pipeline depends on: the true quotient rounded
// half-up, i.e. floor(amount*scaled/divisor + 0.5). Downstream
// reconciliation requires this rule bit-for-bit; do not swap it for
// float math or banker's rounding.
func PercentageOf(amountCents, scaledRate int64) int64 {
	n := amountCents*scaledRate + rateDivisor/2
	q := n / rateDivisor
	// Go integer division truncates toward zero; correct to floor for
	// negative operands so the rule holds for both signs.
	if n < 0 && n%rateDivisor != 0 {
		q--
	}
	return q
}
