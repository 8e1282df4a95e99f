package accounting

import (
	"testing"

	"github.com/books/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdjustment(t *testing.T, category AdjustmentCategory, adjType AdjustmentType, rate valueobject.Rate) Adjustment {
	t.Helper()
	adj, err := NewAdjustment(uuid.New(), "test adjustment", category, adjType, rate, AdjustmentScopeGlobal)
	require.NoError(t, err)
	require.NoError(t, adj.Approve())
	return *adj
}

func newTestLineItem(t *testing.T, quantity string, unitPriceCents int64, adjustments []Adjustment, method DiscountMethod) *LineItem {
	t.Helper()
	item, err := NewLineItem(
		uuid.New(),
		"widget",
		0,
		decimal.RequireFromString(quantity),
		valueobject.MustNewMoney(unitPriceCents, valueobject.USD),
		uuid.New(),
		adjustments,
		method,
	)
	require.NoError(t, err)
	return item
}

func TestNewLineItem(t *testing.T) {
	t.Run("computes totals with a percentage tax", func(t *testing.T) {
		// qty=3, unit price $10.00, one 10% tax, no discount
		tax := newTestAdjustment(t, AdjustmentCategoryTax, AdjustmentTypeSales, valueobject.NewPercentageRate(10*valueobject.RateScale))
		item := newTestLineItem(t, "3", 1000, []Adjustment{tax}, DiscountMethodPerLineItem)

		assert.Equal(t, int64(3000), item.Subtotal.Amount())
		assert.Equal(t, int64(300), item.TaxTotal.Amount())
		assert.Equal(t, int64(0), item.DiscountTotal.Amount())
		assert.Equal(t, int64(3300), item.Total.Amount())
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewLineItem(uuid.New(), "widget", 0, decimal.Zero,
			valueobject.MustNewMoney(1000, valueobject.USD), uuid.New(), nil, DiscountMethodPerLineItem)
		require.Error(t, err)
	})

	t.Run("rejects negative unit price", func(t *testing.T) {
		_, err := NewLineItem(uuid.New(), "widget", 0, decimal.NewFromInt(1),
			valueobject.MustNewMoney(-100, valueobject.USD), uuid.New(), nil, DiscountMethodPerLineItem)
		require.Error(t, err)
	})
}

func TestLineItem_TotalInvariant(t *testing.T) {
	tax := newTestAdjustment(t, AdjustmentCategoryTax, AdjustmentTypeSales, valueobject.NewPercentageRate(85_000))       // 8.5%
	discount := newTestAdjustment(t, AdjustmentCategoryDiscount, AdjustmentTypeSales, valueobject.NewFixedRate(125))     // $1.25
	item := newTestLineItem(t, "2.5", 999, []Adjustment{tax, discount}, DiscountMethodPerLineItem)

	// total == subtotal + taxTotal - discountTotal, exactly
	assert.Equal(t,
		item.Subtotal.Amount()+item.TaxTotal.Amount()-item.DiscountTotal.Amount(),
		item.Total.Amount())
	assert.Equal(t, int64(2498), item.Subtotal.Amount()) // 2.5 * 999 = 2497.5 rounds half up
}

func TestLineItem_Recalculate(t *testing.T) {
	t.Run("is idempotent", func(t *testing.T) {
		tax := newTestAdjustment(t, AdjustmentCategoryTax, AdjustmentTypeSales, valueobject.NewPercentageRate(10*valueobject.RateScale))
		item := newTestLineItem(t, "3", 1000, []Adjustment{tax}, DiscountMethodPerLineItem)

		before := *item
		item.Recalculate(DiscountMethodPerLineItem)
		item.Recalculate(DiscountMethodPerLineItem)

		assert.Equal(t, before.Subtotal, item.Subtotal)
		assert.Equal(t, before.TaxTotal, item.TaxTotal)
		assert.Equal(t, before.DiscountTotal, item.DiscountTotal)
		assert.Equal(t, before.Total, item.Total)
	})

	t.Run("suppresses line discounts under a document-level discount", func(t *testing.T) {
		discount := newTestAdjustment(t, AdjustmentCategoryDiscount, AdjustmentTypeSales, valueobject.NewPercentageRate(5*valueobject.RateScale))
		item := newTestLineItem(t, "1", 1000, []Adjustment{discount}, DiscountMethodPerLineItem)
		assert.Equal(t, int64(50), item.DiscountTotal.Amount())

		item.Recalculate(DiscountMethodPerDocument)
		assert.Equal(t, int64(0), item.DiscountTotal.Amount())
		assert.Equal(t, int64(1000), item.Total.Amount())
	})

	t.Run("ignores pending and reversed adjustments", func(t *testing.T) {
		pending, err := NewAdjustment(uuid.New(), "pending tax", AdjustmentCategoryTax, AdjustmentTypeSales,
			valueobject.NewPercentageRate(10*valueobject.RateScale), AdjustmentScopeGlobal)
		require.NoError(t, err)

		item := newTestLineItem(t, "1", 1000, []Adjustment{*pending}, DiscountMethodPerLineItem)
		assert.Equal(t, int64(0), item.TaxTotal.Amount())
	})
}

func TestLineItem_UpdateQuantity(t *testing.T) {
	tax := newTestAdjustment(t, AdjustmentCategoryTax, AdjustmentTypeSales, valueobject.NewPercentageRate(10*valueobject.RateScale))
	item := newTestLineItem(t, "3", 1000, []Adjustment{tax}, DiscountMethodPerLineItem)

	require.NoError(t, item.UpdateQuantity(decimal.NewFromInt(5), DiscountMethodPerLineItem))
	assert.Equal(t, int64(5000), item.Subtotal.Amount())
	assert.Equal(t, int64(500), item.TaxTotal.Amount())
	assert.Equal(t, int64(5500), item.Total.Amount())

	assert.Error(t, item.UpdateQuantity(decimal.Zero, DiscountMethodPerLineItem))
}

func TestLineItem_FixedTax(t *testing.T) {
	tax := newTestAdjustment(t, AdjustmentCategoryTax, AdjustmentTypeSales, valueobject.NewFixedRate(250))
	item := newTestLineItem(t, "7", 1234, []Adjustment{tax}, DiscountMethodPerLineItem)

	assert.Equal(t, int64(8638), item.Subtotal.Amount())
	assert.Equal(t, int64(250), item.TaxTotal.Amount())
	assert.Equal(t, int64(8888), item.Total.Amount())
}

func TestLineItem_Replicate(t *testing.T) {
	tax := newTestAdjustment(t, AdjustmentCategoryTax, AdjustmentTypeSales, valueobject.NewPercentageRate(10*valueobject.RateScale))
	item := newTestLineItem(t, "3", 1000, []Adjustment{tax}, DiscountMethodPerLineItem)

	targetDoc := uuid.New()
	replica := item.Replicate(targetDoc, DiscountMethodPerLineItem)

	assert.NotEqual(t, item.ID, replica.ID)
	assert.Equal(t, targetDoc, replica.DocumentID)
	assert.True(t, replica.Quantity.Equal(item.Quantity))
	assert.Equal(t, item.UnitPrice, replica.UnitPrice)
	assert.Equal(t, item.Position, replica.Position)
	assert.Len(t, replica.Adjustments, 1)
	// Totals are recomputed on the replica, not copied, so they match.
	assert.Equal(t, item.Total.Amount(), replica.Total.Amount())
}
