package accounting

import (
	"time"

	"github.com/books/backend/internal/domain/shared"
	"github.com/books/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// quantityPlaces is the precision quantities are rounded to before any
// money math happens.
const quantityPlaces = 4

// LineItem is a quantity x unit price row on a document, with attached
// tax/discount adjustments. It is owned by its Document and deleted with
// it. The cached cent totals are recomputed on every mutation; the
// computation is idempotent for unchanged inputs.
type LineItem struct {
	ID          uuid.UUID
	DocumentID  uuid.UUID
	OfferingID  *uuid.UUID
	ProductID   *uuid.UUID
	Description string
	// Position is the stable ordering key. Discount allocation assigns the
	// rounding remainder to the highest position, so this must never follow
	// display order.
	Position  int
	Quantity  decimal.Decimal
	UnitPrice valueobject.Money
	// Adjustments are snapshots of the approved rules attached to this
	// line, resolved when the line is built.
	Adjustments []Adjustment
	// PostingAccountID is the income (sales) or expense (purchase) account
	// journal legs for this line post to.
	PostingAccountID uuid.UUID

	Subtotal      valueobject.Money
	TaxTotal      valueobject.Money
	DiscountTotal valueobject.Money
	Total         valueobject.Money

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewLineItem creates a line item and computes its totals. Only approved
// adjustments participate; others are carried but ignored.
func NewLineItem(documentID uuid.UUID, description string, position int, quantity decimal.Decimal, unitPrice valueobject.Money, postingAccountID uuid.UUID, adjustments []Adjustment, discountMethod DiscountMethod) (*LineItem, error) {
	if documentID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Line item document ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Unit price cannot be negative")
	}
	if postingAccountID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Posting account cannot be empty")
	}

	now := time.Now()
	item := &LineItem{
		ID:               uuid.New(),
		DocumentID:       documentID,
		Description:      description,
		Position:         position,
		Quantity:         quantity.Round(quantityPlaces),
		UnitPrice:        unitPrice,
		Adjustments:      adjustments,
		PostingAccountID: postingAccountID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	item.Recalculate(discountMethod)
	return item, nil
}

// UpdateQuantity updates the quantity and recomputes totals
func (li *LineItem) UpdateQuantity(quantity decimal.Decimal, discountMethod DiscountMethod) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}
	li.Quantity = quantity.Round(quantityPlaces)
	li.Recalculate(discountMethod)
	li.UpdatedAt = time.Now()
	return nil
}

// UpdateUnitPrice updates the unit price and recomputes totals
func (li *LineItem) UpdateUnitPrice(unitPrice valueobject.Money, discountMethod DiscountMethod) error {
	if unitPrice.IsNegative() {
		return shared.NewDomainError("VALIDATION_ERROR", "Unit price cannot be negative")
	}
	li.UnitPrice = unitPrice
	li.Recalculate(discountMethod)
	li.UpdatedAt = time.Now()
	return nil
}

// ReplaceAdjustments swaps the attached adjustment set and recomputes totals
func (li *LineItem) ReplaceAdjustments(adjustments []Adjustment, discountMethod DiscountMethod) {
	li.Adjustments = adjustments
	li.Recalculate(discountMethod)
	li.UpdatedAt = time.Now()
}

// Taxes returns the active tax adjustments attached to this line
func (li *LineItem) Taxes() []Adjustment {
	return li.filterAdjustments(AdjustmentCategoryTax)
}

// Discounts returns the active discount adjustments attached to this line
func (li *LineItem) Discounts() []Adjustment {
	return li.filterAdjustments(AdjustmentCategoryDiscount)
}

func (li *LineItem) filterAdjustments(category AdjustmentCategory) []Adjustment {
	var out []Adjustment
	for _, adj := range li.Adjustments {
		if adj.Category == category && adj.Status.IsActive() {
			out = append(out, adj)
		}
	}
	return out
}

// AdjustmentAmount computes the cent amount a single adjustment contributes
// on top of this line's subtotal. Used both for line totals and for the
// per-adjustment journal legs, so the two can never drift apart.
func (li *LineItem) AdjustmentAmount(adj Adjustment) int64 {
	return adj.Rate.ApplyTo(li.Subtotal.Amount())
}

// Recalculate recomputes subtotal, tax, discount and total in integer
// cents. When the owning document discounts per-document, line discounts
// are forced to zero; the document-level rate supersedes them.
func (li *LineItem) Recalculate(discountMethod DiscountMethod) {
	currency := li.UnitPrice.Currency()

	subtotalCents := li.Quantity.
		Mul(decimal.NewFromInt(li.UnitPrice.Amount())).
		Round(0).
		IntPart()
	li.Subtotal = valueobject.MustNewMoney(subtotalCents, currency)

	var taxCents int64
	for _, tax := range li.Taxes() {
		taxCents += li.AdjustmentAmount(tax)
	}
	li.TaxTotal = valueobject.MustNewMoney(taxCents, currency)

	var discountCents int64
	if discountMethod != DiscountMethodPerDocument {
		for _, discount := range li.Discounts() {
			discountCents += li.AdjustmentAmount(discount)
		}
	}
	li.DiscountTotal = valueobject.MustNewMoney(discountCents, currency)

	li.Total = valueobject.MustNewMoney(subtotalCents+taxCents-discountCents, currency)
}

// Replicate returns a copy of the line item for a new target document.
// Quantity, price and adjustment references carry over; totals are
// recomputed fresh on the target, never copied.
func (li *LineItem) Replicate(targetDocumentID uuid.UUID, discountMethod DiscountMethod) *LineItem {
	now := time.Now()
	adjustments := make([]Adjustment, len(li.Adjustments))
	copy(adjustments, li.Adjustments)

	replica := &LineItem{
		ID:               uuid.New(),
		DocumentID:       targetDocumentID,
		OfferingID:       li.OfferingID,
		ProductID:        li.ProductID,
		Description:      li.Description,
		Position:         li.Position,
		Quantity:         li.Quantity,
		UnitPrice:        li.UnitPrice,
		Adjustments:      adjustments,
		PostingAccountID: li.PostingAccountID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	replica.Recalculate(discountMethod)
	return replica
}
