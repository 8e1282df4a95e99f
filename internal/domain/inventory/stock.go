package inventory

import (
	"time"

	"github.com/books/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementDirection represents the direction of a stock movement
type MovementDirection string

const (
	MovementDirectionAddition    MovementDirection = "ADDITION"
	MovementDirectionSubtraction MovementDirection = "SUBTRACTION"
)

// IsValid checks if the direction is a valid MovementDirection
func (d MovementDirection) IsValid() bool {
	return d == MovementDirectionAddition || d == MovementDirectionSubtraction
}

// String returns the string representation of MovementDirection
func (d MovementDirection) String() string {
	return string(d)
}

// StockMovement records one inventory quantity change and the document
// that caused it
type StockMovement struct {
	ID         uuid.UUID
	CompanyID  uuid.UUID
	ProductID  uuid.UUID
	DocumentID *uuid.UUID
	Direction  MovementDirection
	Quantity   decimal.Decimal
	OccurredAt time.Time
}

// NewStockMovement creates a stock movement record
func NewStockMovement(companyID, productID uuid.UUID, documentID *uuid.UUID, direction MovementDirection, quantity decimal.Decimal) (*StockMovement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Stock movement product cannot be empty")
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Stock movement direction is not valid")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Stock movement quantity must be positive")
	}

	return &StockMovement{
		ID:         uuid.New(),
		CompanyID:  companyID,
		ProductID:  productID,
		DocumentID: documentID,
		Direction:  direction,
		Quantity:   quantity,
		OccurredAt: time.Now(),
	}, nil
}

// ProductStock is the aggregate tracking the on-hand quantity of a
// product for a company
type ProductStock struct {
	shared.CompanyAggregateRoot
	ProductID      uuid.UUID
	QuantityOnHand decimal.Decimal
}

// NewProductStock creates an empty stock record for a product
func NewProductStock(companyID, productID uuid.UUID) (*ProductStock, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Product ID cannot be empty")
	}

	return &ProductStock{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		ProductID:            productID,
		QuantityOnHand:       decimal.Zero,
	}, nil
}

// Add increases the on-hand quantity
func (s *ProductStock) Add(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}
	s.QuantityOnHand = s.QuantityOnHand.Add(quantity)
	s.Touch()
	return nil
}

// Subtract decreases the on-hand quantity. Fails with the insufficient
// stock sentinel when the available quantity does not cover it.
func (s *ProductStock) Subtract(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("VALIDATION_ERROR", "Quantity must be positive")
	}
	if s.QuantityOnHand.LessThan(quantity) {
		return shared.ErrInsufficientStock
	}
	s.QuantityOnHand = s.QuantityOnHand.Sub(quantity)
	s.Touch()
	return nil
}
