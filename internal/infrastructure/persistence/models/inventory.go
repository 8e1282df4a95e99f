package models

import (
	"time"

	"github.com/books/backend/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStockModel is the persistence model for the ProductStock
// aggregate root
type ProductStockModel struct {
	CompanyAggregateModel
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_company_product,priority:2"`
	QuantityOnHand decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductStockModel) TableName() string {
	return "product_stocks"
}

// ToDomain converts the persistence model to a domain ProductStock
func (m *ProductStockModel) ToDomain() *inventory.ProductStock {
	return &inventory.ProductStock{
		CompanyAggregateRoot: m.ToCompanyAggregateRoot(),
		ProductID:            m.ProductID,
		QuantityOnHand:       m.QuantityOnHand,
	}
}

// FromDomain populates the persistence model from a domain ProductStock
func (m *ProductStockModel) FromDomain(stock *inventory.ProductStock) {
	m.FromDomainCompanyAggregateRoot(stock.CompanyAggregateRoot)
	m.ProductID = stock.ProductID
	m.QuantityOnHand = stock.QuantityOnHand
}

// ProductStockModelFromDomain creates a new persistence model from a domain ProductStock
func ProductStockModelFromDomain(stock *inventory.ProductStock) *ProductStockModel {
	m := &ProductStockModel{}
	m.FromDomain(stock)
	return m
}

// StockMovementModel is the persistence model for a stock movement record
type StockMovementModel struct {
	ID         uuid.UUID                   `gorm:"type:uuid;primary_key"`
	CompanyID  uuid.UUID                   `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID                   `gorm:"type:uuid;not null;index"`
	DocumentID *uuid.UUID                  `gorm:"type:uuid;index"`
	Direction  inventory.MovementDirection `gorm:"type:varchar(20);not null"`
	Quantity   decimal.Decimal             `gorm:"type:decimal(18,4);not null"`
	OccurredAt time.Time                   `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement
func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		ID:         m.ID,
		CompanyID:  m.CompanyID,
		ProductID:  m.ProductID,
		DocumentID: m.DocumentID,
		Direction:  m.Direction,
		Quantity:   m.Quantity,
		OccurredAt: m.OccurredAt,
	}
}

// FromDomain populates the persistence model from a domain StockMovement
func (m *StockMovementModel) FromDomain(movement *inventory.StockMovement) {
	m.ID = movement.ID
	m.CompanyID = movement.CompanyID
	m.ProductID = movement.ProductID
	m.DocumentID = movement.DocumentID
	m.Direction = movement.Direction
	m.Quantity = movement.Quantity
	m.OccurredAt = movement.OccurredAt
}

// StockMovementModelFromDomain creates a new persistence model from a domain StockMovement
func StockMovementModelFromDomain(movement *inventory.StockMovement) *StockMovementModel {
	m := &StockMovementModel{}
	m.FromDomain(movement)
	return m
}
