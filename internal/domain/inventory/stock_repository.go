package inventory

import (
	"context"

	"github.com/google/uuid"
)

// StockRepository defines the persistence contract for product stock
// and movements
type StockRepository interface {
	// FindByProduct finds the stock record for a product within a company
	FindByProduct(ctx context.Context, companyID, productID uuid.UUID) (*ProductStock, error)

	// FindByProductForUpdate finds the stock record holding a row lock
	// for the duration of the enclosing transaction
	FindByProductForUpdate(ctx context.Context, companyID, productID uuid.UUID) (*ProductStock, error)

	// SaveStock persists the stock record
	SaveStock(ctx context.Context, stock *ProductStock) error

	// SaveMovement persists a stock movement record
	SaveMovement(ctx context.Context, movement *StockMovement) error

	// FindMovementsByDocument finds all movements caused by a document
	FindMovementsByDocument(ctx context.Context, documentID uuid.UUID) ([]StockMovement, error)
}
