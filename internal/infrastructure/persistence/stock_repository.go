package persistence

import (
	"context"
	"errors"

	"github.com/books/backend/internal/domain/inventory"
	"github.com/books/backend/internal/domain/shared"
	"github.com/books/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockRepository implements inventory.StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// FindByProduct finds the stock record for a product within a company
func (r *GormStockRepository) FindByProduct(ctx context.Context, companyID, productID uuid.UUID) (*inventory.ProductStock, error) {
	return r.findOne(dbFrom(ctx, r.db), companyID, productID)
}

// FindByProductForUpdate finds the stock record holding a row lock for
// the duration of the enclosing transaction
func (r *GormStockRepository) FindByProductForUpdate(ctx context.Context, companyID, productID uuid.UUID) (*inventory.ProductStock, error) {
	return r.findOne(
		dbFrom(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}),
		companyID, productID,
	)
}

// SaveStock persists the stock record
func (r *GormStockRepository) SaveStock(ctx context.Context, stock *inventory.ProductStock) error {
	model := models.ProductStockModelFromDomain(stock)
	return dbFrom(ctx, r.db).Save(model).Error
}

// SaveMovement persists a stock movement record
func (r *GormStockRepository) SaveMovement(ctx context.Context, movement *inventory.StockMovement) error {
	model := models.StockMovementModelFromDomain(movement)
	return dbFrom(ctx, r.db).Create(model).Error
}

// FindMovementsByDocument finds all movements caused by a document
func (r *GormStockRepository) FindMovementsByDocument(ctx context.Context, documentID uuid.UUID) ([]inventory.StockMovement, error) {
	var found []models.StockMovementModel
	err := dbFrom(ctx, r.db).
		Where("document_id = ?", documentID).
		Order("occurred_at ASC").
		Find(&found).Error
	if err != nil {
		return nil, err
	}

	out := make([]inventory.StockMovement, len(found))
	for i := range found {
		out[i] = *found[i].ToDomain()
	}
	return out, nil
}

func (r *GormStockRepository) findOne(db *gorm.DB, companyID, productID uuid.UUID) (*inventory.ProductStock, error) {
	var model models.ProductStockModel
	err := db.Where("company_id = ? AND product_id = ?", companyID, productID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var _ inventory.StockRepository = (*GormStockRepository)(nil)
