package persistence

import (
	"context"
	"errors"

	"github.com/books/backend/internal/domain/accounting"
	"github.com/books/backend/internal/domain/shared"
	"github.com/books/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAdjustmentRepository implements accounting.AdjustmentRepository using GORM
type GormAdjustmentRepository struct {
	db *gorm.DB
}

// NewGormAdjustmentRepository creates a new GormAdjustmentRepository
func NewGormAdjustmentRepository(db *gorm.DB) *GormAdjustmentRepository {
	return &GormAdjustmentRepository{db: db}
}

// FindByID finds an adjustment rule by its ID
func (r *GormAdjustmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.Adjustment, error) {
	var model models.AdjustmentModel
	if err := dbFrom(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds the adjustment rules matching the given IDs
func (r *GormAdjustmentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]accounting.Adjustment, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []models.AdjustmentModel
	if err := dbFrom(ctx, r.db).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}

	out := make([]accounting.Adjustment, len(found))
	for i := range found {
		out[i] = *found[i].ToDomain()
	}
	return out, nil
}

// FindActiveForCompany finds the approved adjustments for a company
func (r *GormAdjustmentRepository) FindActiveForCompany(ctx context.Context, companyID uuid.UUID) ([]accounting.Adjustment, error) {
	var found []models.AdjustmentModel
	err := dbFrom(ctx, r.db).
		Where("company_id = ? AND status = ?", companyID, accounting.AdjustmentStatusApproved).
		Order("name ASC").
		Find(&found).Error
	if err != nil {
		return nil, err
	}

	out := make([]accounting.Adjustment, len(found))
	for i := range found {
		out[i] = *found[i].ToDomain()
	}
	return out, nil
}

// IsReferenced reports whether any line item snapshot references the
// adjustment. Referenced rules are frozen.
func (r *GormAdjustmentRepository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := dbFrom(ctx, r.db).
		Model(&models.LineItemAdjustmentModel{}).
		Where("adjustment_id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an adjustment rule
func (r *GormAdjustmentRepository) Save(ctx context.Context, adjustment *accounting.Adjustment) error {
	model := models.AdjustmentModelFromDomain(adjustment)
	return dbFrom(ctx, r.db).Save(model).Error
}

// Delete removes an adjustment rule
func (r *GormAdjustmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFrom(ctx, r.db).Delete(&models.AdjustmentModel{}, "id = ?", id).Error
}

var _ accounting.AdjustmentRepository = (*GormAdjustmentRepository)(nil)
