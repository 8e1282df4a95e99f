package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/books/backend/internal/domain/accounting"
	"github.com/books/backend/internal/domain/shared"
	"github.com/books/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDocumentRepository implements accounting.DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByID finds a document by its ID
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*accounting.Document, error) {
	return r.findOne(dbFrom(ctx, r.db), "id = ?", id)
}

// FindByIDForCompany finds a document by ID within a company
func (r *GormDocumentRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*accounting.Document, error) {
	return r.findOne(dbFrom(ctx, r.db), "company_id = ? AND id = ?", companyID, id)
}

// FindByIDForUpdate finds a document by ID holding a row lock for the
// duration of the enclosing transaction
func (r *GormDocumentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*accounting.Document, error) {
	return r.findOne(
		dbFrom(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "documents"}}),
		"id = ?", id,
	)
}

// FindByNumber finds a document by its number within a company
func (r *GormDocumentRepository) FindByNumber(ctx context.Context, companyID uuid.UUID, number string) (*accounting.Document, error) {
	return r.findOne(dbFrom(ctx, r.db), "company_id = ? AND number = ?", companyID, number)
}

// FindByKind finds all documents of a kind for a company
func (r *GormDocumentRepository) FindByKind(ctx context.Context, companyID uuid.UUID, kind accounting.DocumentKind) ([]accounting.Document, error) {
	return r.findMany(ctx, "company_id = ? AND kind = ?", companyID, kind)
}

// FindByStatus finds all documents in a status for a company
func (r *GormDocumentRepository) FindByStatus(ctx context.Context, companyID uuid.UUID, status accounting.DocumentStatus) ([]accounting.Document, error) {
	return r.findMany(ctx, "company_id = ? AND status = ?", companyID, status)
}

// NextNumber generates the next document number for a kind, e.g.
// INV-000042. The highest existing suffix is read under a lock so two
// concurrent creates cannot draw the same number.
func (r *GormDocumentRepository) NextNumber(ctx context.Context, companyID uuid.UUID, kind accounting.DocumentKind) (string, error) {
	prefix := kind.NumberPrefix()

	var lastNumber string
	err := dbFrom(ctx, r.db).
		Model(&models.DocumentModel{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("company_id = ? AND kind = ?", companyID, kind).
		Order("number DESC").
		Limit(1).
		Pluck("number", &lastNumber).Error
	if err != nil {
		return "", fmt.Errorf("read last document number: %w", err)
	}

	next := 1
	if suffix, ok := strings.CutPrefix(lastNumber, prefix+"-"); ok {
		if n, parseErr := strconv.Atoi(suffix); parseErr == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s-%06d", prefix, next), nil
}

// Save creates or updates a document together with its line items and
// adjustment snapshots
func (r *GormDocumentRepository) Save(ctx context.Context, doc *accounting.Document) error {
	model := models.DocumentModelFromDomain(doc)

	return dbFrom(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("LineItems").Save(&model).Error; err != nil {
			return err
		}

		// Line items are owned by the document: replace the persisted set
		// with the aggregate's current one.
		keep := make([]uuid.UUID, len(model.LineItems))
		for i := range model.LineItems {
			keep[i] = model.LineItems[i].ID
		}
		stale := tx.Where("document_id = ?", model.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&models.LineItemModel{}).Error; err != nil {
			return err
		}

		for i := range model.LineItems {
			item := &model.LineItems[i]
			if err := tx.Omit("Adjustments").Save(item).Error; err != nil {
				return err
			}
			if err := tx.Where("line_item_id = ?", item.ID).Delete(&models.LineItemAdjustmentModel{}).Error; err != nil {
				return err
			}
			if len(item.Adjustments) > 0 {
				if err := tx.Create(&item.Adjustments).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Delete removes a document and cascades to its line items
func (r *GormDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFrom(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var itemIDs []uuid.UUID
		if err := tx.Model(&models.LineItemModel{}).
			Where("document_id = ?", id).
			Pluck("id", &itemIDs).Error; err != nil {
			return err
		}
		if len(itemIDs) > 0 {
			if err := tx.Where("line_item_id IN ?", itemIDs).Delete(&models.LineItemAdjustmentModel{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("document_id = ?", id).Delete(&models.LineItemModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.DocumentModel{}, "id = ?", id).Error
	})
}

func (r *GormDocumentRepository) findOne(db *gorm.DB, query string, args ...any) (*accounting.Document, error) {
	var model models.DocumentModel
	err := db.
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("line_items.position ASC") }).
		Preload("LineItems.Adjustments").
		Where(query, args...).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormDocumentRepository) findMany(ctx context.Context, query string, args ...any) ([]accounting.Document, error) {
	var found []models.DocumentModel
	err := dbFrom(ctx, r.db).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("line_items.position ASC") }).
		Preload("LineItems.Adjustments").
		Where(query, args...).
		Order("created_at DESC").
		Find(&found).Error
	if err != nil {
		return nil, err
	}

	out := make([]accounting.Document, len(found))
	for i := range found {
		out[i] = *found[i].ToDomain()
	}
	return out, nil
}

var _ accounting.DocumentRepository = (*GormDocumentRepository)(nil)
