package persistence

import (
	"context"
	"errors"

	"github.com/books/backend/internal/domain/ledger"
	"github.com/books/backend/internal/domain/shared"
	"github.com/books/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransactionRepository implements ledger.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a transaction by its ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	err := dbFrom(ctx, r.db).
		Preload("Entries").
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByDocumentID finds all transactions referencing a document
func (r *GormTransactionRepository) FindByDocumentID(ctx context.Context, documentID uuid.UUID) ([]ledger.Transaction, error) {
	return r.findMany(ctx, "document_id = ?", documentID)
}

// FindPaymentsByDocumentID finds the payment transactions for a document
func (r *GormTransactionRepository) FindPaymentsByDocumentID(ctx context.Context, documentID uuid.UUID) ([]ledger.Transaction, error) {
	return r.findMany(ctx, "document_id = ? AND is_payment = ?", documentID, true)
}

// FindJournalByDocumentID finds the journal transaction for a document
func (r *GormTransactionRepository) FindJournalByDocumentID(ctx context.Context, documentID uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	err := dbFrom(ctx, r.db).
		Preload("Entries").
		Where("document_id = ? AND type = ?", documentID, ledger.TransactionTypeJournal).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a transaction with its journal legs
func (r *GormTransactionRepository) Save(ctx context.Context, txn *ledger.Transaction) error {
	model := models.TransactionModelFromDomain(txn)

	return dbFrom(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Entries").Save(&model).Error; err != nil {
			return err
		}
		// Legs never mutate in place; replace the set wholesale.
		if err := tx.Where("transaction_id = ?", model.ID).Delete(&models.JournalEntryModel{}).Error; err != nil {
			return err
		}
		if len(model.Entries) > 0 {
			if err := tx.Create(&model.Entries).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a transaction and its journal legs
func (r *GormTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFrom(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_id = ?", id).Delete(&models.JournalEntryModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.TransactionModel{}, "id = ?", id).Error
	})
}

// DeleteByDocumentID removes every transaction referencing a document
func (r *GormTransactionRepository) DeleteByDocumentID(ctx context.Context, documentID uuid.UUID) error {
	return dbFrom(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID
		if err := tx.Model(&models.TransactionModel{}).
			Where("document_id = ?", documentID).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("transaction_id IN ?", ids).Delete(&models.JournalEntryModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.TransactionModel{}).Error
	})
}

func (r *GormTransactionRepository) findMany(ctx context.Context, query string, args ...any) ([]ledger.Transaction, error) {
	var found []models.TransactionModel
	err := dbFrom(ctx, r.db).
		Preload("Entries").
		Where(query, args...).
		Order("posted_at ASC").
		Find(&found).Error
	if err != nil {
		return nil, err
	}

	out := make([]ledger.Transaction, len(found))
	for i := range found {
		out[i] = *found[i].ToDomain()
	}
	return out, nil
}

var _ ledger.TransactionRepository = (*GormTransactionRepository)(nil)
