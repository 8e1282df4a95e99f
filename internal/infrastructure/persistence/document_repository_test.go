package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/books/backend/internal/domain/accounting"
	"github.com/books/backend/internal/domain/ledger"
	"github.com/books/backend/internal/domain/shared"
	"github.com/books/backend/internal/domain/shared/valueobject"
	"github.com/books/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newSQLiteDB creates an in-memory database with the full schema
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.DocumentModel{},
		&models.LineItemModel{},
		&models.LineItemAdjustmentModel{},
		&models.AdjustmentModel{},
		&models.TransactionModel{},
		&models.JournalEntryModel{},
		&models.ProductStockModel{},
		&models.StockMovementModel{},
	))
	return db
}

func newStoredDocument(t *testing.T, companyID uuid.UUID) *accounting.Document {
	t.Helper()

	doc, err := accounting.NewDocument(companyID, accounting.DocumentKindInvoice,
		"INV-000001", uuid.New(), valueobject.USD, time.Now())
	require.NoError(t, err)

	tax, err := accounting.NewAdjustment(companyID, "Sales Tax",
		accounting.AdjustmentCategoryTax, accounting.AdjustmentTypeSales,
		valueobject.NewPercentageRateFromDecimal(decimal.NewFromInt(10)),
		accounting.AdjustmentScopeGlobal)
	require.NoError(t, err)
	require.NoError(t, tax.Approve())

	_, err = doc.AddLineItem("Widgets", decimal.NewFromInt(3),
		valueobject.MustNewMoney(1000, valueobject.USD), uuid.New(), []accounting.Adjustment{*tax})
	require.NoError(t, err)
	doc.ClearDomainEvents()
	return doc
}

func TestGormDocumentRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("save and reload preserves the aggregate", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormDocumentRepository(db)
		companyID := uuid.New()
		doc := newStoredDocument(t, companyID)

		require.NoError(t, repo.Save(ctx, doc))

		loaded, err := repo.FindByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, doc.Number, loaded.Number)
		assert.Equal(t, accounting.DocumentStatusDraft, loaded.Status)
		assert.Equal(t, int64(3000), loaded.Subtotal.Amount())
		assert.Equal(t, int64(300), loaded.TaxTotal.Amount())
		assert.Equal(t, int64(3300), loaded.Total.Amount())

		require.Len(t, loaded.LineItems, 1)
		item := loaded.LineItems[0]
		assert.Equal(t, "Widgets", item.Description)
		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(3)))
		require.Len(t, item.Adjustments, 1)
		assert.Equal(t, accounting.AdjustmentStatusApproved, item.Adjustments[0].Status)
		assert.Equal(t, int64(100000), item.Adjustments[0].Rate.Scaled())
	})

	t.Run("removed line items disappear on resave", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormDocumentRepository(db)
		companyID := uuid.New()
		doc := newStoredDocument(t, companyID)
		_, err := doc.AddLineItem("Extras", decimal.NewFromInt(1),
			valueobject.MustNewMoney(500, valueobject.USD), uuid.New(), nil)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, doc))

		require.NoError(t, doc.RemoveLineItem(doc.LineItems[1].ID))
		require.NoError(t, repo.Save(ctx, doc))

		loaded, err := repo.FindByID(ctx, doc.ID)
		require.NoError(t, err)
		assert.Len(t, loaded.LineItems, 1)
		assert.Equal(t, int64(3300), loaded.Total.Amount())
	})

	t.Run("company scoping hides other tenants", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormDocumentRepository(db)
		doc := newStoredDocument(t, uuid.New())
		require.NoError(t, repo.Save(ctx, doc))

		_, err := repo.FindByIDForCompany(ctx, uuid.New(), doc.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("delete cascades to line items", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormDocumentRepository(db)
		doc := newStoredDocument(t, uuid.New())
		require.NoError(t, repo.Save(ctx, doc))

		require.NoError(t, repo.Delete(ctx, doc.ID))

		_, err := repo.FindByID(ctx, doc.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		var itemCount int64
		require.NoError(t, db.Model(&models.LineItemModel{}).Count(&itemCount).Error)
		assert.Zero(t, itemCount)
	})
}

func TestGormTransactionRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()

	t.Run("journal transaction keeps its legs", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormTransactionRepository(db)
		companyID := uuid.New()
		documentID := uuid.New()

		txn, err := ledger.NewTransaction(companyID, ledger.TransactionTypeJournal,
			valueobject.MustNewMoney(3300, valueobject.USD), time.Now(), "Invoice INV-000001")
		require.NoError(t, err)
		txn.DocumentID = &documentID
		require.NoError(t, txn.AddEntry(uuid.New(), ledger.JournalEntryTypeDebit,
			valueobject.MustNewMoney(3300, valueobject.USD), "Accounts receivable"))
		require.NoError(t, txn.AddEntry(uuid.New(), ledger.JournalEntryTypeCredit,
			valueobject.MustNewMoney(3300, valueobject.USD), "Sales income"))

		require.NoError(t, repo.Save(ctx, txn))

		loaded, err := repo.FindJournalByDocumentID(ctx, documentID)
		require.NoError(t, err)
		assert.True(t, loaded.IsBalanced())
		assert.Len(t, loaded.Entries, 2)
		assert.Equal(t, int64(3300), loaded.Amount.Amount())
	})

	t.Run("payment queries skip journals", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormTransactionRepository(db)
		companyID := uuid.New()
		documentID := uuid.New()

		journal, err := ledger.NewTransaction(companyID, ledger.TransactionTypeJournal,
			valueobject.MustNewMoney(5000, valueobject.USD), time.Now(), "")
		require.NoError(t, err)
		journal.DocumentID = &documentID
		require.NoError(t, journal.AddEntry(uuid.New(), ledger.JournalEntryTypeDebit,
			valueobject.MustNewMoney(5000, valueobject.USD), ""))
		require.NoError(t, journal.AddEntry(uuid.New(), ledger.JournalEntryTypeCredit,
			valueobject.MustNewMoney(5000, valueobject.USD), ""))
		require.NoError(t, repo.Save(ctx, journal))

		payment, err := ledger.NewPaymentTransaction(companyID, ledger.TransactionTypeDeposit,
			valueobject.MustNewMoney(2000, valueobject.USD), time.Now(), uuid.New(), documentID, "")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, payment))

		payments, err := repo.FindPaymentsByDocumentID(ctx, documentID)
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, ledger.TransactionTypeDeposit, payments[0].Type)

		all, err := repo.FindByDocumentID(ctx, documentID)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("delete by document clears everything", func(t *testing.T) {
		db := newSQLiteDB(t)
		repo := NewGormTransactionRepository(db)
		companyID := uuid.New()
		documentID := uuid.New()

		payment, err := ledger.NewPaymentTransaction(companyID, ledger.TransactionTypeDeposit,
			valueobject.MustNewMoney(2000, valueobject.USD), time.Now(), uuid.New(), documentID, "")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, payment))

		require.NoError(t, repo.DeleteByDocumentID(ctx, documentID))

		remaining, err := repo.FindByDocumentID(ctx, documentID)
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})
}
