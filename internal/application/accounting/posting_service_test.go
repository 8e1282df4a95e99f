package accounting

import (
	"context"
	"testing"
	"time"

	domainaccounting "github.com/books/backend/internal/domain/accounting"
	"github.com/books/backend/internal/domain/ledger"
	"github.com/books/backend/internal/domain/shared"
	"github.com/books/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fixedRates is a RateProvider with a static rate table
type fixedRates struct {
	rates map[string]decimal.Decimal
}

func (f fixedRates) Rate(_ context.Context, from, to valueobject.Currency) (decimal.Decimal, error) {
	rate, ok := f.rates[from.String()+"/"+to.String()]
	if !ok {
		return decimal.Zero, shared.ErrUnknownCurrency
	}
	return rate, nil
}

// ledgerIdentityConverter is a converter with an empty rate table;
// same-currency conversions are identity, anything else fails
func ledgerIdentityConverter() ledger.CurrencyConverter {
	return ledger.NewRateTableConverter(fixedRates{})
}

type postingFixture struct {
	service   *PostingService
	docRepo   *memoryDocumentRepository
	txnRepo   *memoryTransactionRepository
	publisher *collectingPublisher
}

func newPostingFixture(t *testing.T) *postingFixture {
	t.Helper()

	docRepo := newMemoryDocumentRepository()
	txnRepo := newMemoryTransactionRepository()
	converter := ledger.NewRateTableConverter(fixedRates{rates: map[string]decimal.Decimal{
		"EUR/USD": decimal.NewFromInt(2),
	}})
	publisher := &collectingPublisher{}

	service := NewPostingService(txnRepo, docRepo, newStaticAccountResolver(), converter, valueobject.USD, passthroughUnitOfWork{}, zap.NewNop())
	service.SetEventPublisher(publisher)

	return &postingFixture{service: service, docRepo: docRepo, txnRepo: txnRepo, publisher: publisher}
}

// approvedDocument builds an approved document with a single line item
// totalling totalCents and saves it through the fixture's repository.
func (f *postingFixture) approvedDocument(t *testing.T, kind domainaccounting.DocumentKind, totalCents int64) *domainaccounting.Document {
	t.Helper()

	doc, err := domainaccounting.NewDocument(uuid.New(), kind, "INV-000001", uuid.New(), valueobject.USD, time.Now())
	require.NoError(t, err)

	_, err = doc.AddLineItem("Consulting", decimal.NewFromInt(1),
		valueobject.MustNewMoney(totalCents, valueobject.USD), uuid.New(), nil)
	require.NoError(t, err)

	require.NoError(t, doc.Approve())
	doc.ClearDomainEvents()
	require.NoError(t, f.docRepo.Save(context.Background(), doc))
	return doc
}

func TestPostingServiceRecordPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("full payment settles the invoice", func(t *testing.T) {
		f := newPostingFixture(t)
		doc := f.approvedDocument(t, domainaccounting.DocumentKindInvoice, 5000)
		postedAt := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

		resp, err := f.service.RecordPayment(ctx, doc.CompanyID, RecordPaymentRequest{
			DocumentID:    doc.ID,
			BankAccountID: uuid.New(),
			AmountCents:   5000,
			Currency:      "USD",
			PostedAt:      postedAt,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5000), resp.AmountCents)

		assert.Equal(t, domainaccounting.DocumentStatusPaid, doc.Status)
		assert.Equal(t, int64(5000), doc.AmountPaid.Amount())
		require.NotNil(t, doc.PaidAt)
		assert.True(t, doc.PaidAt.Equal(postedAt))
		assert.True(t, f.publisher.hasEventType(domainaccounting.EventTypeDocumentPaymentStatusChanged))
	})

	t.Run("overpayment marks the invoice overpaid", func(t *testing.T) {
		f := newPostingFixture(t)
		doc := f.approvedDocument(t, domainaccounting.DocumentKindInvoice, 5000)

		_, err := f.service.RecordPayment(ctx, doc.CompanyID, RecordPaymentRequest{
			DocumentID:    doc.ID,
			BankAccountID: uuid.New(),
			AmountCents:   6000,
			Currency:      "USD",
			PostedAt:      time.Now(),
		})
		require.NoError(t, err)

		assert.Equal(t, domainaccounting.DocumentStatusOverpaid, doc.Status)
		assert.Equal(t, int64(6000), doc.AmountPaid.Amount())
	})

	t.Run("partial payment leaves the invoice partial", func(t *testing.T) {
		f := newPostingFixture(t)
		doc := f.approvedDocument(t, domainaccounting.DocumentKindInvoice, 5000)

		_, err := f.service.RecordPayment(ctx, doc.CompanyID, RecordPaymentRequest{
			DocumentID:    doc.ID,
			BankAccountID: uuid.New(),
			AmountCents:   2000,
			Currency:      "USD",
			PostedAt:      time.Now(),
		})
		require.NoError(t, err)

		assert.Equal(t, domainaccounting.DocumentStatusPartial, doc.Status)
		assert.Equal(t, int64(2000), doc.AmountPaid.Amount())
		assert.Nil(t, doc.PaidAt)
	})

	t.Run("bill payment posts a withdrawal", func(t *testing.T) {
		f := newPostingFixture(t)
		doc := f.approvedDocument(t, domainaccounting.DocumentKindBill, 5000)

		resp, err := f.service.RecordPayment(ctx, doc.CompanyID, RecordPaymentRequest{
			DocumentID:    doc.ID,
			BankAccountID: uuid.New(),
			AmountCents:   5000,
			Currency:      "USD",
			PostedAt:      time.Now(),
		})
		require.NoError(t, err)

		assert.Equal(t, ledger.TransactionTypeWithdrawal.String(), resp.Type)
		assert.Equal(t, domainaccounting.DocumentStatusPaid, doc.Status)
	})

	t.Run("foreign currency payment converts into the document currency", func(t *testing.T) {
		f := newPostingFixture(t)
		doc := f.approvedDocument(t, domainaccounting.DocumentKindInvoice, 5000)

		_, err := f.service.RecordPayment(ctx, doc.CompanyID, RecordPaymentRequest{
			DocumentID:    doc.ID,
			BankAccountID: uuid.New(),
			AmountCents:   2500,
			Currency:      "EUR",
			PostedAt:      time.Now(),
		})
		require.NoError(t, err)

		// 2500 EUR cents at rate 2 settle the full 5000 USD cents.
		assert.Equal(t, domainaccounting.DocumentStatusPaid, doc.Status)
		assert.Equal(t, int64(5000), doc.AmountPaid.Amount())
	})

	t.Run("draft documents refuse payments", func(t *testing.T) {
		f := newPostingFixture(t)
		doc, err := domainaccounting.NewDocument(uuid.New(), domainaccounting.DocumentKindInvoice,
			"INV-000002", uuid.New(), valueobject.USD, time.Now())
		require.NoError(t, err)
		require.NoError(t, f.docRepo.Save(ctx, doc))

		_, err = f.service.RecordPayment(ctx, doc.CompanyID, RecordPaymentRequest{
			DocumentID:    doc.ID,
			BankAccountID: uuid.New(),
			AmountCents:   1000,
			Currency:      "USD",
			PostedAt:      time.Now(),
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ILLEGAL_TRANSITION", domainErr.Code)
	})

	t.Run("payments for another company are not found", func(t *testing.T) {
		f := newPostingFixture(t)
		doc := f.approvedDocument(t, domainaccounting.DocumentKindInvoice, 5000)

		_, err := f.service.RecordPayment(ctx, uuid.New(), RecordPaymentRequest{
			DocumentID:    doc.ID,
			BankAccountID: uuid.New(),
			AmountCents:   1000,
			Currency:      "USD",
			PostedAt:      time.Now(),
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPostingServiceDeleteTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("deleting a payment re-derives the status from the rest", func(t *testing.T) {
		f := newPostingFixture(t)
		doc := f.approvedDocument(t, domainaccounting.DocumentKindInvoice, 5000)

		resp, err := f.service.RecordPayment(ctx, doc.CompanyID, RecordPaymentRequest{
			DocumentID:    doc.ID,
			BankAccountID: uuid.New(),
			AmountCents:   5000,
			Currency:      "USD",
			PostedAt:      time.Now(),
		})
		require.NoError(t, err)
		require.Equal(t, domainaccounting.DocumentStatusPaid, doc.Status)

		require.NoError(t, f.service.DeleteTransaction(ctx, resp.ID))

		assert.Equal(t, domainaccounting.DocumentStatusUnpaid, doc.Status)
		assert.Equal(t, int64(0), doc.AmountPaid.Amount())
		assert.Nil(t, doc.PaidAt)
	})

	t.Run("one of two payments gone drops back to partial", func(t *testing.T) {
		f := newPostingFixture(t)
		doc := f.approvedDocument(t, domainaccounting.DocumentKindInvoice, 5000)

		first, err := f.service.RecordPayment(ctx, doc.CompanyID, RecordPaymentRequest{
			DocumentID:    doc.ID,
			BankAccountID: uuid.New(),
			AmountCents:   3000,
			Currency:      "USD",
			PostedAt:      time.Now(),
		})
		require.NoError(t, err)
		_, err = f.service.RecordPayment(ctx, doc.CompanyID, RecordPaymentRequest{
			DocumentID:    doc.ID,
			BankAccountID: uuid.New(),
			AmountCents:   2000,
			Currency:      "USD",
			PostedAt:      time.Now(),
		})
		require.NoError(t, err)
		require.Equal(t, domainaccounting.DocumentStatusPaid, doc.Status)

		require.NoError(t, f.service.DeleteTransaction(ctx, first.ID))

		assert.Equal(t, domainaccounting.DocumentStatusPartial, doc.Status)
		assert.Equal(t, int64(2000), doc.AmountPaid.Amount())
	})
}

func TestPostingServiceInitialTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("posts a balanced journal for an approved invoice", func(t *testing.T) {
		f := newPostingFixture(t)
		doc := f.approvedDocument(t, domainaccounting.DocumentKindInvoice, 5000)

		resp, err := f.service.PostInitialTransaction(ctx, doc)
		require.NoError(t, err)
		assert.Equal(t, ledger.TransactionTypeJournal.String(), resp.Type)
		assert.Equal(t, int64(5000), resp.AmountCents)

		txn, err := f.txnRepo.FindJournalByDocumentID(ctx, doc.ID)
		require.NoError(t, err)
		assert.True(t, txn.IsBalanced())
		assert.True(t, f.publisher.hasEventType(ledger.EventTypeTransactionPosted))
	})

	t.Run("update replaces the stale journal", func(t *testing.T) {
		f := newPostingFixture(t)
		doc := f.approvedDocument(t, domainaccounting.DocumentKindInvoice, 5000)

		first, err := f.service.PostInitialTransaction(ctx, doc)
		require.NoError(t, err)

		second, err := f.service.UpdateInitialTransaction(ctx, doc.ID)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, int64(5000), second.AmountCents)

		_, err = f.txnRepo.FindByID(ctx, first.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		txns, err := f.txnRepo.FindByDocumentID(ctx, doc.ID)
		require.NoError(t, err)
		assert.Len(t, txns, 1)
	})
}
