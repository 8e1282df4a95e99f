package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/books/backend/internal/domain/accounting"
	"github.com/books/backend/internal/domain/shared"
	"github.com/books/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPostingAccounts() PostingAccounts {
	return PostingAccounts{
		Payable:          uuid.New(),
		Receivable:       uuid.New(),
		SalesDiscount:    uuid.New(),
		PurchaseDiscount: uuid.New(),
	}
}

func newPostedDocument(t *testing.T, kind accounting.DocumentKind, currency valueobject.Currency, build func(doc *accounting.Document)) *accounting.Document {
	t.Helper()
	doc, err := accounting.NewDocument(uuid.New(), kind, kind.NumberPrefix()+"-000001", uuid.New(), currency, time.Now())
	require.NoError(t, err)
	build(doc)
	require.NoError(t, doc.Approve())
	return doc
}

func approvedAdjustment(t *testing.T, name string, category accounting.AdjustmentCategory, adjType accounting.AdjustmentType, rate valueobject.Rate, accountID *uuid.UUID) accounting.Adjustment {
	t.Helper()
	adj, err := accounting.NewAdjustment(uuid.New(), name, category, adjType, rate, accounting.AdjustmentScopeGlobal)
	require.NoError(t, err)
	require.NoError(t, adj.Approve())
	if accountID != nil {
		adj.SetAccount(*accountID)
	}
	return *adj
}

func identityBuilder() *JournalBuilder {
	return NewJournalBuilder(NewRateTableConverter(staticRates{}))
}

func entriesForAccount(txn *Transaction, accountID uuid.UUID) []JournalEntry {
	var out []JournalEntry
	for _, e := range txn.Entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out
}

func TestJournalBuilder_Invoice(t *testing.T) {
	taxAccount := uuid.New()
	tax := approvedAdjustment(t, "VAT", accounting.AdjustmentCategoryTax, accounting.AdjustmentTypeSales,
		valueobject.NewPercentageRate(10*valueobject.RateScale), &taxAccount)

	incomeAccount := uuid.New()
	doc := newPostedDocument(t, accounting.DocumentKindInvoice, valueobject.USD, func(doc *accounting.Document) {
		_, err := doc.AddLineItem("consulting", decimal.NewFromInt(3),
			valueobject.MustNewMoney(1000, valueobject.USD), incomeAccount, []accounting.Adjustment{tax})
		require.NoError(t, err)
	})
	accounts := testPostingAccounts()

	txn, err := identityBuilder().BuildInitialTransaction(context.Background(), doc, accounts, valueobject.USD)
	require.NoError(t, err)

	assert.True(t, txn.IsBalanced())
	assert.Equal(t, TransactionTypeJournal, txn.Type)
	require.NotNil(t, txn.DocumentID)
	assert.Equal(t, doc.ID, *txn.DocumentID)

	// A/R debit carries the document total.
	receivable := entriesForAccount(txn, accounts.Receivable)
	require.Len(t, receivable, 1)
	assert.Equal(t, JournalEntryTypeDebit, receivable[0].Type)
	assert.Equal(t, doc.Total.Amount(), receivable[0].Amount.Amount())
	assert.Equal(t, doc.Total.Amount(), txn.Amount.Amount())

	// Income credited with the line subtotal, tax credited separately.
	income := entriesForAccount(txn, incomeAccount)
	require.Len(t, income, 1)
	assert.Equal(t, JournalEntryTypeCredit, income[0].Type)
	assert.Equal(t, int64(3000), income[0].Amount.Amount())

	taxLegs := entriesForAccount(txn, taxAccount)
	require.Len(t, taxLegs, 1)
	assert.Equal(t, JournalEntryTypeCredit, taxLegs[0].Type)
	assert.Equal(t, int64(300), taxLegs[0].Amount.Amount())
}

func TestJournalBuilder_BillTaxFolding(t *testing.T) {
	t.Run("non-recoverable purchase tax folds into the expense leg", func(t *testing.T) {
		taxAccount := uuid.New()
		duty := approvedAdjustment(t, "import duty", accounting.AdjustmentCategoryTax, accounting.AdjustmentTypePurchase,
			valueobject.NewPercentageRate(5*valueobject.RateScale), &taxAccount)
		// Recoverable is false by default, so the configured account is
		// ignored and the amount folds.

		expenseAccount := uuid.New()
		doc := newPostedDocument(t, accounting.DocumentKindBill, valueobject.USD, func(doc *accounting.Document) {
			_, err := doc.AddLineItem("raw materials", decimal.NewFromInt(1),
				valueobject.MustNewMoney(10000, valueobject.USD), expenseAccount, []accounting.Adjustment{duty})
			require.NoError(t, err)
		})
		accounts := testPostingAccounts()

		txn, err := identityBuilder().BuildInitialTransaction(context.Background(), doc, accounts, valueobject.USD)
		require.NoError(t, err)
		require.True(t, txn.IsBalanced())

		expense := entriesForAccount(txn, expenseAccount)
		require.Len(t, expense, 1)
		assert.Equal(t, JournalEntryTypeDebit, expense[0].Type)
		assert.Equal(t, int64(10500), expense[0].Amount.Amount())
		assert.Empty(t, entriesForAccount(txn, taxAccount))

		payable := entriesForAccount(txn, accounts.Payable)
		require.Len(t, payable, 1)
		assert.Equal(t, JournalEntryTypeCredit, payable[0].Type)
		assert.Equal(t, int64(10500), payable[0].Amount.Amount())
	})

	t.Run("recoverable purchase tax posts to its own account", func(t *testing.T) {
		taxAccount := uuid.New()
		gst := approvedAdjustment(t, "GST", accounting.AdjustmentCategoryTax, accounting.AdjustmentTypePurchase,
			valueobject.NewPercentageRate(5*valueobject.RateScale), &taxAccount)
		gst.Recoverable = true

		expenseAccount := uuid.New()
		doc := newPostedDocument(t, accounting.DocumentKindBill, valueobject.USD, func(doc *accounting.Document) {
			_, err := doc.AddLineItem("raw materials", decimal.NewFromInt(1),
				valueobject.MustNewMoney(10000, valueobject.USD), expenseAccount, []accounting.Adjustment{gst})
			require.NoError(t, err)
		})

		txn, err := identityBuilder().BuildInitialTransaction(context.Background(), doc, testPostingAccounts(), valueobject.USD)
		require.NoError(t, err)
		require.True(t, txn.IsBalanced())

		expense := entriesForAccount(txn, expenseAccount)
		require.Len(t, expense, 1)
		assert.Equal(t, int64(10000), expense[0].Amount.Amount())

		taxLegs := entriesForAccount(txn, taxAccount)
		require.Len(t, taxLegs, 1)
		assert.Equal(t, JournalEntryTypeDebit, taxLegs[0].Type)
		assert.Equal(t, int64(500), taxLegs[0].Amount.Amount())
	})
}

func TestJournalBuilder_DocumentDiscount(t *testing.T) {
	// Two lines 700c and 300c with a fixed 99c document discount. The
	// discount slices (69c and 30c) each get their own contra leg.
	doc := newPostedDocument(t, accounting.DocumentKindBill, valueobject.USD, func(doc *accounting.Document) {
		_, err := doc.AddLineItem("alpha", decimal.NewFromInt(7),
			valueobject.MustNewMoney(100, valueobject.USD), uuid.New(), nil)
		require.NoError(t, err)
		_, err = doc.AddLineItem("beta", decimal.NewFromInt(3),
			valueobject.MustNewMoney(100, valueobject.USD), uuid.New(), nil)
		require.NoError(t, err)
		require.NoError(t, doc.SetDiscount(accounting.DiscountMethodPerDocument, valueobject.NewFixedRate(99)))
	})
	accounts := testPostingAccounts()

	txn, err := identityBuilder().BuildInitialTransaction(context.Background(), doc, accounts, valueobject.USD)
	require.NoError(t, err)
	require.True(t, txn.IsBalanced())

	discountLegs := entriesForAccount(txn, accounts.PurchaseDiscount)
	require.Len(t, discountLegs, 2)
	assert.Equal(t, JournalEntryTypeCredit, discountLegs[0].Type)
	assert.Equal(t, int64(69), discountLegs[0].Amount.Amount())
	assert.Equal(t, int64(30), discountLegs[1].Amount.Amount())

	payable := entriesForAccount(txn, accounts.Payable)
	require.Len(t, payable, 1)
	assert.Equal(t, int64(901), payable[0].Amount.Amount())
	assert.Equal(t, doc.Total.Amount(), payable[0].Amount.Amount())
}

func TestJournalBuilder_LineDiscount(t *testing.T) {
	discount := approvedAdjustment(t, "early settlement", accounting.AdjustmentCategoryDiscount, accounting.AdjustmentTypeSales,
		valueobject.NewPercentageRate(5*valueobject.RateScale), nil)

	doc := newPostedDocument(t, accounting.DocumentKindInvoice, valueobject.USD, func(doc *accounting.Document) {
		_, err := doc.AddLineItem("consulting", decimal.NewFromInt(1),
			valueobject.MustNewMoney(10000, valueobject.USD), uuid.New(), []accounting.Adjustment{discount})
		require.NoError(t, err)
	})
	accounts := testPostingAccounts()

	txn, err := identityBuilder().BuildInitialTransaction(context.Background(), doc, accounts, valueobject.USD)
	require.NoError(t, err)
	require.True(t, txn.IsBalanced())

	discountLegs := entriesForAccount(txn, accounts.SalesDiscount)
	require.Len(t, discountLegs, 1)
	assert.Equal(t, JournalEntryTypeDebit, discountLegs[0].Type)
	assert.Equal(t, int64(500), discountLegs[0].Amount.Amount())

	receivable := entriesForAccount(txn, accounts.Receivable)
	require.Len(t, receivable, 1)
	assert.Equal(t, int64(9500), receivable[0].Amount.Amount())
}

func TestJournalBuilder_CrossCurrency(t *testing.T) {
	builder := NewJournalBuilder(NewRateTableConverter(staticRates{
		"EUR/USD": decimal.RequireFromString("1.0855"),
	}))

	doc := newPostedDocument(t, accounting.DocumentKindInvoice, valueobject.EUR, func(doc *accounting.Document) {
		_, err := doc.AddLineItem("alpha", decimal.NewFromInt(1),
			valueobject.MustNewMoney(3333, valueobject.EUR), uuid.New(), nil)
		require.NoError(t, err)
		_, err = doc.AddLineItem("beta", decimal.NewFromInt(1),
			valueobject.MustNewMoney(6667, valueobject.EUR), uuid.New(), nil)
		require.NoError(t, err)
	})

	txn, err := builder.BuildInitialTransaction(context.Background(), doc, testPostingAccounts(), valueobject.USD)
	require.NoError(t, err)

	// Per-leg conversion rounds independently; the control leg is derived
	// from the converted counter legs so the journal still balances.
	assert.True(t, txn.IsBalanced())
	assert.Equal(t, valueobject.USD, txn.Amount.Currency())

	t.Run("missing rate aborts the posting", func(t *testing.T) {
		_, err := builder.BuildInitialTransaction(context.Background(), doc, testPostingAccounts(), valueobject.GBP)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrUnknownCurrency)
	})
}

func TestJournalBuilder_Guards(t *testing.T) {
	t.Run("draft documents cannot post", func(t *testing.T) {
		doc, err := accounting.NewDocument(uuid.New(), accounting.DocumentKindInvoice, "INV-000009", uuid.New(), valueobject.USD, time.Now())
		require.NoError(t, err)

		_, err = identityBuilder().BuildInitialTransaction(context.Background(), doc, testPostingAccounts(), valueobject.USD)
		require.Error(t, err)
	})

	t.Run("orders do not post journals", func(t *testing.T) {
		doc := newPostedDocument(t, accounting.DocumentKindOrder, valueobject.USD, func(doc *accounting.Document) {
			_, err := doc.AddLineItem("alpha", decimal.NewFromInt(1),
				valueobject.MustNewMoney(1000, valueobject.USD), uuid.New(), nil)
			require.NoError(t, err)
		})

		_, err := identityBuilder().BuildInitialTransaction(context.Background(), doc, testPostingAccounts(), valueobject.USD)
		require.Error(t, err)
	})
}
