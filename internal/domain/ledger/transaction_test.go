package ledger

import (
	"testing"
	"time"

	"github.com/books/backend/internal/domain/shared"
	"github.com/books/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJournalTransaction(t *testing.T) *Transaction {
	t.Helper()
	txn, err := NewTransaction(uuid.New(), TransactionTypeJournal,
		valueobject.MustNewMoney(1000, valueobject.USD), time.Now(), "posting")
	require.NoError(t, err)
	return txn
}

func TestNewTransaction(t *testing.T) {
	t.Run("rejects invalid type", func(t *testing.T) {
		_, err := NewTransaction(uuid.New(), TransactionType("REFUND"),
			valueobject.MustNewMoney(100, valueobject.USD), time.Now(), "")
		require.Error(t, err)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		_, err := NewTransaction(uuid.New(), TransactionTypeDeposit,
			valueobject.MustNewMoney(-100, valueobject.USD), time.Now(), "")
		require.Error(t, err)
	})
}

func TestNewPaymentTransaction(t *testing.T) {
	t.Run("creates a deposit payment", func(t *testing.T) {
		txn, err := NewPaymentTransaction(uuid.New(), TransactionTypeDeposit,
			valueobject.MustNewMoney(5000, valueobject.USD), time.Now(), uuid.New(), uuid.New(), "invoice payment")
		require.NoError(t, err)
		assert.True(t, txn.IsPayment)
		assert.NotNil(t, txn.BankAccountID)
		assert.NotNil(t, txn.DocumentID)
	})

	t.Run("rejects journal type", func(t *testing.T) {
		_, err := NewPaymentTransaction(uuid.New(), TransactionTypeJournal,
			valueobject.MustNewMoney(5000, valueobject.USD), time.Now(), uuid.New(), uuid.New(), "")
		require.Error(t, err)
	})
}

func TestTransaction_Balance(t *testing.T) {
	t.Run("balanced journal validates", func(t *testing.T) {
		txn := newJournalTransaction(t)
		require.NoError(t, txn.AddEntry(uuid.New(), JournalEntryTypeDebit,
			valueobject.MustNewMoney(1000, valueobject.USD), "expense"))
		require.NoError(t, txn.AddEntry(uuid.New(), JournalEntryTypeCredit,
			valueobject.MustNewMoney(1000, valueobject.USD), "payable"))

		assert.True(t, txn.IsBalanced())
		assert.NoError(t, txn.Validate())
	})

	t.Run("unbalanced journal fails with the ledger sentinel", func(t *testing.T) {
		txn := newJournalTransaction(t)
		require.NoError(t, txn.AddEntry(uuid.New(), JournalEntryTypeDebit,
			valueobject.MustNewMoney(1000, valueobject.USD), "expense"))
		require.NoError(t, txn.AddEntry(uuid.New(), JournalEntryTypeCredit,
			valueobject.MustNewMoney(999, valueobject.USD), "payable"))

		assert.ErrorIs(t, txn.Validate(), shared.ErrUnbalancedJournal)
	})

	t.Run("journal without entries is invalid", func(t *testing.T) {
		txn := newJournalTransaction(t)
		assert.Error(t, txn.Validate())
	})

	t.Run("entry currency must match the transaction", func(t *testing.T) {
		txn := newJournalTransaction(t)
		err := txn.AddEntry(uuid.New(), JournalEntryTypeDebit,
			valueobject.MustNewMoney(1000, valueobject.EUR), "expense")
		require.Error(t, err)
	})
}

func TestTransaction_SignedPaymentAmount(t *testing.T) {
	deposit, err := NewPaymentTransaction(uuid.New(), TransactionTypeDeposit,
		valueobject.MustNewMoney(5000, valueobject.USD), time.Now(), uuid.New(), uuid.New(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), deposit.SignedPaymentAmount())

	withdrawal, err := NewPaymentTransaction(uuid.New(), TransactionTypeWithdrawal,
		valueobject.MustNewMoney(3000, valueobject.USD), time.Now(), uuid.New(), uuid.New(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(-3000), withdrawal.SignedPaymentAmount())

	journal := newJournalTransaction(t)
	assert.Equal(t, int64(0), journal.SignedPaymentAmount())
}
