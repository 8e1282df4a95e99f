package ledger

import (
	"time"

	"github.com/books/backend/internal/domain/shared"
	"github.com/books/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// TransactionType represents the kind of a ledger transaction
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
	TransactionTypeJournal    TransactionType = "JOURNAL"
)

// IsValid checks if the type is a valid TransactionType
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeTransfer, TransactionTypeJournal:
		return true
	}
	return false
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// JournalEntryType represents the side of a double-entry leg
type JournalEntryType string

const (
	JournalEntryTypeDebit  JournalEntryType = "DEBIT"
	JournalEntryTypeCredit JournalEntryType = "CREDIT"
)

// IsValid checks if the type is a valid JournalEntryType
func (t JournalEntryType) IsValid() bool {
	return t == JournalEntryTypeDebit || t == JournalEntryTypeCredit
}

// String returns the string representation of JournalEntryType
func (t JournalEntryType) String() string {
	return string(t)
}

// JournalEntry is one debit or credit leg of a double-entry posting.
// Amounts are always in the ledger currency.
type JournalEntry struct {
	ID            uuid.UUID
	TransactionID uuid.UUID
	AccountID     uuid.UUID
	Type          JournalEntryType
	Amount        valueobject.Money
	Description   string
	CreatedAt     time.Time
}

// NewJournalEntry creates a journal entry leg
func NewJournalEntry(transactionID, accountID uuid.UUID, entryType JournalEntryType, amount valueobject.Money, description string) (*JournalEntry, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Journal entry account cannot be empty")
	}
	if !entryType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Journal entry type is not valid")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Journal entry amount cannot be negative")
	}

	return &JournalEntry{
		ID:            uuid.New(),
		TransactionID: transactionID,
		AccountID:     accountID,
		Type:          entryType,
		Amount:        amount,
		Description:   description,
		CreatedAt:     time.Now(),
	}, nil
}

// Transaction is the aggregate root for ledger postings. A payment
// transaction records money moving through a bank account against a
// document; a journal transaction carries the double-entry legs for a
// posted document. Journal legs must balance in the ledger currency.
type Transaction struct {
	shared.CompanyAggregateRoot
	Type        TransactionType
	IsPayment   bool
	Amount      valueobject.Money
	Description string
	PostedAt    time.Time
	// BankAccountID is set for deposits and withdrawals.
	BankAccountID *uuid.UUID
	// DocumentID is a weak reference to the document this transaction
	// settles or posts; never ownership.
	DocumentID *uuid.UUID
	Entries    []JournalEntry
}

// NewTransaction creates a new ledger transaction
func NewTransaction(companyID uuid.UUID, txnType TransactionType, amount valueobject.Money, postedAt time.Time, description string) (*Transaction, error) {
	if !txnType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Transaction type is not valid")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Transaction amount cannot be negative")
	}

	return &Transaction{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Type:                 txnType,
		Amount:               amount,
		Description:          description,
		PostedAt:             postedAt,
		Entries:              make([]JournalEntry, 0),
	}, nil
}

// NewPaymentTransaction creates a deposit or withdrawal payment against
// a document through a bank account
func NewPaymentTransaction(companyID uuid.UUID, txnType TransactionType, amount valueobject.Money, postedAt time.Time, bankAccountID, documentID uuid.UUID, description string) (*Transaction, error) {
	if txnType != TransactionTypeDeposit && txnType != TransactionTypeWithdrawal {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment transactions must be deposits or withdrawals")
	}
	if bankAccountID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment bank account cannot be empty")
	}
	if documentID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Payment document cannot be empty")
	}

	txn, err := NewTransaction(companyID, txnType, amount, postedAt, description)
	if err != nil {
		return nil, err
	}
	txn.IsPayment = true
	txn.BankAccountID = &bankAccountID
	txn.DocumentID = &documentID
	return txn, nil
}

// AddEntry appends a journal leg to the transaction
func (t *Transaction) AddEntry(accountID uuid.UUID, entryType JournalEntryType, amount valueobject.Money, description string) error {
	if amount.Currency() != t.Amount.Currency() {
		return shared.NewDomainError("VALIDATION_ERROR", "Journal entry currency must match transaction currency")
	}

	entry, err := NewJournalEntry(t.ID, accountID, entryType, amount, description)
	if err != nil {
		return err
	}
	t.Entries = append(t.Entries, *entry)
	t.Touch()
	return nil
}

// DebitTotal sums the debit legs in cents
func (t *Transaction) DebitTotal() int64 {
	var total int64
	for i := range t.Entries {
		if t.Entries[i].Type == JournalEntryTypeDebit {
			total += t.Entries[i].Amount.Amount()
		}
	}
	return total
}

// CreditTotal sums the credit legs in cents
func (t *Transaction) CreditTotal() int64 {
	var total int64
	for i := range t.Entries {
		if t.Entries[i].Type == JournalEntryTypeCredit {
			total += t.Entries[i].Amount.Amount()
		}
	}
	return total
}

// IsBalanced reports whether debit and credit legs sum equal
func (t *Transaction) IsBalanced() bool {
	return t.DebitTotal() == t.CreditTotal()
}

// Validate checks the ledger invariants before the transaction may be
// persisted. An unbalanced journal is fatal; the whole posting rolls
// back.
func (t *Transaction) Validate() error {
	if t.Type == TransactionTypeJournal && len(t.Entries) == 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Journal transaction must have entries")
	}
	if !t.IsBalanced() {
		return shared.ErrUnbalancedJournal
	}
	return nil
}

// SignedPaymentAmount returns the payment amount with its direction:
// positive for deposits, negative for withdrawals, zero for
// non-payment transactions.
func (t *Transaction) SignedPaymentAmount() int64 {
	if !t.IsPayment {
		return 0
	}
	switch t.Type {
	case TransactionTypeDeposit:
		return t.Amount.Amount()
	case TransactionTypeWithdrawal:
		return -t.Amount.Amount()
	}
	return 0
}
