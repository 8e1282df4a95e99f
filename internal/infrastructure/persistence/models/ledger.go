package models

import (
	"time"

	"github.com/books/backend/internal/domain/ledger"
	"github.com/books/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// TransactionModel is the persistence model for the Transaction
// aggregate root
type TransactionModel struct {
	CompanyAggregateModel
	Type          ledger.TransactionType `gorm:"type:varchar(20);not null;index"`
	IsPayment     bool                   `gorm:"not null;default:false;index"`
	AmountCents   int64                  `gorm:"not null"`
	Currency      string                 `gorm:"type:varchar(3);not null"`
	Description   string                 `gorm:"type:varchar(500)"`
	PostedAt      time.Time              `gorm:"not null;index"`
	BankAccountID *uuid.UUID             `gorm:"type:uuid;index"`
	DocumentID    *uuid.UUID             `gorm:"type:uuid;index"`
	Entries       []JournalEntryModel    `gorm:"foreignKey:TransactionID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	currency := valueobject.Currency(m.Currency)
	entries := make([]ledger.JournalEntry, len(m.Entries))
	for i := range m.Entries {
		entries[i] = *m.Entries[i].ToDomain()
	}

	return &ledger.Transaction{
		CompanyAggregateRoot: m.ToCompanyAggregateRoot(),
		Type:                 m.Type,
		IsPayment:            m.IsPayment,
		Amount:               valueobject.MustNewMoney(m.AmountCents, currency),
		Description:          m.Description,
		PostedAt:             m.PostedAt,
		BankAccountID:        m.BankAccountID,
		DocumentID:           m.DocumentID,
		Entries:              entries,
	}
}

// FromDomain populates the persistence model from a domain Transaction
func (m *TransactionModel) FromDomain(txn *ledger.Transaction) {
	m.FromDomainCompanyAggregateRoot(txn.CompanyAggregateRoot)
	m.Type = txn.Type
	m.IsPayment = txn.IsPayment
	m.AmountCents = txn.Amount.Amount()
	m.Currency = string(txn.Amount.Currency())
	m.Description = txn.Description
	m.PostedAt = txn.PostedAt
	m.BankAccountID = txn.BankAccountID
	m.DocumentID = txn.DocumentID

	m.Entries = make([]JournalEntryModel, len(txn.Entries))
	for i := range txn.Entries {
		m.Entries[i].FromDomain(&txn.Entries[i])
	}
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction
func TransactionModelFromDomain(txn *ledger.Transaction) *TransactionModel {
	m := &TransactionModel{}
	m.FromDomain(txn)
	return m
}

// JournalEntryModel is the persistence model for one double-entry leg
type JournalEntryModel struct {
	ID            uuid.UUID               `gorm:"type:uuid;primary_key"`
	TransactionID uuid.UUID               `gorm:"type:uuid;not null;index"`
	AccountID     uuid.UUID               `gorm:"type:uuid;not null;index"`
	Type          ledger.JournalEntryType `gorm:"type:varchar(10);not null"`
	AmountCents   int64                   `gorm:"not null"`
	Currency      string                  `gorm:"type:varchar(3);not null"`
	Description   string                  `gorm:"type:varchar(500)"`
	CreatedAt     time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (JournalEntryModel) TableName() string {
	return "journal_entries"
}

// ToDomain converts the persistence model to a domain JournalEntry
func (m *JournalEntryModel) ToDomain() *ledger.JournalEntry {
	return &ledger.JournalEntry{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		AccountID:     m.AccountID,
		Type:          m.Type,
		Amount:        valueobject.MustNewMoney(m.AmountCents, valueobject.Currency(m.Currency)),
		Description:   m.Description,
		CreatedAt:     m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain JournalEntry
func (m *JournalEntryModel) FromDomain(entry *ledger.JournalEntry) {
	m.ID = entry.ID
	m.TransactionID = entry.TransactionID
	m.AccountID = entry.AccountID
	m.Type = entry.Type
	m.AmountCents = entry.Amount.Amount()
	m.Currency = string(entry.Amount.Currency())
	m.Description = entry.Description
	m.CreatedAt = entry.CreatedAt
}
