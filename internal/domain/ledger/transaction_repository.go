package ledger

import (
	"context"

	"github.com/google/uuid"
)

// TransactionRepository defines the persistence contract for ledger
// transactions. Save persists the transaction with its journal entries
// atomically.
type TransactionRepository interface {
	// FindByID finds a transaction with its journal entries by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindByDocumentID finds all transactions referencing a document
	FindByDocumentID(ctx context.Context, documentID uuid.UUID) ([]Transaction, error)

	// FindPaymentsByDocumentID finds the payment transactions referencing
	// a document. Payment status recomputation always re-sums from this
	// set.
	FindPaymentsByDocumentID(ctx context.Context, documentID uuid.UUID) ([]Transaction, error)

	// FindJournalByDocumentID finds the initial journal transaction for a
	// document, if posted
	FindJournalByDocumentID(ctx context.Context, documentID uuid.UUID) (*Transaction, error)

	// Save persists the transaction and its journal entries
	Save(ctx context.Context, txn *Transaction) error

	// Delete removes the transaction and its journal entries
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByDocumentID removes all transactions referencing a document
	DeleteByDocumentID(ctx context.Context, documentID uuid.UUID) error
}
