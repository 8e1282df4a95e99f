package ledger

import (
	"time"

	"github.com/books/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeTransaction = "Transaction"

// Event type constants
const (
	EventTypeTransactionPosted  = "TransactionPosted"
	EventTypeTransactionDeleted = "TransactionDeleted"
)

// TransactionPostedEvent is raised when a transaction is recorded
type TransactionPostedEvent struct {
	shared.BaseDomainEvent
	TransactionID   uuid.UUID  `json:"transaction_id"`
	TransactionType string     `json:"transaction_type"`
	IsPayment       bool       `json:"is_payment"`
	AmountCents     int64      `json:"amount_cents"`
	Currency        string     `json:"currency"`
	DocumentID      *uuid.UUID `json:"document_id,omitempty"`
	PostedAt        time.Time  `json:"posted_at"`
}

// NewTransactionPostedEvent creates a new TransactionPostedEvent
func NewTransactionPostedEvent(txn *Transaction) *TransactionPostedEvent {
	return &TransactionPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionPosted, AggregateTypeTransaction, txn.ID, txn.CompanyID),
		TransactionID:   txn.ID,
		TransactionType: txn.Type.String(),
		IsPayment:       txn.IsPayment,
		AmountCents:     txn.Amount.Amount(),
		Currency:        string(txn.Amount.Currency()),
		DocumentID:      txn.DocumentID,
		PostedAt:        txn.PostedAt,
	}
}

// EventType returns the event type name
func (e *TransactionPostedEvent) EventType() string {
	return EventTypeTransactionPosted
}

// TransactionDeletedEvent is raised when a transaction is removed so
// dependent documents can re-derive their payment status
type TransactionDeletedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID  `json:"transaction_id"`
	DocumentID    *uuid.UUID `json:"document_id,omitempty"`
}

// NewTransactionDeletedEvent creates a new TransactionDeletedEvent
func NewTransactionDeletedEvent(txn *Transaction) *TransactionDeletedEvent {
	return &TransactionDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionDeleted, AggregateTypeTransaction, txn.ID, txn.CompanyID),
		TransactionID:   txn.ID,
		DocumentID:      txn.DocumentID,
	}
}

// EventType returns the event type name
func (e *TransactionDeletedEvent) EventType() string {
	return EventTypeTransactionDeleted
}
