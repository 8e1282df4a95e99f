package accounting

import (
	"time"

	"github.com/books/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeDocument = "Document"

// Event type constants
const (
	EventTypeDocumentCreated              = "DocumentCreated"
	EventTypeDocumentApproved             = "DocumentApproved"
	EventTypeDocumentSent                 = "DocumentSent"
	EventTypeDocumentViewed               = "DocumentViewed"
	EventTypeDocumentAccepted             = "DocumentAccepted"
	EventTypeDocumentDeclined             = "DocumentDeclined"
	EventTypeDocumentConverted            = "DocumentConverted"
	EventTypeDocumentVoided               = "DocumentVoided"
	EventTypeBillGoodsReceived            = "BillGoodsReceived"
	EventTypeDocumentPaymentStatusChanged = "DocumentPaymentStatusChanged"
)

// DocumentLineInfo carries line item data on events. Inventory handlers
// only need product and quantity; monetary fields travel in cents.
type DocumentLineInfo struct {
	ItemID      uuid.UUID       `json:"item_id"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	TotalCents  int64           `json:"total_cents"`
}

func documentLineInfos(doc *Document) []DocumentLineInfo {
	items := make([]DocumentLineInfo, len(doc.LineItems))
	for i := range doc.LineItems {
		item := &doc.LineItems[i]
		items[i] = DocumentLineInfo{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			TotalCents:  item.Total.Amount(),
		}
	}
	return items
}

// DocumentCreatedEvent is raised when a new document is created
type DocumentCreatedEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID `json:"document_id"`
	DocumentKind   string    `json:"document_kind"`
	DocumentNumber string    `json:"document_number"`
	CounterpartyID uuid.UUID `json:"counterparty_id"`
	Currency       string    `json:"currency"`
}

// NewDocumentCreatedEvent creates a new DocumentCreatedEvent
func NewDocumentCreatedEvent(doc *Document) *DocumentCreatedEvent {
	return &DocumentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentCreated, AggregateTypeDocument, doc.ID, doc.CompanyID),
		DocumentID:      doc.ID,
		DocumentKind:    doc.Kind.String(),
		DocumentNumber:  doc.Number,
		CounterpartyID:  doc.CounterpartyID,
		Currency:        string(doc.Currency),
	}
}

// EventType returns the event type name
func (e *DocumentCreatedEvent) EventType() string {
	return EventTypeDocumentCreated
}

// DocumentApprovedEvent is raised when a document is posted.
// For bills and invoices this triggers the initial journal transaction;
// for invoices it also triggers the stock subtraction.
type DocumentApprovedEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID          `json:"document_id"`
	DocumentKind   string             `json:"document_kind"`
	DocumentNumber string             `json:"document_number"`
	Currency       string             `json:"currency"`
	TotalCents     int64              `json:"total_cents"`
	Items          []DocumentLineInfo `json:"items"`
}

// NewDocumentApprovedEvent creates a new DocumentApprovedEvent
func NewDocumentApprovedEvent(doc *Document) *DocumentApprovedEvent {
	return &DocumentApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentApproved, AggregateTypeDocument, doc.ID, doc.CompanyID),
		DocumentID:      doc.ID,
		DocumentKind:    doc.Kind.String(),
		DocumentNumber:  doc.Number,
		Currency:        string(doc.Currency),
		TotalCents:      doc.Total.Amount(),
		Items:           documentLineInfos(doc),
	}
}

// EventType returns the event type name
func (e *DocumentApprovedEvent) EventType() string {
	return EventTypeDocumentApproved
}

// DocumentSentEvent is raised when a document is sent to the counterparty
type DocumentSentEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID `json:"document_id"`
	DocumentNumber string    `json:"document_number"`
}

// NewDocumentSentEvent creates a new DocumentSentEvent
func NewDocumentSentEvent(doc *Document) *DocumentSentEvent {
	return &DocumentSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentSent, AggregateTypeDocument, doc.ID, doc.CompanyID),
		DocumentID:      doc.ID,
		DocumentNumber:  doc.Number,
	}
}

// EventType returns the event type name
func (e *DocumentSentEvent) EventType() string {
	return EventTypeDocumentSent
}

// DocumentViewedEvent is raised the first time the counterparty opens
// the document
type DocumentViewedEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID `json:"document_id"`
	DocumentNumber string    `json:"document_number"`
}

// NewDocumentViewedEvent creates a new DocumentViewedEvent
func NewDocumentViewedEvent(doc *Document) *DocumentViewedEvent {
	return &DocumentViewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentViewed, AggregateTypeDocument, doc.ID, doc.CompanyID),
		DocumentID:      doc.ID,
		DocumentNumber:  doc.Number,
	}
}

// EventType returns the event type name
func (e *DocumentViewedEvent) EventType() string {
	return EventTypeDocumentViewed
}

// DocumentAcceptedEvent is raised when the counterparty accepts an
// order or estimate
type DocumentAcceptedEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID `json:"document_id"`
	DocumentKind   string    `json:"document_kind"`
	DocumentNumber string    `json:"document_number"`
}

// NewDocumentAcceptedEvent creates a new DocumentAcceptedEvent
func NewDocumentAcceptedEvent(doc *Document) *DocumentAcceptedEvent {
	return &DocumentAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentAccepted, AggregateTypeDocument, doc.ID, doc.CompanyID),
		DocumentID:      doc.ID,
		DocumentKind:    doc.Kind.String(),
		DocumentNumber:  doc.Number,
	}
}

// EventType returns the event type name
func (e *DocumentAcceptedEvent) EventType() string {
	return EventTypeDocumentAccepted
}

// DocumentDeclinedEvent is raised when the counterparty declines an
// order or estimate
type DocumentDeclinedEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID `json:"document_id"`
	DocumentKind   string    `json:"document_kind"`
	DocumentNumber string    `json:"document_number"`
}

// NewDocumentDeclinedEvent creates a new DocumentDeclinedEvent
func NewDocumentDeclinedEvent(doc *Document) *DocumentDeclinedEvent {
	return &DocumentDeclinedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentDeclined, AggregateTypeDocument, doc.ID, doc.CompanyID),
		DocumentID:      doc.ID,
		DocumentKind:    doc.Kind.String(),
		DocumentNumber:  doc.Number,
	}
}

// EventType returns the event type name
func (e *DocumentDeclinedEvent) EventType() string {
	return EventTypeDocumentDeclined
}

// DocumentConvertedEvent is raised when an order becomes a bill or an
// estimate becomes an invoice
type DocumentConvertedEvent struct {
	shared.BaseDomainEvent
	SourceDocumentID uuid.UUID `json:"source_document_id"`
	SourceKind       string    `json:"source_kind"`
	SourceNumber     string    `json:"source_number"`
	TargetDocumentID uuid.UUID `json:"target_document_id"`
	TargetKind       string    `json:"target_kind"`
	TargetNumber     string    `json:"target_number"`
}

// NewDocumentConvertedEvent creates a new DocumentConvertedEvent
func NewDocumentConvertedEvent(source, target *Document) *DocumentConvertedEvent {
	return &DocumentConvertedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeDocumentConverted, AggregateTypeDocument, source.ID, source.CompanyID),
		SourceDocumentID: source.ID,
		SourceKind:       source.Kind.String(),
		SourceNumber:     source.Number,
		TargetDocumentID: target.ID,
		TargetKind:       target.Kind.String(),
		TargetNumber:     target.Number,
	}
}

// EventType returns the event type name
func (e *DocumentConvertedEvent) EventType() string {
	return EventTypeDocumentConverted
}

// DocumentVoidedEvent is raised when a bill or invoice is voided
type DocumentVoidedEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID `json:"document_id"`
	DocumentKind   string    `json:"document_kind"`
	DocumentNumber string    `json:"document_number"`
}

// NewDocumentVoidedEvent creates a new DocumentVoidedEvent
func NewDocumentVoidedEvent(doc *Document) *DocumentVoidedEvent {
	return &DocumentVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentVoided, AggregateTypeDocument, doc.ID, doc.CompanyID),
		DocumentID:      doc.ID,
		DocumentKind:    doc.Kind.String(),
		DocumentNumber:  doc.Number,
	}
}

// EventType returns the event type name
func (e *DocumentVoidedEvent) EventType() string {
	return EventTypeDocumentVoided
}

// BillGoodsReceivedEvent is raised when goods on a bill arrive.
// This event triggers stock additions in the inventory context.
type BillGoodsReceivedEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID          `json:"document_id"`
	DocumentNumber string             `json:"document_number"`
	Items          []DocumentLineInfo `json:"items"`
}

// NewBillGoodsReceivedEvent creates a new BillGoodsReceivedEvent
func NewBillGoodsReceivedEvent(doc *Document) *BillGoodsReceivedEvent {
	return &BillGoodsReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBillGoodsReceived, AggregateTypeDocument, doc.ID, doc.CompanyID),
		DocumentID:      doc.ID,
		DocumentNumber:  doc.Number,
		Items:           documentLineInfos(doc),
	}
}

// EventType returns the event type name
func (e *BillGoodsReceivedEvent) EventType() string {
	return EventTypeBillGoodsReceived
}

// DocumentPaymentStatusChangedEvent is raised whenever the derived
// payment status moves
type DocumentPaymentStatusChangedEvent struct {
	shared.BaseDomainEvent
	DocumentID      uuid.UUID  `json:"document_id"`
	DocumentNumber  string     `json:"document_number"`
	PreviousStatus  string     `json:"previous_status"`
	NewStatus       string     `json:"new_status"`
	AmountPaidCents int64      `json:"amount_paid_cents"`
	TotalCents      int64      `json:"total_cents"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
}

// NewDocumentPaymentStatusChangedEvent creates a new DocumentPaymentStatusChangedEvent
func NewDocumentPaymentStatusChangedEvent(doc *Document, previous DocumentStatus) *DocumentPaymentStatusChangedEvent {
	return &DocumentPaymentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDocumentPaymentStatusChanged, AggregateTypeDocument, doc.ID, doc.CompanyID),
		DocumentID:      doc.ID,
		DocumentNumber:  doc.Number,
		PreviousStatus:  previous.String(),
		NewStatus:       doc.Status.String(),
		AmountPaidCents: doc.AmountPaid.Amount(),
		TotalCents:      doc.Total.Amount(),
		PaidAt:          doc.PaidAt,
	}
}

// EventType returns the event type name
func (e *DocumentPaymentStatusChangedEvent) EventType() string {
	return EventTypeDocumentPaymentStatusChanged
}
