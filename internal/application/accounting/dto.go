package accounting

import (
	"time"

	"github.com/books/backend/internal/domain/accounting"
	"github.com/books/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateDocumentRequest is the payload for creating a document
type CreateDocumentRequest struct {
	Kind           string                  `json:"kind" binding:"required,oneof=ORDER BILL INVOICE ESTIMATE"`
	CounterpartyID uuid.UUID               `json:"counterparty_id" binding:"required"`
	Currency       string                  `json:"currency" binding:"required,currencycode"`
	IssueDate      time.Time               `json:"issue_date" binding:"required"`
	DueDate        *time.Time              `json:"due_date,omitempty"`
	ExpirationDate *time.Time              `json:"expiration_date,omitempty"`
	DiscountMethod string                  `json:"discount_method,omitempty" binding:"omitempty,oneof=PER_LINE_ITEM PER_DOCUMENT"`
	DiscountRate   *DiscountRateRequest    `json:"discount_rate,omitempty"`
	Items          []CreateLineItemRequest `json:"items" binding:"omitempty,dive"`
}

// DiscountRateRequest describes a document-level discount rate
type DiscountRateRequest struct {
	Computation string          `json:"computation" binding:"required,oneof=PERCENTAGE FIXED"`
	Percent     decimal.Decimal `json:"percent,omitempty"`
	AmountCents int64           `json:"amount_cents,omitempty"`
}

// CreateLineItemRequest is the payload for adding a line item
type CreateLineItemRequest struct {
	Description      string          `json:"description" binding:"required"`
	Quantity         decimal.Decimal `json:"quantity" binding:"required"`
	UnitPriceCents   int64           `json:"unit_price_cents" binding:"min=0"`
	PostingAccountID uuid.UUID       `json:"posting_account_id" binding:"required"`
	ProductID        *uuid.UUID      `json:"product_id,omitempty"`
	AdjustmentIDs    []uuid.UUID     `json:"adjustment_ids,omitempty"`
}

// UpdateLineItemRequest is the payload for changing a line item
type UpdateLineItemRequest struct {
	Quantity       *decimal.Decimal `json:"quantity,omitempty"`
	UnitPriceCents *int64           `json:"unit_price_cents,omitempty"`
	AdjustmentIDs  []uuid.UUID      `json:"adjustment_ids,omitempty"`
}

// CreateAdjustmentRequest is the payload for creating an adjustment rule
type CreateAdjustmentRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category" binding:"required,oneof=TAX DISCOUNT"`
	Type        string          `json:"type" binding:"required,oneof=SALES PURCHASE"`
	Computation string          `json:"computation" binding:"required,oneof=PERCENTAGE FIXED"`
	Percent     decimal.Decimal `json:"percent,omitempty"`
	AmountCents int64           `json:"amount_cents,omitempty"`
	Recoverable bool            `json:"recoverable"`
	Scope       string          `json:"scope" binding:"required,oneof=PRODUCT SERVICE GLOBAL LOCAL"`
	AccountID   *uuid.UUID      `json:"account_id,omitempty"`
}

// RecordPaymentRequest is the payload for recording a payment against a
// bill or invoice. The amount arrives in the bank account currency and
// is converted to the document currency before posting.
type RecordPaymentRequest struct {
	DocumentID    uuid.UUID `json:"document_id" binding:"required"`
	BankAccountID uuid.UUID `json:"bank_account_id" binding:"required"`
	AmountCents   int64     `json:"amount_cents" binding:"required,gt=0"`
	Currency      string    `json:"currency" binding:"required,currencycode"`
	PostedAt      time.Time `json:"posted_at" binding:"required"`
	Description   string    `json:"description,omitempty"`
}

// LineItemResponse is the API view of a line item
type LineItemResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Description        string          `json:"description"`
	Position           int             `json:"position"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitPriceCents     int64           `json:"unit_price_cents"`
	SubtotalCents      int64           `json:"subtotal_cents"`
	TaxTotalCents      int64           `json:"tax_total_cents"`
	DiscountTotalCents int64           `json:"discount_total_cents"`
	TotalCents         int64           `json:"total_cents"`
	ProductID          *uuid.UUID      `json:"product_id,omitempty"`
}

// DocumentResponse is the API view of a document
type DocumentResponse struct {
	ID                 uuid.UUID          `json:"id"`
	Kind               string             `json:"kind"`
	Number             string             `json:"number"`
	CounterpartyID     uuid.UUID          `json:"counterparty_id"`
	Currency           string             `json:"currency"`
	Status             string             `json:"status"`
	DiscountMethod     string             `json:"discount_method"`
	SubtotalCents      int64              `json:"subtotal_cents"`
	TaxTotalCents      int64              `json:"tax_total_cents"`
	DiscountTotalCents int64              `json:"discount_total_cents"`
	TotalCents         int64              `json:"total_cents"`
	AmountPaidCents    int64              `json:"amount_paid_cents"`
	IssueDate          time.Time          `json:"issue_date"`
	DueDate            *time.Time         `json:"due_date,omitempty"`
	ExpirationDate     *time.Time         `json:"expiration_date,omitempty"`
	ApprovedAt         *time.Time         `json:"approved_at,omitempty"`
	SentAt             *time.Time         `json:"sent_at,omitempty"`
	PaidAt             *time.Time         `json:"paid_at,omitempty"`
	GoodsReceivedAt    *time.Time         `json:"goods_received_at,omitempty"`
	ConvertedFromID    *uuid.UUID         `json:"converted_from_id,omitempty"`
	ConvertedToID      *uuid.UUID         `json:"converted_to_id,omitempty"`
	Items              []LineItemResponse `json:"items"`
}

// AdjustmentResponse is the API view of an adjustment rule
type AdjustmentResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Type        string     `json:"type"`
	Computation string     `json:"computation"`
	Rate        string     `json:"rate"`
	Recoverable bool       `json:"recoverable"`
	Scope       string     `json:"scope"`
	Status      string     `json:"status"`
	AccountID   *uuid.UUID `json:"account_id,omitempty"`
}

// TransactionResponse is the API view of a ledger transaction
type TransactionResponse struct {
	ID          uuid.UUID              `json:"id"`
	Type        string                 `json:"type"`
	IsPayment   bool                   `json:"is_payment"`
	AmountCents int64                  `json:"amount_cents"`
	Currency    string                 `json:"currency"`
	PostedAt    time.Time              `json:"posted_at"`
	DocumentID  *uuid.UUID             `json:"document_id,omitempty"`
	Entries     []JournalEntryResponse `json:"entries,omitempty"`
}

// JournalEntryResponse is the API view of a journal leg
type JournalEntryResponse struct {
	AccountID   uuid.UUID `json:"account_id"`
	Type        string    `json:"type"`
	AmountCents int64     `json:"amount_cents"`
	Description string    `json:"description"`
}

// DiscountAllocationResponse is one slice of an allocated document
// discount
type DiscountAllocationResponse struct {
	LineItemID  uuid.UUID `json:"line_item_id"`
	AmountCents int64     `json:"amount_cents"`
}

// ToLineItemResponse maps a domain line item to its API view
func ToLineItemResponse(item *accounting.LineItem) LineItemResponse {
	return LineItemResponse{
		ID:                 item.ID,
		Description:        item.Description,
		Position:           item.Position,
		Quantity:           item.Quantity,
		UnitPriceCents:     item.UnitPrice.Amount(),
		SubtotalCents:      item.Subtotal.Amount(),
		TaxTotalCents:      item.TaxTotal.Amount(),
		DiscountTotalCents: item.DiscountTotal.Amount(),
		TotalCents:         item.Total.Amount(),
		ProductID:          item.ProductID,
	}
}

// ToDocumentResponse maps a domain document to its API view
func ToDocumentResponse(doc *accounting.Document) DocumentResponse {
	items := make([]LineItemResponse, len(doc.LineItems))
	for i := range doc.LineItems {
		items[i] = ToLineItemResponse(&doc.LineItems[i])
	}

	return DocumentResponse{
		ID:                 doc.ID,
		Kind:               doc.Kind.String(),
		Number:             doc.Number,
		CounterpartyID:     doc.CounterpartyID,
		Currency:           string(doc.Currency),
		Status:             doc.Status.String(),
		DiscountMethod:     doc.DiscountMethod.String(),
		SubtotalCents:      doc.Subtotal.Amount(),
		TaxTotalCents:      doc.TaxTotal.Amount(),
		DiscountTotalCents: doc.DiscountTotal.Amount(),
		TotalCents:         doc.Total.Amount(),
		AmountPaidCents:    doc.AmountPaid.Amount(),
		IssueDate:          doc.IssueDate,
		DueDate:            doc.DueDate,
		ExpirationDate:     doc.ExpirationDate,
		ApprovedAt:         doc.ApprovedAt,
		SentAt:             doc.SentAt,
		PaidAt:             doc.PaidAt,
		GoodsReceivedAt:    doc.GoodsReceivedAt,
		ConvertedFromID:    doc.ConvertedFromID,
		ConvertedToID:      doc.ConvertedToID,
		Items:              items,
	}
}

// ToAdjustmentResponse maps a domain adjustment to its API view
func ToAdjustmentResponse(adj *accounting.Adjustment) AdjustmentResponse {
	return AdjustmentResponse{
		ID:          adj.ID,
		Name:        adj.Name,
		Category:    adj.Category.String(),
		Type:        adj.Type.String(),
		Computation: adj.Rate.Computation().String(),
		Rate:        adj.Rate.String(),
		Recoverable: adj.Recoverable,
		Scope:       adj.Scope.String(),
		Status:      adj.Status.String(),
		AccountID:   adj.AccountID,
	}
}

// ToTransactionResponse maps a domain transaction to its API view
func ToTransactionResponse(txn *ledger.Transaction) TransactionResponse {
	entries := make([]JournalEntryResponse, len(txn.Entries))
	for i, e := range txn.Entries {
		entries[i] = JournalEntryResponse{
			AccountID:   e.AccountID,
			Type:        e.Type.String(),
			AmountCents: e.Amount.Amount(),
			Description: e.Description,
		}
	}

	return TransactionResponse{
		ID:          txn.ID,
		Type:        txn.Type.String(),
		IsPayment:   txn.IsPayment,
		AmountCents: txn.Amount.Amount(),
		Currency:    string(txn.Amount.Currency()),
		PostedAt:    txn.PostedAt,
		DocumentID:  txn.DocumentID,
		Entries:     entries,
	}
}
