package accounting

import (
	"fmt"
	"time"

	"github.com/books/backend/internal/domain/shared"
	"github.com/books/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentKind represents the kind of a financial document
type DocumentKind string

const (
	DocumentKindOrder    DocumentKind = "ORDER"
	DocumentKindBill     DocumentKind = "BILL"
	DocumentKindInvoice  DocumentKind = "INVOICE"
	DocumentKindEstimate DocumentKind = "ESTIMATE"
)

// IsValid checks if the kind is a valid DocumentKind
func (k DocumentKind) IsValid() bool {
	switch k {
	case DocumentKindOrder, DocumentKindBill, DocumentKindInvoice, DocumentKindEstimate:
		return true
	}
	return false
}

// String returns the string representation of DocumentKind
func (k DocumentKind) String() string {
	return string(k)
}

// IsSales returns true for documents on the sales side of the ledger
func (k DocumentKind) IsSales() bool {
	return k == DocumentKindInvoice || k == DocumentKindEstimate
}

// IsPurchase returns true for documents on the purchase side of the ledger
func (k DocumentKind) IsPurchase() bool {
	return k == DocumentKindBill || k == DocumentKindOrder
}

// HasPaymentAxis returns true for kinds that carry Unpaid/Partial/Paid
// statuses and post journal transactions on approval.
func (k DocumentKind) HasPaymentAxis() bool {
	return k == DocumentKindBill || k == DocumentKindInvoice
}

// ConversionTarget returns the kind a document converts into,
// or empty if the kind is not convertible.
func (k DocumentKind) ConversionTarget() DocumentKind {
	switch k {
	case DocumentKindOrder:
		return DocumentKindBill
	case DocumentKindEstimate:
		return DocumentKindInvoice
	}
	return ""
}

// NumberPrefix returns the document number prefix for the kind
func (k DocumentKind) NumberPrefix() string {
	switch k {
	case DocumentKindOrder:
		return "PO"
	case DocumentKindBill:
		return "BILL"
	case DocumentKindInvoice:
		return "INV"
	case DocumentKindEstimate:
		return "EST"
	}
	return "DOC"
}

// DocumentStatus represents the lifecycle status of a document.
// Orders and estimates move through the approval track; bills and
// invoices move through the payment track after approval.
type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "DRAFT"
	DocumentStatusUnsent    DocumentStatus = "UNSENT"
	DocumentStatusSent      DocumentStatus = "SENT"
	DocumentStatusViewed    DocumentStatus = "VIEWED"
	DocumentStatusAccepted  DocumentStatus = "ACCEPTED"
	DocumentStatusDeclined  DocumentStatus = "DECLINED"
	DocumentStatusConverted DocumentStatus = "CONVERTED"
	DocumentStatusExpired   DocumentStatus = "EXPIRED"
	DocumentStatusUnpaid    DocumentStatus = "UNPAID"
	DocumentStatusPartial   DocumentStatus = "PARTIAL"
	DocumentStatusPaid      DocumentStatus = "PAID"
	DocumentStatusOverpaid  DocumentStatus = "OVERPAID"
	DocumentStatusOverdue   DocumentStatus = "OVERDUE"
	DocumentStatusVoid      DocumentStatus = "VOID"
)

// IsValid checks if the status is a valid DocumentStatus
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusDraft, DocumentStatusUnsent, DocumentStatusSent,
		DocumentStatusViewed, DocumentStatusAccepted, DocumentStatusDeclined,
		DocumentStatusConverted, DocumentStatusExpired, DocumentStatusUnpaid,
		DocumentStatusPartial, DocumentStatusPaid, DocumentStatusOverpaid,
		DocumentStatusOverdue, DocumentStatusVoid:
		return true
	}
	return false
}

// String returns the string representation of DocumentStatus
func (s DocumentStatus) String() string {
	return string(s)
}

// IsTerminal returns true for statuses that admit no further transitions
func (s DocumentStatus) IsTerminal() bool {
	return s == DocumentStatusConverted || s == DocumentStatusDeclined || s == DocumentStatusVoid
}

// DiscountMethod represents the granularity a document discount applies at
type DiscountMethod string

const (
	DiscountMethodPerLineItem DiscountMethod = "PER_LINE_ITEM"
	DiscountMethodPerDocument DiscountMethod = "PER_DOCUMENT"
)

// IsValid checks if the method is a valid DiscountMethod
func (m DiscountMethod) IsValid() bool {
	return m == DiscountMethodPerLineItem || m == DiscountMethodPerDocument
}

// String returns the string representation of DiscountMethod
func (m DiscountMethod) String() string {
	return string(m)
}

// Document is the aggregate root for orders, bills, invoices and
// estimates. It owns its line items and cached totals, and enforces the
// lifecycle state machine. Cached totals are recomputed from line items
// on every structural mutation; `Total = Subtotal + TaxTotal -
// DiscountTotal` holds after every recomputation.
type Document struct {
	shared.CompanyAggregateRoot
	Kind           DocumentKind
	Number         string
	CounterpartyID uuid.UUID
	Currency       valueobject.Currency
	DiscountMethod DiscountMethod
	// DiscountRate is the document-level discount, meaningful only when
	// DiscountMethod is PER_DOCUMENT.
	DiscountRate valueobject.Rate
	LineItems    []LineItem

	Subtotal      valueobject.Money
	TaxTotal      valueobject.Money
	DiscountTotal valueobject.Money
	Total         valueobject.Money
	AmountPaid    valueobject.Money

	Status         DocumentStatus
	IssueDate      time.Time
	DueDate        *time.Time
	ExpirationDate *time.Time

	ApprovedAt      *time.Time
	SentAt          *time.Time
	ViewedAt        *time.Time
	AcceptedAt      *time.Time
	DeclinedAt      *time.Time
	ConvertedAt     *time.Time
	PaidAt          *time.Time
	GoodsReceivedAt *time.Time
	VoidedAt        *time.Time

	// Weak cross-references, never ownership.
	ConvertedFromID *uuid.UUID
	ConvertedToID   *uuid.UUID
}

// NewDocument creates a new document in draft status
func NewDocument(companyID uuid.UUID, kind DocumentKind, number string, counterpartyID uuid.UUID, currency valueobject.Currency, issueDate time.Time) (*Document, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Document kind is not valid")
	}
	if number == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Document number cannot be empty")
	}
	if counterpartyID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Counterparty ID cannot be empty")
	}
	if currency == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Document currency cannot be empty")
	}

	doc := &Document{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Kind:                 kind,
		Number:               number,
		CounterpartyID:       counterpartyID,
		Currency:             currency,
		DiscountMethod:       DiscountMethodPerLineItem,
		LineItems:            make([]LineItem, 0),
		Subtotal:             valueobject.Zero(currency),
		TaxTotal:             valueobject.Zero(currency),
		DiscountTotal:        valueobject.Zero(currency),
		Total:                valueobject.Zero(currency),
		AmountPaid:           valueobject.Zero(currency),
		Status:               DocumentStatusDraft,
		IssueDate:            issueDate,
	}

	doc.AddDomainEvent(NewDocumentCreatedEvent(doc))

	return doc, nil
}

// CanModify returns true while the document structure may still change.
// Posted, converted and received documents are frozen.
func (d *Document) CanModify() bool {
	if d.GoodsReceivedAt != nil {
		return false
	}
	if d.Kind.HasPaymentAxis() {
		return d.Status == DocumentStatusDraft
	}
	return d.Status == DocumentStatusDraft
}

// AddLineItem appends a line item at the next position.
// Only allowed while the document is modifiable.
func (d *Document) AddLineItem(description string, quantity decimal.Decimal, unitPrice valueobject.Money, postingAccountID uuid.UUID, adjustments []Adjustment) (*LineItem, error) {
	if !d.CanModify() {
		return nil, shared.NewDomainError("ILLEGAL_TRANSITION", "Cannot add line items to a posted document")
	}
	if unitPrice.Currency() != d.Currency {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Line item currency must match document currency")
	}

	item, err := NewLineItem(d.ID, description, d.nextPosition(), quantity, unitPrice, postingAccountID, adjustments, d.DiscountMethod)
	if err != nil {
		return nil, err
	}

	d.LineItems = append(d.LineItems, *item)
	d.RecalculateTotals()
	d.Touch()

	return item, nil
}

// UpdateItemQuantity updates the quantity of an existing line item
func (d *Document) UpdateItemQuantity(itemID uuid.UUID, quantity decimal.Decimal) error {
	if !d.CanModify() {
		return shared.NewDomainError("ILLEGAL_TRANSITION", "Cannot update line items on a posted document")
	}

	for idx := range d.LineItems {
		if d.LineItems[idx].ID == itemID {
			if err := d.LineItems[idx].UpdateQuantity(quantity, d.DiscountMethod); err != nil {
				return err
			}
			d.RecalculateTotals()
			d.Touch()
			return nil
		}
	}

	return shared.ErrNotFound
}

// UpdateItemPrice updates the unit price of an existing line item
func (d *Document) UpdateItemPrice(itemID uuid.UUID, unitPrice valueobject.Money) error {
	if !d.CanModify() {
		return shared.NewDomainError("ILLEGAL_TRANSITION", "Cannot update line items on a posted document")
	}
	if unitPrice.Currency() != d.Currency {
		return shared.NewDomainError("VALIDATION_ERROR", "Line item currency must match document currency")
	}

	for idx := range d.LineItems {
		if d.LineItems[idx].ID == itemID {
			if err := d.LineItems[idx].UpdateUnitPrice(unitPrice, d.DiscountMethod); err != nil {
				return err
			}
			d.RecalculateTotals()
			d.Touch()
			return nil
		}
	}

	return shared.ErrNotFound
}

// ReplaceItemAdjustments swaps the adjustment set of an existing line item
func (d *Document) ReplaceItemAdjustments(itemID uuid.UUID, adjustments []Adjustment) error {
	if !d.CanModify() {
		return shared.NewDomainError("ILLEGAL_TRANSITION", "Cannot update line items on a posted document")
	}

	for idx := range d.LineItems {
		if d.LineItems[idx].ID == itemID {
			d.LineItems[idx].ReplaceAdjustments(adjustments, d.DiscountMethod)
			d.RecalculateTotals()
			d.Touch()
			return nil
		}
	}

	return shared.ErrNotFound
}

// RemoveLineItem removes a line item from the document
func (d *Document) RemoveLineItem(itemID uuid.UUID) error {
	if !d.CanModify() {
		return shared.NewDomainError("ILLEGAL_TRANSITION", "Cannot remove line items from a posted document")
	}

	for idx, item := range d.LineItems {
		if item.ID == itemID {
			d.LineItems = append(d.LineItems[:idx], d.LineItems[idx+1:]...)
			d.RecalculateTotals()
			d.Touch()
			return nil
		}
	}

	return shared.ErrNotFound
}

// SetDiscount configures the document-level discount. Switching to
// per-document suppresses line-level discounts; switching back restores
// them. Either way every line and the aggregate recompute.
func (d *Document) SetDiscount(method DiscountMethod, rate valueobject.Rate) error {
	if !d.CanModify() {
		return shared.NewDomainError("ILLEGAL_TRANSITION", "Cannot change discount on a posted document")
	}
	if !method.IsValid() {
		return shared.NewDomainError("VALIDATION_ERROR", "Discount method is not valid")
	}
	if rate.Scaled() < 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Discount rate cannot be negative")
	}

	d.DiscountMethod = method
	d.DiscountRate = rate
	for idx := range d.LineItems {
		d.LineItems[idx].Recalculate(method)
	}
	d.RecalculateTotals()
	d.Touch()

	return nil
}

// SetDueDate sets the payment due date (bills and invoices)
func (d *Document) SetDueDate(dueDate time.Time) {
	d.DueDate = &dueDate
	d.Touch()
}

// SetExpirationDate sets the offer expiration date (orders and estimates)
func (d *Document) SetExpirationDate(expirationDate time.Time) {
	d.ExpirationDate = &expirationDate
	d.Touch()
}

// RecalculateTotals recomputes the cached aggregate totals from the
// current line items. Idempotent for unchanged inputs.
func (d *Document) RecalculateTotals() {
	var subtotal, tax, discount int64
	for idx := range d.LineItems {
		subtotal += d.LineItems[idx].Subtotal.Amount()
		tax += d.LineItems[idx].TaxTotal.Amount()
		discount += d.LineItems[idx].DiscountTotal.Amount()
	}

	if d.DiscountMethod == DiscountMethodPerDocument {
		// Line discounts are suppressed in this mode; the single
		// document-level discount applies to the whole subtotal.
		discount = d.DiscountRate.ApplyTo(subtotal)
	}

	d.Subtotal = valueobject.MustNewMoney(subtotal, d.Currency)
	d.TaxTotal = valueobject.MustNewMoney(tax, d.Currency)
	d.DiscountTotal = valueobject.MustNewMoney(discount, d.Currency)
	d.Total = valueobject.MustNewMoney(subtotal+tax-discount, d.Currency)
}

// DocumentDiscount returns the document-level discount in cents,
// zero when discounting per line item.
func (d *Document) DocumentDiscount() int64 {
	if d.DiscountMethod != DiscountMethodPerDocument {
		return 0
	}
	return d.DiscountRate.ApplyTo(d.Subtotal.Amount())
}

// Approve posts the document. Orders and estimates become unsent;
// bills and invoices enter the payment track as unpaid.
func (d *Document) Approve() error {
	if d.Status != DocumentStatusDraft {
		return shared.NewDomainError("ILLEGAL_TRANSITION", fmt.Sprintf("Cannot approve document in %s status", d.Status))
	}
	if len(d.LineItems) == 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Cannot approve a document without line items")
	}

	now := time.Now()
	d.ApprovedAt = &now
	if d.Kind.HasPaymentAxis() {
		d.Status = DocumentStatusUnpaid
	} else {
		d.Status = DocumentStatusUnsent
	}
	d.TouchAt(now)

	d.AddDomainEvent(NewDocumentApprovedEvent(d))

	return nil
}

// MarkAsSent records that the document was sent to the counterparty.
// Bills and invoices keep their payment status; only the timestamp moves.
func (d *Document) MarkAsSent() error {
	if d.SentAt != nil {
		return shared.NewDomainError("ILLEGAL_TRANSITION", "Document has already been sent")
	}
	if d.ApprovedAt == nil {
		return shared.NewDomainError("ILLEGAL_TRANSITION", "Cannot send a draft document")
	}

	now := time.Now()
	d.SentAt = &now
	if !d.Kind.HasPaymentAxis() {
		d.Status = DocumentStatusSent
	}
	d.TouchAt(now)

	d.AddDomainEvent(NewDocumentSentEvent(d))

	return nil
}

// MarkAsViewed records that the counterparty opened the document
func (d *Document) MarkAsViewed() error {
	if d.SentAt == nil {
		return shared.NewDomainError("ILLEGAL_TRANSITION", "Cannot mark an unsent document as viewed")
	}
	if d.ViewedAt != nil {
		return nil // idempotent, repeat views are not an error
	}

	now := time.Now()
	d.ViewedAt = &now
	if !d.Kind.HasPaymentAxis() && d.Status == DocumentStatusSent {
		d.Status = DocumentStatusViewed
	}
	d.TouchAt(now)

	d.AddDomainEvent(NewDocumentViewedEvent(d))

	return nil
}

func (d *Document) canBeResolved() bool {
	return d.SentAt != nil && d.AcceptedAt == nil && d.DeclinedAt == nil && d.ConvertedAt == nil
}

// MarkAsAccepted records counterparty acceptance of an order or estimate
func (d *Document) MarkAsAccepted() error {
	if d.Kind.HasPaymentAxis() {
		return shared.NewDomainError("ILLEGAL_TRANSITION", fmt.Sprintf("%s documents cannot be accepted", d.Kind))
	}
	if !d.canBeResolved() {
		return shared.NewDomainError("ILLEGAL_TRANSITION", "Document must be sent and unresolved to be accepted")
	}

	now := time.Now()
	d.AcceptedAt = &now
	d.Status = DocumentStatusAccepted
	d.TouchAt(now)

	d.AddDomainEvent(NewDocumentAcceptedEvent(d))

	return nil
}

// MarkAsDeclined records counterparty rejection of an order or estimate
func (d *Document) MarkAsDeclined() error {
	if d.Kind.HasPaymentAxis() {
		return shared.NewDomainError("ILLEGAL_TRANSITION", fmt.Sprintf("%s documents cannot be declined", d.Kind))
	}
	if !d.canBeResolved() {
		return shared.NewDomainError("ILLEGAL_TRANSITION", "Document must be sent and unresolved to be declined")
	}

	now := time.Now()
	d.DeclinedAt = &now
	d.Status = DocumentStatusDeclined
	d.TouchAt(now)

	d.AddDomainEvent(NewDocumentDeclinedEvent(d))

	return nil
}

// ConvertTo converts an accepted order into a bill, or an accepted
// estimate into an invoice. Header fields carry over and line items are
// replicated with their adjustment references; the target starts as a
// fresh draft with recomputed totals.
func (d *Document) ConvertTo(targetNumber string) (*Document, error) {
	target := d.Kind.ConversionTarget()
	if target == "" {
		return nil, shared.NewDomainError("ILLEGAL_TRANSITION", fmt.Sprintf("%s documents cannot be converted", d.Kind))
	}
	if d.ConvertedAt != nil {
		return nil, shared.NewDomainError("DUPLICATE_CONVERSION", "Document has already been converted")
	}
	if d.AcceptedAt == nil {
		return nil, shared.NewDomainError("ILLEGAL_TRANSITION", "Only accepted documents can be converted")
	}

	converted, err := NewDocument(d.CompanyID, target, targetNumber, d.CounterpartyID, d.Currency, time.Now())
	if err != nil {
		return nil, err
	}
	converted.DiscountMethod = d.DiscountMethod
	converted.DiscountRate = d.DiscountRate
	converted.ConvertedFromID = &d.ID

	for idx := range d.LineItems {
		replica := d.LineItems[idx].Replicate(converted.ID, converted.DiscountMethod)
		converted.LineItems = append(converted.LineItems, *replica)
	}
	converted.RecalculateTotals()

	now := time.Now()
	d.ConvertedAt = &now
	d.ConvertedToID = &converted.ID
	d.Status = DocumentStatusConverted
	d.TouchAt(now)

	d.AddDomainEvent(NewDocumentConvertedEvent(d, converted))

	return converted, nil
}

// MarkGoodsReceived stamps goods receipt on a posted bill. Stock
// additions are driven off the emitted event; the bill is frozen from
// here on.
func (d *Document) MarkGoodsReceived() error {
	if d.Kind != DocumentKindBill {
		return shared.NewDomainError("ILLEGAL_TRANSITION", "Only bills can receive goods")
	}
	if d.ApprovedAt == nil {
		return shared.NewDomainError("ILLEGAL_TRANSITION", "Cannot receive goods on a draft bill")
	}
	if d.GoodsReceivedAt != nil {
		return shared.NewDomainError("ILLEGAL_TRANSITION", "Goods have already been received")
	}

	now := time.Now()
	d.GoodsReceivedAt = &now
	d.TouchAt(now)

	d.AddDomainEvent(NewBillGoodsReceivedEvent(d))

	return nil
}

// Void voids a bill or invoice. Terminal; no further payments may be
// recorded against a voided document.
func (d *Document) Void() error {
	if !d.Kind.HasPaymentAxis() {
		return shared.NewDomainError("ILLEGAL_TRANSITION", fmt.Sprintf("%s documents cannot be voided", d.Kind))
	}
	if d.Status == DocumentStatusVoid {
		return shared.NewDomainError("ILLEGAL_TRANSITION", "Document is already void")
	}
	if d.ApprovedAt == nil {
		return shared.NewDomainError("ILLEGAL_TRANSITION", "Cannot void a draft document")
	}

	now := time.Now()
	d.Status = DocumentStatusVoid
	d.VoidedAt = &now
	d.TouchAt(now)

	d.AddDomainEvent(NewDocumentVoidedEvent(d))

	return nil
}

// AcceptsPayments returns true if payments may be recorded against the
// document in its current state.
func (d *Document) AcceptsPayments() bool {
	if !d.Kind.HasPaymentAxis() || d.ApprovedAt == nil {
		return false
	}
	switch d.Status {
	case DocumentStatusPaid, DocumentStatusVoid:
		return false
	}
	return true
}

// ApplyPaymentTotals applies a freshly re-summed paid amount and derives
// the payment status. Callers always re-sum from the remaining
// transactions, never adjust incrementally; passing the full amount here
// keeps the cached status drift-free.
func (d *Document) ApplyPaymentTotals(paidCents int64, latestPaymentAt *time.Time) error {
	if !d.Kind.HasPaymentAxis() {
		return shared.NewDomainError("VALIDATION_ERROR", fmt.Sprintf("%s documents do not carry payment status", d.Kind))
	}
	if d.Status == DocumentStatusVoid {
		return nil // voided documents keep their terminal status
	}

	previous := d.Status
	d.AmountPaid = valueobject.MustNewMoney(paidCents, d.Currency)

	total := d.Total.Amount()
	switch {
	case paidCents <= 0:
		d.Status = DocumentStatusUnpaid
		d.PaidAt = nil
	case d.Kind == DocumentKindBill && paidCents >= total:
		// Bills settle at or above total; overpayment tracking is a
		// receivables concern only.
		d.Status = DocumentStatusPaid
		d.PaidAt = latestPaymentAt
	case d.Kind == DocumentKindInvoice && paidCents > total:
		d.Status = DocumentStatusOverpaid
		d.PaidAt = latestPaymentAt
	case paidCents == total:
		d.Status = DocumentStatusPaid
		d.PaidAt = latestPaymentAt
	default:
		d.Status = DocumentStatusPartial
		d.PaidAt = nil
	}
	d.Touch()

	if d.Status != previous {
		d.AddDomainEvent(NewDocumentPaymentStatusChangedEvent(d, previous))
	}

	return nil
}

// RefreshDerivedStatus re-derives the lazy statuses from the clock:
// Overdue for unpaid bills/invoices past their due date, Expired for
// unresolved orders/estimates past their expiration date. Evaluated on
// every read and save, never stored as a transition.
func (d *Document) RefreshDerivedStatus(today time.Time) {
	if d.Kind.HasPaymentAxis() {
		if d.DueDate == nil {
			return
		}
		switch d.Status {
		case DocumentStatusUnpaid, DocumentStatusPartial:
			if d.DueDate.Before(today) {
				d.Status = DocumentStatusOverdue
			}
		case DocumentStatusOverdue:
			if !d.DueDate.Before(today) {
				d.Status = DocumentStatusUnpaid
				if d.AmountPaid.Amount() > 0 {
					d.Status = DocumentStatusPartial
				}
			}
		}
		return
	}

	if d.ExpirationDate == nil {
		return
	}
	switch d.Status {
	case DocumentStatusUnsent, DocumentStatusSent, DocumentStatusViewed:
		if d.ExpirationDate.Before(today) {
			d.Status = DocumentStatusExpired
		}
	case DocumentStatusExpired:
		if !d.ExpirationDate.Before(today) {
			d.Status = DocumentStatusUnsent
			if d.SentAt != nil {
				d.Status = DocumentStatusSent
			}
			if d.ViewedAt != nil {
				d.Status = DocumentStatusViewed
			}
		}
	}
}

// Replicate creates a fresh draft copy of the document under a new
// number and issue date. Line items carry over with their adjustment
// references; statuses, timestamps and payments do not.
func (d *Document) Replicate(newNumber string, issueDate time.Time) (*Document, error) {
	replica, err := NewDocument(d.CompanyID, d.Kind, newNumber, d.CounterpartyID, d.Currency, issueDate)
	if err != nil {
		return nil, err
	}
	replica.DiscountMethod = d.DiscountMethod
	replica.DiscountRate = d.DiscountRate

	for idx := range d.LineItems {
		item := d.LineItems[idx].Replicate(replica.ID, replica.DiscountMethod)
		replica.LineItems = append(replica.LineItems, *item)
	}
	replica.RecalculateTotals()

	return replica, nil
}

// BackorderItem is a shortfall line reported when a bill delivers less
// than its source order asked for.
type BackorderItem struct {
	ProductID         uuid.UUID
	Description       string
	OrderedQuantity   decimal.Decimal
	ReceivedQuantity  decimal.Decimal
	ShortfallQuantity decimal.Decimal
}

// HasQuantityMismatch reports whether this bill falls short of the
// quantities on its source order for any product.
func (d *Document) HasQuantityMismatch(order *Document) bool {
	return len(d.BuildBackorderItems(order)) > 0
}

// BuildBackorderItems compares this bill's quantities against its source
// order and returns the shortfall per product. Lines without a product
// reference are ignored; services are not backordered.
func (d *Document) BuildBackorderItems(order *Document) []BackorderItem {
	if order == nil || d.Kind != DocumentKindBill {
		return nil
	}

	received := make(map[uuid.UUID]decimal.Decimal)
	for idx := range d.LineItems {
		if d.LineItems[idx].ProductID == nil {
			continue
		}
		pid := *d.LineItems[idx].ProductID
		received[pid] = received[pid].Add(d.LineItems[idx].Quantity)
	}

	var shortfalls []BackorderItem
	for idx := range order.LineItems {
		item := &order.LineItems[idx]
		if item.ProductID == nil {
			continue
		}
		got := received[*item.ProductID]
		if got.GreaterThanOrEqual(item.Quantity) {
			continue
		}
		shortfalls = append(shortfalls, BackorderItem{
			ProductID:         *item.ProductID,
			Description:       item.Description,
			OrderedQuantity:   item.Quantity,
			ReceivedQuantity:  got,
			ShortfallQuantity: item.Quantity.Sub(got),
		})
	}
	return shortfalls
}

// GetItem returns a line item by its ID
func (d *Document) GetItem(itemID uuid.UUID) *LineItem {
	for idx := range d.LineItems {
		if d.LineItems[idx].ID == itemID {
			return &d.LineItems[idx]
		}
	}
	return nil
}

// ItemCount returns the number of line items on the document
func (d *Document) ItemCount() int {
	return len(d.LineItems)
}

// IsDraft returns true if the document has not been posted
func (d *Document) IsDraft() bool {
	return d.Status == DocumentStatusDraft
}

// IsPosted returns true once the document has been approved
func (d *Document) IsPosted() bool {
	return d.ApprovedAt != nil
}

// IsConverted returns true if the document has been converted
func (d *Document) IsConverted() bool {
	return d.ConvertedAt != nil
}

func (d *Document) nextPosition() int {
	next := 0
	for idx := range d.LineItems {
		if d.LineItems[idx].Position >= next {
			next = d.LineItems[idx].Position + 1
		}
	}
	return next
}
