package models

import (
	"time"

	"github.com/books/backend/internal/domain/accounting"
	"github.com/books/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentModel is the persistence model for the Document aggregate
// root. Money amounts are stored as integer cents with the currency in
// its own column; rates as scaled integers with their computation mode.
type DocumentModel struct {
	CompanyAggregateModel
	Kind                 accounting.DocumentKind   `gorm:"type:varchar(20);not null;index"`
	Number               string                    `gorm:"type:varchar(50);not null;uniqueIndex:idx_documents_company_number,priority:2"`
	CounterpartyID       uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Currency             string                    `gorm:"type:varchar(3);not null"`
	DiscountMethod       accounting.DiscountMethod `gorm:"type:varchar(20);not null;default:'PER_LINE_ITEM'"`
	DiscountRateScaled   int64                     `gorm:"not null;default:0"`
	DiscountRateMode     string                    `gorm:"type:varchar(20);not null;default:'PERCENTAGE'"`
	SubtotalCents        int64                     `gorm:"not null;default:0"`
	TaxTotalCents        int64                     `gorm:"not null;default:0"`
	DiscountTotalCents   int64                     `gorm:"not null;default:0"`
	TotalCents           int64                     `gorm:"not null;default:0"`
	AmountPaidCents      int64                     `gorm:"not null;default:0"`
	Status               accounting.DocumentStatus `gorm:"type:varchar(20);not null;index"`
	IssueDate            time.Time                 `gorm:"not null"`
	DueDate              *time.Time                `gorm:"index"`
	ExpirationDate       *time.Time
	ApprovedAt           *time.Time
	SentAt               *time.Time
	ViewedAt             *time.Time
	AcceptedAt           *time.Time
	DeclinedAt           *time.Time
	ConvertedAt          *time.Time
	PaidAt               *time.Time
	GoodsReceivedAt      *time.Time
	VoidedAt             *time.Time
	ConvertedFromID      *uuid.UUID      `gorm:"type:uuid"`
	ConvertedToID        *uuid.UUID      `gorm:"type:uuid"`
	LineItems            []LineItemModel `gorm:"foreignKey:DocumentID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// ToDomain converts the persistence model to a domain Document
func (m *DocumentModel) ToDomain() *accounting.Document {
	currency := valueobject.Currency(m.Currency)
	items := make([]accounting.LineItem, len(m.LineItems))
	for i := range m.LineItems {
		items[i] = *m.LineItems[i].ToDomain(currency)
	}

	return &accounting.Document{
		CompanyAggregateRoot: m.ToCompanyAggregateRoot(),
		Kind:                 m.Kind,
		Number:               m.Number,
		CounterpartyID:       m.CounterpartyID,
		Currency:             currency,
		DiscountMethod:       m.DiscountMethod,
		DiscountRate:         rateFromColumns(m.DiscountRateScaled, m.DiscountRateMode),
		LineItems:            items,
		Subtotal:             valueobject.MustNewMoney(m.SubtotalCents, currency),
		TaxTotal:             valueobject.MustNewMoney(m.TaxTotalCents, currency),
		DiscountTotal:        valueobject.MustNewMoney(m.DiscountTotalCents, currency),
		Total:                valueobject.MustNewMoney(m.TotalCents, currency),
		AmountPaid:           valueobject.MustNewMoney(m.AmountPaidCents, currency),
		Status:               m.Status,
		IssueDate:            m.IssueDate,
		DueDate:              m.DueDate,
		ExpirationDate:       m.ExpirationDate,
		ApprovedAt:           m.ApprovedAt,
		SentAt:               m.SentAt,
		ViewedAt:             m.ViewedAt,
		AcceptedAt:           m.AcceptedAt,
		DeclinedAt:           m.DeclinedAt,
		ConvertedAt:          m.ConvertedAt,
		PaidAt:               m.PaidAt,
		GoodsReceivedAt:      m.GoodsReceivedAt,
		VoidedAt:             m.VoidedAt,
		ConvertedFromID:      m.ConvertedFromID,
		ConvertedToID:        m.ConvertedToID,
	}
}

// FromDomain populates the persistence model from a domain Document
func (m *DocumentModel) FromDomain(doc *accounting.Document) {
	m.FromDomainCompanyAggregateRoot(doc.CompanyAggregateRoot)
	m.Kind = doc.Kind
	m.Number = doc.Number
	m.CounterpartyID = doc.CounterpartyID
	m.Currency = string(doc.Currency)
	m.DiscountMethod = doc.DiscountMethod
	m.DiscountRateScaled = doc.DiscountRate.Scaled()
	m.DiscountRateMode = rateModeColumn(doc.DiscountRate)
	m.SubtotalCents = doc.Subtotal.Amount()
	m.TaxTotalCents = doc.TaxTotal.Amount()
	m.DiscountTotalCents = doc.DiscountTotal.Amount()
	m.TotalCents = doc.Total.Amount()
	m.AmountPaidCents = doc.AmountPaid.Amount()
	m.Status = doc.Status
	m.IssueDate = doc.IssueDate
	m.DueDate = doc.DueDate
	m.ExpirationDate = doc.ExpirationDate
	m.ApprovedAt = doc.ApprovedAt
	m.SentAt = doc.SentAt
	m.ViewedAt = doc.ViewedAt
	m.AcceptedAt = doc.AcceptedAt
	m.DeclinedAt = doc.DeclinedAt
	m.ConvertedAt = doc.ConvertedAt
	m.PaidAt = doc.PaidAt
	m.GoodsReceivedAt = doc.GoodsReceivedAt
	m.VoidedAt = doc.VoidedAt
	m.ConvertedFromID = doc.ConvertedFromID
	m.ConvertedToID = doc.ConvertedToID

	m.LineItems = make([]LineItemModel, len(doc.LineItems))
	for i := range doc.LineItems {
		m.LineItems[i].FromDomain(&doc.LineItems[i])
	}
}

// DocumentModelFromDomain creates a new persistence model from a domain Document
func DocumentModelFromDomain(doc *accounting.Document) *DocumentModel {
	m := &DocumentModel{}
	m.FromDomain(doc)
	return m
}

// LineItemModel is the persistence model for a document line item
type LineItemModel struct {
	BaseModel
	DocumentID         uuid.UUID                  `gorm:"type:uuid;not null;index"`
	OfferingID         *uuid.UUID                 `gorm:"type:uuid"`
	ProductID          *uuid.UUID                 `gorm:"type:uuid;index"`
	Description        string                     `gorm:"type:varchar(500);not null"`
	Position           int                        `gorm:"not null"`
	Quantity           decimal.Decimal            `gorm:"type:decimal(18,4);not null"`
	UnitPriceCents     int64                      `gorm:"not null"`
	PostingAccountID   uuid.UUID                  `gorm:"type:uuid;not null"`
	SubtotalCents      int64                      `gorm:"not null;default:0"`
	TaxTotalCents      int64                      `gorm:"not null;default:0"`
	DiscountTotalCents int64                      `gorm:"not null;default:0"`
	TotalCents         int64                      `gorm:"not null;default:0"`
	Adjustments        []LineItemAdjustmentModel `gorm:"foreignKey:LineItemID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (LineItemModel) TableName() string {
	return "line_items"
}

// ToDomain converts the persistence model to a domain LineItem
func (m *LineItemModel) ToDomain(currency valueobject.Currency) *accounting.LineItem {
	adjustments := make([]accounting.Adjustment, len(m.Adjustments))
	for i := range m.Adjustments {
		adjustments[i] = *m.Adjustments[i].ToDomain()
	}

	return &accounting.LineItem{
		ID:               m.ID,
		DocumentID:       m.DocumentID,
		OfferingID:       m.OfferingID,
		ProductID:        m.ProductID,
		Description:      m.Description,
		Position:         m.Position,
		Quantity:         m.Quantity,
		UnitPrice:        valueobject.MustNewMoney(m.UnitPriceCents, currency),
		Adjustments:      adjustments,
		PostingAccountID: m.PostingAccountID,
		Subtotal:         valueobject.MustNewMoney(m.SubtotalCents, currency),
		TaxTotal:         valueobject.MustNewMoney(m.TaxTotalCents, currency),
		DiscountTotal:    valueobject.MustNewMoney(m.DiscountTotalCents, currency),
		Total:            valueobject.MustNewMoney(m.TotalCents, currency),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain LineItem
func (m *LineItemModel) FromDomain(item *accounting.LineItem) {
	m.ID = item.ID
	m.CreatedAt = item.CreatedAt
	m.UpdatedAt = item.UpdatedAt
	m.DocumentID = item.DocumentID
	m.OfferingID = item.OfferingID
	m.ProductID = item.ProductID
	m.Description = item.Description
	m.Position = item.Position
	m.Quantity = item.Quantity
	m.UnitPriceCents = item.UnitPrice.Amount()
	m.PostingAccountID = item.PostingAccountID
	m.SubtotalCents = item.Subtotal.Amount()
	m.TaxTotalCents = item.TaxTotal.Amount()
	m.DiscountTotalCents = item.DiscountTotal.Amount()
	m.TotalCents = item.Total.Amount()

	m.Adjustments = make([]LineItemAdjustmentModel, len(item.Adjustments))
	for i := range item.Adjustments {
		m.Adjustments[i].FromDomain(item.ID, &item.Adjustments[i])
	}
}

// LineItemAdjustmentModel snapshots an adjustment rule as applied to a
// line item. The snapshot keeps posted documents stable when the rule
// later changes, and its AdjustmentID column is what makes rules
// referenced and therefore immutable.
type LineItemAdjustmentModel struct {
	ID           uuid.UUID                     `gorm:"type:uuid;primary_key"`
	LineItemID   uuid.UUID                     `gorm:"type:uuid;not null;index"`
	AdjustmentID uuid.UUID                     `gorm:"type:uuid;not null;index"`
	CompanyID    uuid.UUID                     `gorm:"type:uuid;not null"`
	Name         string                        `gorm:"type:varchar(200);not null"`
	Category     accounting.AdjustmentCategory `gorm:"type:varchar(20);not null"`
	Type         accounting.AdjustmentType     `gorm:"type:varchar(20);not null"`
	RateScaled   int64                         `gorm:"not null"`
	RateMode     string                        `gorm:"type:varchar(20);not null"`
	Recoverable  bool                          `gorm:"not null;default:false"`
	Scope        accounting.AdjustmentScope    `gorm:"type:varchar(20);not null"`
	Status       accounting.AdjustmentStatus   `gorm:"type:varchar(20);not null"`
	AccountID    *uuid.UUID                    `gorm:"type:uuid"`
	CreatedAt    time.Time                     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LineItemAdjustmentModel) TableName() string {
	return "line_item_adjustments"
}

// ToDomain rebuilds the adjustment snapshot
func (m *LineItemAdjustmentModel) ToDomain() *accounting.Adjustment {
	adj := &accounting.Adjustment{
		Name:        m.Name,
		Category:    m.Category,
		Type:        m.Type,
		Rate:        rateFromColumns(m.RateScaled, m.RateMode),
		Recoverable: m.Recoverable,
		Scope:       m.Scope,
		Status:      m.Status,
		AccountID:   m.AccountID,
	}
	adj.ID = m.AdjustmentID
	adj.CompanyID = m.CompanyID
	return adj
}

// FromDomain snapshots a domain adjustment onto a line item
func (m *LineItemAdjustmentModel) FromDomain(lineItemID uuid.UUID, adj *accounting.Adjustment) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.LineItemID = lineItemID
	m.AdjustmentID = adj.ID
	m.CompanyID = adj.CompanyID
	m.Name = adj.Name
	m.Category = adj.Category
	m.Type = adj.Type
	m.RateScaled = adj.Rate.Scaled()
	m.RateMode = rateModeColumn(adj.Rate)
	m.Recoverable = adj.Recoverable
	m.Scope = adj.Scope
	m.Status = adj.Status
	m.AccountID = adj.AccountID
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
}

// AdjustmentModel is the persistence model for the Adjustment aggregate
// root (the rule itself, not its per-line snapshots)
type AdjustmentModel struct {
	CompanyAggregateModel
	Name        string                        `gorm:"type:varchar(200);not null"`
	Description string                        `gorm:"type:text"`
	Category    accounting.AdjustmentCategory `gorm:"type:varchar(20);not null;index"`
	Type        accounting.AdjustmentType     `gorm:"type:varchar(20);not null"`
	RateScaled  int64                         `gorm:"not null"`
	RateMode    string                        `gorm:"type:varchar(20);not null"`
	Recoverable bool                          `gorm:"not null;default:false"`
	Scope       accounting.AdjustmentScope    `gorm:"type:varchar(20);not null"`
	Status      accounting.AdjustmentStatus   `gorm:"type:varchar(20);not null;index"`
	AccountID   *uuid.UUID                    `gorm:"type:uuid"`
	StartDate   *time.Time
	EndDate     *time.Time
}

// TableName returns the table name for GORM
func (AdjustmentModel) TableName() string {
	return "adjustments"
}

// ToDomain converts the persistence model to a domain Adjustment
func (m *AdjustmentModel) ToDomain() *accounting.Adjustment {
	return &accounting.Adjustment{
		CompanyAggregateRoot: m.ToCompanyAggregateRoot(),
		Name:                 m.Name,
		Description:          m.Description,
		Category:             m.Category,
		Type:                 m.Type,
		Rate:                 rateFromColumns(m.RateScaled, m.RateMode),
		Recoverable:          m.Recoverable,
		Scope:                m.Scope,
		Status:               m.Status,
		AccountID:            m.AccountID,
		StartDate:            m.StartDate,
		EndDate:              m.EndDate,
	}
}

// FromDomain populates the persistence model from a domain Adjustment
func (m *AdjustmentModel) FromDomain(adj *accounting.Adjustment) {
	m.FromDomainCompanyAggregateRoot(adj.CompanyAggregateRoot)
	m.Name = adj.Name
	m.Description = adj.Description
	m.Category = adj.Category
	m.Type = adj.Type
	m.RateScaled = adj.Rate.Scaled()
	m.RateMode = rateModeColumn(adj.Rate)
	m.Recoverable = adj.Recoverable
	m.Scope = adj.Scope
	m.Status = adj.Status
	m.AccountID = adj.AccountID
	m.StartDate = adj.StartDate
	m.EndDate = adj.EndDate
}

// AdjustmentModelFromDomain creates a new persistence model from a domain Adjustment
func AdjustmentModelFromDomain(adj *accounting.Adjustment) *AdjustmentModel {
	m := &AdjustmentModel{}
	m.FromDomain(adj)
	return m
}

func rateFromColumns(scaled int64, mode string) valueobject.Rate {
	rate, err := valueobject.NewRate(scaled, valueobject.Computation(mode))
	if err != nil {
		// Unknown modes in old rows degrade to a zero percentage rather
		// than poisoning every read of the document.
		return valueobject.NewPercentageRate(0)
	}
	return rate
}

func rateModeColumn(rate valueobject.Rate) string {
	return rate.Computation().String()
}
