package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/books/backend/internal/domain/ledger"
	"github.com/books/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostingAccountsModel holds a company's control account configuration:
// the payable/receivable accounts journal control legs post to and the
// default contra accounts for discounts.
type PostingAccountsModel struct {
	CompanyID          uuid.UUID `gorm:"type:uuid;primary_key"`
	PayableID          uuid.UUID `gorm:"type:uuid;not null"`
	ReceivableID       uuid.UUID `gorm:"type:uuid;not null"`
	SalesDiscountID    uuid.UUID `gorm:"type:uuid;not null"`
	PurchaseDiscountID uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PostingAccountsModel) TableName() string {
	return "posting_accounts"
}

// GormAccountResolver implements ledger.AccountResolver from the
// posting_accounts table
type GormAccountResolver struct {
	db *gorm.DB
}

// NewGormAccountResolver creates a new GormAccountResolver
func NewGormAccountResolver(db *gorm.DB) *GormAccountResolver {
	return &GormAccountResolver{db: db}
}

// ResolvePostingAccounts returns the control accounts for a company
func (r *GormAccountResolver) ResolvePostingAccounts(ctx context.Context, companyID uuid.UUID) (ledger.PostingAccounts, error) {
	var model PostingAccountsModel
	err := dbFrom(ctx, r.db).First(&model, "company_id = ?", companyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ledger.PostingAccounts{}, shared.NewDomainError("VALIDATION_ERROR", "Company has no posting account configuration")
		}
		return ledger.PostingAccounts{}, err
	}

	return ledger.PostingAccounts{
		Payable:          model.PayableID,
		Receivable:       model.ReceivableID,
		SalesDiscount:    model.SalesDiscountID,
		PurchaseDiscount: model.PurchaseDiscountID,
	}, nil
}

// SavePostingAccounts stores a company's control account configuration
func (r *GormAccountResolver) SavePostingAccounts(ctx context.Context, companyID uuid.UUID, accounts ledger.PostingAccounts) error {
	model := PostingAccountsModel{
		CompanyID:          companyID,
		PayableID:          accounts.Payable,
		ReceivableID:       accounts.Receivable,
		SalesDiscountID:    accounts.SalesDiscount,
		PurchaseDiscountID: accounts.PurchaseDiscount,
	}
	return dbFrom(ctx, r.db).Save(&model).Error
}

var _ ledger.AccountResolver = (*GormAccountResolver)(nil)
