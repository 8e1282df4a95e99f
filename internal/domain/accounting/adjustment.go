package accounting

import (
	"time"

	"github.com/books/backend/internal/domain/shared"
	"github.com/books/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// AdjustmentCategory distinguishes taxes from discounts
type AdjustmentCategory string

const (
	AdjustmentCategoryTax      AdjustmentCategory = "TAX"
	AdjustmentCategoryDiscount AdjustmentCategory = "DISCOUNT"
)

// IsValid checks if the category is a valid AdjustmentCategory
func (c AdjustmentCategory) IsValid() bool {
	return c == AdjustmentCategoryTax || c == AdjustmentCategoryDiscount
}

// String returns the string representation of AdjustmentCategory
func (c AdjustmentCategory) String() string {
	return string(c)
}

// IsTax returns true for tax adjustments
func (c AdjustmentCategory) IsTax() bool {
	return c == AdjustmentCategoryTax
}

// IsDiscount returns true for discount adjustments
func (c AdjustmentCategory) IsDiscount() bool {
	return c == AdjustmentCategoryDiscount
}

// AdjustmentType distinguishes the side of the ledger the adjustment serves
type AdjustmentType string

const (
	AdjustmentTypeSales    AdjustmentType = "SALES"
	AdjustmentTypePurchase AdjustmentType = "PURCHASE"
)

// IsValid checks if the type is a valid AdjustmentType
func (t AdjustmentType) IsValid() bool {
	return t == AdjustmentTypeSales || t == AdjustmentTypePurchase
}

// String returns the string representation of AdjustmentType
func (t AdjustmentType) String() string {
	return string(t)
}

// IsSales returns true for sales adjustments
func (t AdjustmentType) IsSales() bool {
	return t == AdjustmentTypeSales
}

// IsPurchase returns true for purchase adjustments
func (t AdjustmentType) IsPurchase() bool {
	return t == AdjustmentTypePurchase
}

// AdjustmentScope limits what an adjustment may attach to
type AdjustmentScope string

const (
	AdjustmentScopeProduct AdjustmentScope = "PRODUCT"
	AdjustmentScopeService AdjustmentScope = "SERVICE"
	AdjustmentScopeGlobal  AdjustmentScope = "GLOBAL"
	AdjustmentScopeLocal   AdjustmentScope = "LOCAL"
)

// IsValid checks if the scope is a valid AdjustmentScope
func (s AdjustmentScope) IsValid() bool {
	switch s {
	case AdjustmentScopeProduct, AdjustmentScopeService, AdjustmentScopeGlobal, AdjustmentScopeLocal:
		return true
	}
	return false
}

// String returns the string representation of AdjustmentScope
func (s AdjustmentScope) String() string {
	return string(s)
}

// AdjustmentStatus represents the approval state of an adjustment rule
type AdjustmentStatus string

const (
	AdjustmentStatusPending  AdjustmentStatus = "PENDING"
	AdjustmentStatusApproved AdjustmentStatus = "APPROVED"
	AdjustmentStatusReversed AdjustmentStatus = "REVERSED"
)

// IsValid checks if the status is a valid AdjustmentStatus
func (s AdjustmentStatus) IsValid() bool {
	switch s {
	case AdjustmentStatusPending, AdjustmentStatusApproved, AdjustmentStatusReversed:
		return true
	}
	return false
}

// String returns the string representation of AdjustmentStatus
func (s AdjustmentStatus) String() string {
	return string(s)
}

// IsActive returns true if the adjustment participates in computations
func (s AdjustmentStatus) IsActive() bool {
	return s == AdjustmentStatusApproved
}

// Adjustment is a named tax or discount rule. Once a posted document
// references it the rule must not be mutated; the application service
// enforces that by refusing updates for referenced adjustments.
type Adjustment struct {
	shared.CompanyAggregateRoot
	Name        string
	Description string
	Category    AdjustmentCategory
	Type        AdjustmentType
	Rate        valueobject.Rate
	Recoverable bool
	Scope       AdjustmentScope
	Status      AdjustmentStatus
	// AccountID is the ledger account journal legs for this adjustment
	// post to (tax payable, discount allowed, ...). Nil means the leg is
	// folded per the non-recoverable purchase tax rule.
	AccountID *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

// NewAdjustment creates a new adjustment rule in pending status
func NewAdjustment(companyID uuid.UUID, name string, category AdjustmentCategory, adjType AdjustmentType, rate valueobject.Rate, scope AdjustmentScope) (*Adjustment, error) {
	if name == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Adjustment name cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Adjustment category is not valid")
	}
	if !adjType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Adjustment type is not valid")
	}
	if !rate.Computation().IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Adjustment rate computation is not valid")
	}
	if rate.Scaled() < 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Adjustment rate cannot be negative")
	}
	if !scope.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Adjustment scope is not valid")
	}

	return &Adjustment{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Name:                 name,
		Category:             category,
		Type:                 adjType,
		Rate:                 rate,
		Scope:                scope,
		Status:               AdjustmentStatusPending,
	}, nil
}

// Approve activates the adjustment for use in document computations
func (a *Adjustment) Approve() error {
	if a.Status == AdjustmentStatusReversed {
		return shared.NewDomainError("ILLEGAL_TRANSITION", "Cannot approve a reversed adjustment")
	}
	a.Status = AdjustmentStatusApproved
	a.Touch()
	return nil
}

// Reverse retires the adjustment; reversed rules no longer apply to new
// computations but stay on record for posted documents.
func (a *Adjustment) Reverse() error {
	if a.Status != AdjustmentStatusApproved {
		return shared.NewDomainError("ILLEGAL_TRANSITION", "Only approved adjustments can be reversed")
	}
	a.Status = AdjustmentStatusReversed
	a.Touch()
	return nil
}

// SetAccount assigns the posting account for journal legs
func (a *Adjustment) SetAccount(accountID uuid.UUID) {
	a.AccountID = &accountID
	a.Touch()
}

// IsTax returns true for tax adjustments
func (a *Adjustment) IsTax() bool {
	return a.Category.IsTax()
}

// IsDiscount returns true for discount adjustments
func (a *Adjustment) IsDiscount() bool {
	return a.Category.IsDiscount()
}

// IsSalesTax returns true for sales taxes
func (a *Adjustment) IsSalesTax() bool {
	return a.Category.IsTax() && a.Type.IsSales()
}

// IsNonRecoverablePurchaseTax identifies purchase taxes whose amount is
// folded into the expense account instead of a dedicated tax account.
func (a *Adjustment) IsNonRecoverablePurchaseTax() bool {
	return a.Category.IsTax() && a.Type.IsPurchase() && !a.Recoverable
}

// IsRecoverablePurchaseTax identifies reclaimable purchase taxes
func (a *Adjustment) IsRecoverablePurchaseTax() bool {
	return a.Category.IsTax() && a.Type.IsPurchase() && a.Recoverable
}
