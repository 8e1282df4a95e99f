package ledger

import (
	"context"

	"github.com/google/uuid"
)

// PostingAccounts are the control and contra accounts a document
// posting needs, resolved per company before the journal is built.
type PostingAccounts struct {
	// Payable is the accounts-payable control account (bills).
	Payable uuid.UUID
	// Receivable is the accounts-receivable control account (invoices).
	Receivable uuid.UUID
	// SalesDiscount is the contra-income account sales discounts post to.
	SalesDiscount uuid.UUID
	// PurchaseDiscount is the contra-expense account purchase discounts
	// post to.
	PurchaseDiscount uuid.UUID
}

// AccountResolver resolves a company's control accounts from its chart
// of accounts
type AccountResolver interface {
	// ResolvePostingAccounts returns the control and discount accounts
	// for a company
	ResolvePostingAccounts(ctx context.Context, companyID uuid.UUID) (PostingAccounts, error)
}
