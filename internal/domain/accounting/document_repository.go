package accounting

import (
	"context"

	"github.com/google/uuid"
)

// DocumentRepository defines the persistence contract for documents.
// Save and Delete operate on the whole aggregate including line items;
// FindByIDForUpdate takes a pessimistic row lock so concurrent
// recomputations of the same document serialize.
type DocumentRepository interface {
	// FindByID finds a document with its line items by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Document, error)

	// FindByIDForCompany finds a document by ID within a company
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Document, error)

	// FindByIDForUpdate finds a document by ID holding a row lock for the
	// duration of the enclosing transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Document, error)

	// FindByNumber finds a document by its number within a company
	FindByNumber(ctx context.Context, companyID uuid.UUID, number string) (*Document, error)

	// FindByKind finds all documents of a kind for a company
	FindByKind(ctx context.Context, companyID uuid.UUID, kind DocumentKind) ([]Document, error)

	// FindByStatus finds all documents in a status for a company
	FindByStatus(ctx context.Context, companyID uuid.UUID, status DocumentStatus) ([]Document, error)

	// NextNumber generates the next document number for the kind,
	// e.g. INV-000042
	NextNumber(ctx context.Context, companyID uuid.UUID, kind DocumentKind) (string, error)

	// Save persists the document and its line items
	Save(ctx context.Context, doc *Document) error

	// Delete removes the document, its line items and its transactions
	Delete(ctx context.Context, id uuid.UUID) error
}

// AdjustmentRepository defines the persistence contract for adjustment rules
type AdjustmentRepository interface {
	// FindByID finds an adjustment by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Adjustment, error)

	// FindByIDs finds adjustments by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Adjustment, error)

	// FindActiveForCompany finds all approved adjustments for a company
	FindActiveForCompany(ctx context.Context, companyID uuid.UUID) ([]Adjustment, error)

	// IsReferenced reports whether any posted document line references the
	// adjustment. Referenced adjustments must not be mutated.
	IsReferenced(ctx context.Context, id uuid.UUID) (bool, error)

	// Save persists the adjustment
	Save(ctx context.Context, adjustment *Adjustment) error

	// Delete removes the adjustment
	Delete(ctx context.Context, id uuid.UUID) error
}
