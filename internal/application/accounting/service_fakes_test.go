package accounting

import (
	"context"
	"fmt"
	"strings"
	"sync"

	domainaccounting "github.com/books/backend/internal/domain/accounting"
	"github.com/books/backend/internal/domain/ledger"
	"github.com/books/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// memoryDocumentRepository is an in-memory DocumentRepository for tests
type memoryDocumentRepository struct {
	mu       sync.Mutex
	docs     map[uuid.UUID]*domainaccounting.Document
	sequence map[domainaccounting.DocumentKind]int
}

func newMemoryDocumentRepository() *memoryDocumentRepository {
	return &memoryDocumentRepository{
		docs:     make(map[uuid.UUID]*domainaccounting.Document),
		sequence: make(map[domainaccounting.DocumentKind]int),
	}
}

func (r *memoryDocumentRepository) FindByID(_ context.Context, id uuid.UUID) (*domainaccounting.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return doc, nil
}

func (r *memoryDocumentRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*domainaccounting.Document, error) {
	doc, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.CompanyID != companyID {
		return nil, shared.ErrNotFound
	}
	return doc, nil
}

func (r *memoryDocumentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*domainaccounting.Document, error) {
	return r.FindByID(ctx, id)
}

func (r *memoryDocumentRepository) FindByNumber(_ context.Context, companyID uuid.UUID, number string) (*domainaccounting.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, doc := range r.docs {
		if doc.CompanyID == companyID && doc.Number == number {
			return doc, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryDocumentRepository) FindByKind(_ context.Context, companyID uuid.UUID, kind domainaccounting.DocumentKind) ([]domainaccounting.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domainaccounting.Document
	for _, doc := range r.docs {
		if doc.CompanyID == companyID && doc.Kind == kind {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (r *memoryDocumentRepository) FindByStatus(_ context.Context, companyID uuid.UUID, status domainaccounting.DocumentStatus) ([]domainaccounting.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domainaccounting.Document
	for _, doc := range r.docs {
		if doc.CompanyID == companyID && doc.Status == status {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (r *memoryDocumentRepository) NextNumber(_ context.Context, _ uuid.UUID, kind domainaccounting.DocumentKind) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sequence[kind]++
	return fmt.Sprintf("%s-%06d", kind.NumberPrefix(), r.sequence[kind]), nil
}

func (r *memoryDocumentRepository) Save(_ context.Context, doc *domainaccounting.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = doc
	return nil
}

func (r *memoryDocumentRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, id)
	return nil
}

// memoryAdjustmentRepository is an in-memory AdjustmentRepository for tests
type memoryAdjustmentRepository struct {
	mu          sync.Mutex
	adjustments map[uuid.UUID]*domainaccounting.Adjustment
	referenced  map[uuid.UUID]bool
}

func newMemoryAdjustmentRepository() *memoryAdjustmentRepository {
	return &memoryAdjustmentRepository{
		adjustments: make(map[uuid.UUID]*domainaccounting.Adjustment),
		referenced:  make(map[uuid.UUID]bool),
	}
}

func (r *memoryAdjustmentRepository) FindByID(_ context.Context, id uuid.UUID) (*domainaccounting.Adjustment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	adj, ok := r.adjustments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return adj, nil
}

func (r *memoryAdjustmentRepository) FindByIDs(_ context.Context, ids []uuid.UUID) ([]domainaccounting.Adjustment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domainaccounting.Adjustment
	for _, id := range ids {
		if adj, ok := r.adjustments[id]; ok {
			out = append(out, *adj)
		}
	}
	return out, nil
}

func (r *memoryAdjustmentRepository) FindActiveForCompany(_ context.Context, companyID uuid.UUID) ([]domainaccounting.Adjustment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domainaccounting.Adjustment
	for _, adj := range r.adjustments {
		if adj.CompanyID == companyID && adj.Status.IsActive() {
			out = append(out, *adj)
		}
	}
	return out, nil
}

func (r *memoryAdjustmentRepository) IsReferenced(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.referenced[id], nil
}

func (r *memoryAdjustmentRepository) Save(_ context.Context, adjustment *domainaccounting.Adjustment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adjustments[adjustment.ID] = adjustment
	return nil
}

func (r *memoryAdjustmentRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.adjustments, id)
	return nil
}

// memoryTransactionRepository is an in-memory TransactionRepository for
// tests
type memoryTransactionRepository struct {
	mu           sync.Mutex
	transactions map[uuid.UUID]*ledger.Transaction
}

func newMemoryTransactionRepository() *memoryTransactionRepository {
	return &memoryTransactionRepository{transactions: make(map[uuid.UUID]*ledger.Transaction)}
}

func (r *memoryTransactionRepository) FindByID(_ context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.transactions[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return txn, nil
}

func (r *memoryTransactionRepository) FindByDocumentID(_ context.Context, documentID uuid.UUID) ([]ledger.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.Transaction
	for _, txn := range r.transactions {
		if txn.DocumentID != nil && *txn.DocumentID == documentID {
			out = append(out, *txn)
		}
	}
	return out, nil
}

func (r *memoryTransactionRepository) FindPaymentsByDocumentID(_ context.Context, documentID uuid.UUID) ([]ledger.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.Transaction
	for _, txn := range r.transactions {
		if txn.IsPayment && txn.DocumentID != nil && *txn.DocumentID == documentID {
			out = append(out, *txn)
		}
	}
	return out, nil
}

func (r *memoryTransactionRepository) FindJournalByDocumentID(_ context.Context, documentID uuid.UUID) (*ledger.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, txn := range r.transactions {
		if txn.Type == ledger.TransactionTypeJournal && txn.DocumentID != nil && *txn.DocumentID == documentID {
			return txn, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryTransactionRepository) Save(_ context.Context, txn *ledger.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions[txn.ID] = txn
	return nil
}

func (r *memoryTransactionRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.transactions, id)
	return nil
}

func (r *memoryTransactionRepository) DeleteByDocumentID(_ context.Context, documentID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, txn := range r.transactions {
		if txn.DocumentID != nil && *txn.DocumentID == documentID {
			delete(r.transactions, id)
		}
	}
	return nil
}

// staticAccountResolver returns a fixed chart of control accounts
type staticAccountResolver struct {
	accounts ledger.PostingAccounts
}

func newStaticAccountResolver() *staticAccountResolver {
	return &staticAccountResolver{accounts: ledger.PostingAccounts{
		Payable:          uuid.New(),
		Receivable:       uuid.New(),
		SalesDiscount:    uuid.New(),
		PurchaseDiscount: uuid.New(),
	}}
}

func (r *staticAccountResolver) ResolvePostingAccounts(_ context.Context, _ uuid.UUID) (ledger.PostingAccounts, error) {
	return r.accounts, nil
}

// passthroughUnitOfWork runs the function directly; the in-memory
// repositories have no transaction to join
type passthroughUnitOfWork struct{}

func (passthroughUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// collectingPublisher records published events for assertions
type collectingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *collectingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *collectingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

func (p *collectingPublisher) hasEventType(eventType string) bool {
	for _, et := range p.eventTypes() {
		if strings.EqualFold(et, eventType) {
			return true
		}
	}
	return false
}
