package inventory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/books/backend/internal/domain/accounting"
	domaininventory "github.com/books/backend/internal/domain/inventory"
	"github.com/books/backend/internal/domain/shared"
	"github.com/books/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryStockRepository is an in-memory StockRepository for tests
type memoryStockRepository struct {
	mu        sync.Mutex
	stocks    map[uuid.UUID]*domaininventory.ProductStock
	movements []domaininventory.StockMovement
}

func newMemoryStockRepository() *memoryStockRepository {
	return &memoryStockRepository{stocks: make(map[uuid.UUID]*domaininventory.ProductStock)}
}

func (r *memoryStockRepository) FindByProduct(_ context.Context, companyID, productID uuid.UUID) (*domaininventory.ProductStock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stock, ok := r.stocks[productID]
	if !ok || stock.CompanyID != companyID {
		return nil, shared.ErrNotFound
	}
	return stock, nil
}

func (r *memoryStockRepository) FindByProductForUpdate(ctx context.Context, companyID, productID uuid.UUID) (*domaininventory.ProductStock, error) {
	return r.FindByProduct(ctx, companyID, productID)
}

func (r *memoryStockRepository) SaveStock(_ context.Context, stock *domaininventory.ProductStock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stocks[stock.ProductID] = stock
	return nil
}

func (r *memoryStockRepository) SaveMovement(_ context.Context, movement *domaininventory.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, *movement)
	return nil
}

func (r *memoryStockRepository) FindMovementsByDocument(_ context.Context, documentID uuid.UUID) ([]domaininventory.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domaininventory.StockMovement
	for _, m := range r.movements {
		if m.DocumentID != nil && *m.DocumentID == documentID {
			out = append(out, m)
		}
	}
	return out, nil
}

// stockDocument builds a draft document with one product line
func stockDocument(t *testing.T, companyID uuid.UUID, kind accounting.DocumentKind, productID uuid.UUID, quantity int64) *accounting.Document {
	t.Helper()

	doc, err := accounting.NewDocument(companyID, kind, "DOC-000001", uuid.New(), valueobject.USD, time.Now())
	require.NoError(t, err)
	item, err := doc.AddLineItem("Widgets", decimal.NewFromInt(quantity),
		valueobject.MustNewMoney(1000, valueobject.USD), uuid.New(), nil)
	require.NoError(t, err)
	doc.GetItem(item.ID).ProductID = &productID
	return doc
}

func TestStockSyncHandler(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New()
	productID := uuid.New()

	newHandler := func() (*StockSyncHandler, *memoryStockRepository) {
		repo := newMemoryStockRepository()
		return NewStockSyncHandler(domaininventory.NewStockMovementService(repo), zap.NewNop()), repo
	}

	t.Run("goods received on a bill adds stock", func(t *testing.T) {
		handler, repo := newHandler()
		doc := stockDocument(t, companyID, accounting.DocumentKindBill, productID, 5)

		err := handler.Handle(ctx, accounting.NewBillGoodsReceivedEvent(doc))
		require.NoError(t, err)

		stock, err := repo.FindByProduct(ctx, companyID, productID)
		require.NoError(t, err)
		assert.True(t, stock.QuantityOnHand.Equal(decimal.NewFromInt(5)))

		movements, err := repo.FindMovementsByDocument(ctx, doc.ID)
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, domaininventory.MovementDirectionAddition, movements[0].Direction)
	})

	t.Run("approved invoice subtracts stock", func(t *testing.T) {
		handler, repo := newHandler()
		bill := stockDocument(t, companyID, accounting.DocumentKindBill, productID, 5)
		require.NoError(t, handler.Handle(ctx, accounting.NewBillGoodsReceivedEvent(bill)))

		invoice := stockDocument(t, companyID, accounting.DocumentKindInvoice, productID, 2)
		err := handler.Handle(ctx, accounting.NewDocumentApprovedEvent(invoice))
		require.NoError(t, err)

		stock, err := repo.FindByProduct(ctx, companyID, productID)
		require.NoError(t, err)
		assert.True(t, stock.QuantityOnHand.Equal(decimal.NewFromInt(3)))
	})

	t.Run("shipping more than on hand fails", func(t *testing.T) {
		handler, _ := newHandler()
		bill := stockDocument(t, companyID, accounting.DocumentKindBill, productID, 1)
		require.NoError(t, handler.Handle(ctx, accounting.NewBillGoodsReceivedEvent(bill)))

		invoice := stockDocument(t, companyID, accounting.DocumentKindInvoice, productID, 2)
		err := handler.Handle(ctx, accounting.NewDocumentApprovedEvent(invoice))
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("approved orders are ignored", func(t *testing.T) {
		handler, repo := newHandler()
		order := stockDocument(t, companyID, accounting.DocumentKindOrder, productID, 4)

		err := handler.Handle(ctx, accounting.NewDocumentApprovedEvent(order))
		require.NoError(t, err)
		assert.Empty(t, repo.movements)
	})

	t.Run("service lines without a product are skipped", func(t *testing.T) {
		handler, repo := newHandler()
		doc, err := accounting.NewDocument(companyID, accounting.DocumentKindBill, "BILL-000002", uuid.New(), valueobject.USD, time.Now())
		require.NoError(t, err)
		_, err = doc.AddLineItem("Freight", decimal.NewFromInt(1),
			valueobject.MustNewMoney(2500, valueobject.USD), uuid.New(), nil)
		require.NoError(t, err)

		require.NoError(t, handler.Handle(ctx, accounting.NewBillGoodsReceivedEvent(doc)))
		assert.Empty(t, repo.movements)
	})
}
