package inventory

import (
	"context"
	"fmt"

	"github.com/books/backend/internal/domain/accounting"
	"github.com/books/backend/internal/domain/inventory"
	"github.com/books/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockSyncHandler subscribes to document lifecycle events and keeps
// inventory quantities in sync: goods received on a bill add stock,
// an approved invoice ships and subtracts it.
//
// The handler runs after the financial posting has committed. A stock
// failure here is logged and returned for reconciliation but never
// rolls the posting back; ledger and stock are separate transaction
// scopes on purpose.
type StockSyncHandler struct {
	stockService *inventory.StockMovementService
	logger       *zap.Logger
}

// NewStockSyncHandler creates a stock sync handler
func NewStockSyncHandler(stockService *inventory.StockMovementService, logger *zap.Logger) *StockSyncHandler {
	return &StockSyncHandler{
		stockService: stockService,
		logger:       logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *StockSyncHandler) EventTypes() []string {
	return []string{
		accounting.EventTypeBillGoodsReceived,
		accounting.EventTypeDocumentApproved,
	}
}

// Handle processes a document lifecycle event
func (h *StockSyncHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *accounting.BillGoodsReceivedEvent:
		return h.handleGoodsReceived(ctx, e)
	case *accounting.DocumentApprovedEvent:
		if e.DocumentKind != accounting.DocumentKindInvoice.String() {
			return nil
		}
		return h.handleInvoiceApproved(ctx, e)
	}
	return nil
}

func (h *StockSyncHandler) handleGoodsReceived(ctx context.Context, event *accounting.BillGoodsReceivedEvent) error {
	for _, item := range event.Items {
		if item.ProductID == nil {
			continue // service lines carry no stock
		}
		_, err := h.stockService.RecordAddition(ctx, event.CompanyID(), *item.ProductID, &event.DocumentID, item.Quantity)
		if err != nil {
			h.logger.Error("Stock addition failed",
				zap.String("document_id", event.DocumentID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err))
			return fmt.Errorf("add stock for product %s: %w", item.ProductID, err)
		}
	}

	h.logger.Info("Stock additions recorded",
		zap.String("document_id", event.DocumentID.String()),
		zap.String("document_number", event.DocumentNumber))
	return nil
}

func (h *StockSyncHandler) handleInvoiceApproved(ctx context.Context, event *accounting.DocumentApprovedEvent) error {
	for _, item := range event.Items {
		if item.ProductID == nil {
			continue
		}
		_, err := h.stockService.RecordSubtraction(ctx, event.CompanyID(), *item.ProductID, &event.DocumentID, item.Quantity)
		if err != nil {
			// The invoice posting has already committed; surface the
			// shortfall as a reconciliation task.
			h.logger.Error("Stock subtraction failed",
				zap.String("document_id", event.DocumentID.String()),
				zap.String("product_id", item.ProductID.String()),
				zap.Error(err))
			return fmt.Errorf("subtract stock for product %s: %w", item.ProductID, err)
		}
	}

	h.logger.Info("Stock subtractions recorded",
		zap.String("document_id", event.DocumentID.String()),
		zap.String("document_number", event.DocumentNumber))
	return nil
}
