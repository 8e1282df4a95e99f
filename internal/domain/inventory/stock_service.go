package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/books/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockMovementService applies inventory quantity changes driven by
// document lifecycle events: additions when a bill's goods arrive,
// subtractions when an invoice ships. It runs in its own transaction
// scope, after the financial posting has committed; a stock failure
// here never rolls the posting back.
type StockMovementService struct {
	repo StockRepository
}

// NewStockMovementService creates a stock movement service
func NewStockMovementService(repo StockRepository) *StockMovementService {
	return &StockMovementService{repo: repo}
}

// RecordAddition adds quantity to a product's stock, creating the stock
// record on first receipt
func (s *StockMovementService) RecordAddition(ctx context.Context, companyID, productID uuid.UUID, documentID *uuid.UUID, quantity decimal.Decimal) (*StockMovement, error) {
	stock, err := s.repo.FindByProductForUpdate(ctx, companyID, productID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("load stock for product %s: %w", productID, err)
		}
		stock, err = NewProductStock(companyID, productID)
		if err != nil {
			return nil, err
		}
	}

	if err := stock.Add(quantity); err != nil {
		return nil, err
	}

	movement, err := NewStockMovement(companyID, productID, documentID, MovementDirectionAddition, quantity)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveStock(ctx, stock); err != nil {
		return nil, fmt.Errorf("save stock for product %s: %w", productID, err)
	}
	if err := s.repo.SaveMovement(ctx, movement); err != nil {
		return nil, fmt.Errorf("save stock movement: %w", err)
	}

	return movement, nil
}

// RecordSubtraction removes quantity from a product's stock. Fails with
// shared.ErrInsufficientStock when not enough is on hand; the caller
// surfaces the failure but must not undo the committed financial
// posting that triggered it.
func (s *StockMovementService) RecordSubtraction(ctx context.Context, companyID, productID uuid.UUID, documentID *uuid.UUID, quantity decimal.Decimal) (*StockMovement, error) {
	stock, err := s.repo.FindByProductForUpdate(ctx, companyID, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInsufficientStock
		}
		return nil, fmt.Errorf("load stock for product %s: %w", productID, err)
	}

	if err := stock.Subtract(quantity); err != nil {
		return nil, err
	}

	movement, err := NewStockMovement(companyID, productID, documentID, MovementDirectionSubtraction, quantity)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveStock(ctx, stock); err != nil {
		return nil, fmt.Errorf("save stock for product %s: %w", productID, err)
	}
	if err := s.repo.SaveMovement(ctx, movement); err != nil {
		return nil, fmt.Errorf("save stock movement: %w", err)
	}

	return movement, nil
}
