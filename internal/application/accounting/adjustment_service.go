package accounting

import (
	"context"
	"fmt"

	"github.com/books/backend/internal/domain/accounting"
	"github.com/books/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AdjustmentService manages tax and discount rules. Rules referenced by
// posted documents are immutable; edits must go through reversal and a
// new rule. Mutations run inside a unit of work so the reference check
// and the write see the same state.
type AdjustmentService struct {
	adjustmentRepo accounting.AdjustmentRepository
	uow            shared.UnitOfWork
	logger         *zap.Logger
}

// NewAdjustmentService creates a new AdjustmentService
func NewAdjustmentService(adjustmentRepo accounting.AdjustmentRepository, uow shared.UnitOfWork, logger *zap.Logger) *AdjustmentService {
	return &AdjustmentService{
		adjustmentRepo: adjustmentRepo,
		uow:            uow,
		logger:         logger,
	}
}

// Create creates a new adjustment rule in pending status
func (s *AdjustmentService) Create(ctx context.Context, companyID uuid.UUID, req CreateAdjustmentRequest) (*AdjustmentResponse, error) {
	rate, err := rateFromRequest(req.Computation, req.Percent, req.AmountCents)
	if err != nil {
		return nil, err
	}

	adj, err := accounting.NewAdjustment(companyID, req.Name,
		accounting.AdjustmentCategory(req.Category), accounting.AdjustmentType(req.Type),
		rate, accounting.AdjustmentScope(req.Scope))
	if err != nil {
		return nil, err
	}
	adj.Description = req.Description
	adj.Recoverable = req.Recoverable
	if req.AccountID != nil {
		adj.SetAccount(*req.AccountID)
	}

	err = s.uow.Execute(ctx, func(ctx context.Context) error {
		return s.adjustmentRepo.Save(ctx, adj)
	})
	if err != nil {
		return nil, fmt.Errorf("save adjustment: %w", err)
	}

	s.logger.Info("Adjustment created",
		zap.String("adjustment_id", adj.ID.String()),
		zap.String("name", adj.Name),
		zap.String("category", adj.Category.String()))

	response := ToAdjustmentResponse(adj)
	return &response, nil
}

// GetByID retrieves an adjustment rule
func (s *AdjustmentService) GetByID(ctx context.Context, adjustmentID uuid.UUID) (*AdjustmentResponse, error) {
	adj, err := s.adjustmentRepo.FindByID(ctx, adjustmentID)
	if err != nil {
		return nil, err
	}
	response := ToAdjustmentResponse(adj)
	return &response, nil
}

// ListActive lists the approved adjustments for a company
func (s *AdjustmentService) ListActive(ctx context.Context, companyID uuid.UUID) ([]AdjustmentResponse, error) {
	adjustments, err := s.adjustmentRepo.FindActiveForCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	out := make([]AdjustmentResponse, len(adjustments))
	for i := range adjustments {
		out[i] = ToAdjustmentResponse(&adjustments[i])
	}
	return out, nil
}

// Approve activates an adjustment rule
func (s *AdjustmentService) Approve(ctx context.Context, adjustmentID uuid.UUID) (*AdjustmentResponse, error) {
	return s.mutate(ctx, adjustmentID, func(_ context.Context, adj *accounting.Adjustment) error {
		return adj.Approve()
	})
}

// Reverse retires an adjustment rule. Reversal is the only mutation
// allowed once the rule is referenced by a posted document.
func (s *AdjustmentService) Reverse(ctx context.Context, adjustmentID uuid.UUID) (*AdjustmentResponse, error) {
	resp, err := s.mutate(ctx, adjustmentID, func(_ context.Context, adj *accounting.Adjustment) error {
		return adj.Reverse()
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Adjustment reversed", zap.String("adjustment_id", adjustmentID.String()))
	return resp, nil
}

// UpdateRate changes the rate of an unreferenced adjustment. Referenced
// rules are frozen; changing a rate under a posted document would
// silently rewrite history.
func (s *AdjustmentService) UpdateRate(ctx context.Context, adjustmentID uuid.UUID, req DiscountRateRequest) (*AdjustmentResponse, error) {
	rate, err := rateFromRequest(req.Computation, req.Percent, req.AmountCents)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, adjustmentID, func(ctx context.Context, adj *accounting.Adjustment) error {
		referenced, err := s.isReferenced(ctx, adjustmentID)
		if err != nil {
			return err
		}
		if referenced {
			return shared.NewDomainError("VALIDATION_ERROR", "Adjustment is referenced by posted documents and cannot be changed")
		}
		adj.Rate = rate
		return nil
	})
}

// Delete removes an unreferenced adjustment rule
func (s *AdjustmentService) Delete(ctx context.Context, adjustmentID uuid.UUID) error {
	return s.uow.Execute(ctx, func(ctx context.Context) error {
		referenced, err := s.isReferenced(ctx, adjustmentID)
		if err != nil {
			return err
		}
		if referenced {
			return shared.NewDomainError("VALIDATION_ERROR", "Adjustment is referenced by posted documents and cannot be deleted")
		}
		return s.adjustmentRepo.Delete(ctx, adjustmentID)
	})
}

func (s *AdjustmentService) isReferenced(ctx context.Context, adjustmentID uuid.UUID) (bool, error) {
	referenced, err := s.adjustmentRepo.IsReferenced(ctx, adjustmentID)
	if err != nil {
		return false, fmt.Errorf("check adjustment references: %w", err)
	}
	return referenced, nil
}

// mutate loads the rule, applies fn and saves, all within one unit of
// work
func (s *AdjustmentService) mutate(ctx context.Context, adjustmentID uuid.UUID, fn func(context.Context, *accounting.Adjustment) error) (*AdjustmentResponse, error) {
	var adj *accounting.Adjustment
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		adj, err = s.adjustmentRepo.FindByID(ctx, adjustmentID)
		if err != nil {
			return err
		}
		if err := fn(ctx, adj); err != nil {
			return err
		}
		if err := s.adjustmentRepo.Save(ctx, adj); err != nil {
			return fmt.Errorf("save adjustment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	response := ToAdjustmentResponse(adj)
	return &response, nil
}
