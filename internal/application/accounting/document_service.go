package accounting

import (
	"context"
	"fmt"
	"time"

	"github.com/books/backend/internal/domain/accounting"
	"github.com/books/backend/internal/domain/ledger"
	"github.com/books/backend/internal/domain/shared"
	"github.com/books/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DocumentService drives the document lifecycle: creation, line item
// mutation, posting, conversion and deletion. Every mutating operation
// runs inside one unit of work, so number draw, journal posting and the
// document save commit or roll back together; side effects travel as
// post-commit domain events.
type DocumentService struct {
	docRepo        accounting.DocumentRepository
	adjustmentRepo accounting.AdjustmentRepository
	posting        *PostingService
	uow            shared.UnitOfWork
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(docRepo accounting.DocumentRepository, adjustmentRepo accounting.AdjustmentRepository, posting *PostingService, uow shared.UnitOfWork, logger *zap.Logger) *DocumentService {
	return &DocumentService{
		docRepo:        docRepo,
		adjustmentRepo: adjustmentRepo,
		posting:        posting,
		uow:            uow,
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *DocumentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new draft document with its line items. The number
// draw and the save share one transaction, so concurrent creates
// cannot end up with the same number.
func (s *DocumentService) Create(ctx context.Context, companyID uuid.UUID, req CreateDocumentRequest) (*DocumentResponse, error) {
	var doc *accounting.Document
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		kind := accounting.DocumentKind(req.Kind)
		number, err := s.docRepo.NextNumber(ctx, companyID, kind)
		if err != nil {
			return fmt.Errorf("generate document number: %w", err)
		}

		doc, err = accounting.NewDocument(companyID, kind, number, req.CounterpartyID, valueobject.Currency(req.Currency), req.IssueDate)
		if err != nil {
			return err
		}
		if req.DueDate != nil {
			doc.SetDueDate(*req.DueDate)
		}
		if req.ExpirationDate != nil {
			doc.SetExpirationDate(*req.ExpirationDate)
		}

		for _, item := range req.Items {
			if err := s.addItem(ctx, doc, item); err != nil {
				return err
			}
		}

		if req.DiscountMethod != "" {
			rate := valueobject.Rate{}
			if req.DiscountRate != nil {
				rate, err = rateFromRequest(req.DiscountRate.Computation, req.DiscountRate.Percent, req.DiscountRate.AmountCents)
				if err != nil {
					return err
				}
			}
			if err := doc.SetDiscount(accounting.DiscountMethod(req.DiscountMethod), rate); err != nil {
				return err
			}
		}

		if err := s.docRepo.Save(ctx, doc); err != nil {
			return fmt.Errorf("save document: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, doc)

	s.logger.Info("Document created",
		zap.String("document_id", doc.ID.String()),
		zap.String("kind", doc.Kind.String()),
		zap.String("number", doc.Number))

	response := ToDocumentResponse(doc)
	return &response, nil
}

// GetByID retrieves a document, re-deriving its lazy statuses
func (s *DocumentService) GetByID(ctx context.Context, companyID, documentID uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.docRepo.FindByIDForCompany(ctx, companyID, documentID)
	if err != nil {
		return nil, err
	}
	doc.RefreshDerivedStatus(time.Now())

	response := ToDocumentResponse(doc)
	return &response, nil
}

// AddLineItem adds a line item to a draft document
func (s *DocumentService) AddLineItem(ctx context.Context, documentID uuid.UUID, req CreateLineItemRequest) (*DocumentResponse, error) {
	return s.mutate(ctx, documentID, func(doc *accounting.Document) error {
		return s.addItem(ctx, doc, req)
	})
}

// UpdateLineItem updates quantity, price or adjustments of a line item
func (s *DocumentService) UpdateLineItem(ctx context.Context, documentID, itemID uuid.UUID, req UpdateLineItemRequest) (*DocumentResponse, error) {
	return s.mutate(ctx, documentID, func(doc *accounting.Document) error {
		if req.Quantity != nil {
			if err := doc.UpdateItemQuantity(itemID, *req.Quantity); err != nil {
				return err
			}
		}
		if req.UnitPriceCents != nil {
			price := valueobject.MustNewMoney(*req.UnitPriceCents, doc.Currency)
			if err := doc.UpdateItemPrice(itemID, price); err != nil {
				return err
			}
		}
		if req.AdjustmentIDs != nil {
			adjustments, err := s.resolveAdjustments(ctx, req.AdjustmentIDs)
			if err != nil {
				return err
			}
			if err := doc.ReplaceItemAdjustments(itemID, adjustments); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveLineItem removes a line item from a draft document
func (s *DocumentService) RemoveLineItem(ctx context.Context, documentID, itemID uuid.UUID) (*DocumentResponse, error) {
	return s.mutate(ctx, documentID, func(doc *accounting.Document) error {
		return doc.RemoveLineItem(itemID)
	})
}

// SetDiscount configures the document-level discount
func (s *DocumentService) SetDiscount(ctx context.Context, documentID uuid.UUID, method string, rateReq *DiscountRateRequest) (*DocumentResponse, error) {
	return s.mutate(ctx, documentID, func(doc *accounting.Document) error {
		rate := valueobject.Rate{}
		if rateReq != nil {
			var err error
			rate, err = rateFromRequest(rateReq.Computation, rateReq.Percent, rateReq.AmountCents)
			if err != nil {
				return err
			}
		}
		return doc.SetDiscount(accounting.DiscountMethod(method), rate)
	})
}

// Approve posts the document. Bills and invoices additionally get their
// initial journal transaction; journal and document commit together, so
// a failure on either side leaves neither behind.
func (s *DocumentService) Approve(ctx context.Context, documentID uuid.UUID) (*DocumentResponse, error) {
	var doc *accounting.Document
	var txn *ledger.Transaction
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.docRepo.FindByIDForUpdate(ctx, documentID)
		if err != nil {
			return err
		}

		if err := doc.Approve(); err != nil {
			return err
		}

		if doc.Kind.HasPaymentAxis() {
			txn, err = s.posting.postInitialTransaction(ctx, doc)
			if err != nil {
				return err
			}
		}

		if err := s.docRepo.Save(ctx, doc); err != nil {
			return fmt.Errorf("save document: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if txn != nil {
		s.posting.publishTransactionPosted(ctx, txn)
	}
	s.publishEvents(ctx, doc)

	s.logger.Info("Document approved",
		zap.String("document_id", doc.ID.String()),
		zap.String("number", doc.Number),
		zap.Int64("total_cents", doc.Total.Amount()))

	response := ToDocumentResponse(doc)
	return &response, nil
}

// MarkAsSent records the document as sent
func (s *DocumentService) MarkAsSent(ctx context.Context, documentID uuid.UUID) (*DocumentResponse, error) {
	return s.transition(ctx, documentID, (*accounting.Document).MarkAsSent)
}

// MarkAsViewed records the document as viewed
func (s *DocumentService) MarkAsViewed(ctx context.Context, documentID uuid.UUID) (*DocumentResponse, error) {
	return s.transition(ctx, documentID, (*accounting.Document).MarkAsViewed)
}

// MarkAsAccepted records counterparty acceptance
func (s *DocumentService) MarkAsAccepted(ctx context.Context, documentID uuid.UUID) (*DocumentResponse, error) {
	return s.transition(ctx, documentID, (*accounting.Document).MarkAsAccepted)
}

// MarkAsDeclined records counterparty rejection
func (s *DocumentService) MarkAsDeclined(ctx context.Context, documentID uuid.UUID) (*DocumentResponse, error) {
	return s.transition(ctx, documentID, (*accounting.Document).MarkAsDeclined)
}

// MarkGoodsReceived stamps goods receipt on a bill and emits the stock
// addition event
func (s *DocumentService) MarkGoodsReceived(ctx context.Context, documentID uuid.UUID) (*DocumentResponse, error) {
	return s.transition(ctx, documentID, (*accounting.Document).MarkGoodsReceived)
}

// Void voids a bill or invoice
func (s *DocumentService) Void(ctx context.Context, documentID uuid.UUID) (*DocumentResponse, error) {
	return s.transition(ctx, documentID, (*accounting.Document).Void)
}

// Convert converts an accepted order into a bill or an accepted
// estimate into an invoice, persisting both sides in one transaction
func (s *DocumentService) Convert(ctx context.Context, documentID uuid.UUID) (*DocumentResponse, error) {
	var doc, converted *accounting.Document
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.docRepo.FindByIDForUpdate(ctx, documentID)
		if err != nil {
			return err
		}

		target := doc.Kind.ConversionTarget()
		if target == "" {
			return shared.NewDomainError("ILLEGAL_TRANSITION", fmt.Sprintf("%s documents cannot be converted", doc.Kind))
		}
		targetNumber, err := s.docRepo.NextNumber(ctx, doc.CompanyID, target)
		if err != nil {
			return fmt.Errorf("generate document number: %w", err)
		}

		converted, err = doc.ConvertTo(targetNumber)
		if err != nil {
			return err
		}

		if err := s.docRepo.Save(ctx, converted); err != nil {
			return fmt.Errorf("save converted document: %w", err)
		}
		if err := s.docRepo.Save(ctx, doc); err != nil {
			return fmt.Errorf("save source document: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, doc)
	s.publishEvents(ctx, converted)

	s.logger.Info("Document converted",
		zap.String("source_id", doc.ID.String()),
		zap.String("target_id", converted.ID.String()),
		zap.String("target_kind", converted.Kind.String()))

	response := ToDocumentResponse(converted)
	return &response, nil
}

// Replicate creates a fresh draft copy of the document
func (s *DocumentService) Replicate(ctx context.Context, documentID uuid.UUID) (*DocumentResponse, error) {
	var replica *accounting.Document
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		doc, err := s.docRepo.FindByID(ctx, documentID)
		if err != nil {
			return err
		}

		number, err := s.docRepo.NextNumber(ctx, doc.CompanyID, doc.Kind)
		if err != nil {
			return fmt.Errorf("generate document number: %w", err)
		}

		replica, err = doc.Replicate(number, time.Now())
		if err != nil {
			return err
		}
		if err := s.docRepo.Save(ctx, replica); err != nil {
			return fmt.Errorf("save replica: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, replica)

	response := ToDocumentResponse(replica)
	return &response, nil
}

// Delete removes a document with its line items and transactions
func (s *DocumentService) Delete(ctx context.Context, documentID uuid.UUID) error {
	var number string
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		doc, err := s.docRepo.FindByIDForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		number = doc.Number

		if err := s.posting.DeleteTransactionsForDocument(ctx, documentID); err != nil {
			return err
		}
		if err := s.docRepo.Delete(ctx, documentID); err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Document deleted",
		zap.String("document_id", documentID.String()),
		zap.String("number", number))

	return nil
}

// AllocateDiscount returns the per-line slices of the document-level
// discount, in document currency
func (s *DocumentService) AllocateDiscount(ctx context.Context, documentID uuid.UUID) ([]DiscountAllocationResponse, error) {
	doc, err := s.docRepo.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	allocations := accounting.AllocateDocumentDiscount(doc.LineItems, doc.DocumentDiscount())
	out := make([]DiscountAllocationResponse, len(allocations))
	for i, a := range allocations {
		out[i] = DiscountAllocationResponse{LineItemID: a.LineItemID, AmountCents: a.Amount}
	}
	return out, nil
}

func (s *DocumentService) addItem(ctx context.Context, doc *accounting.Document, req CreateLineItemRequest) error {
	adjustments, err := s.resolveAdjustments(ctx, req.AdjustmentIDs)
	if err != nil {
		return err
	}

	item, err := doc.AddLineItem(req.Description, req.Quantity,
		valueobject.MustNewMoney(req.UnitPriceCents, doc.Currency), req.PostingAccountID, adjustments)
	if err != nil {
		return err
	}
	if req.ProductID != nil {
		doc.GetItem(item.ID).ProductID = req.ProductID
	}
	return nil
}

func (s *DocumentService) resolveAdjustments(ctx context.Context, ids []uuid.UUID) ([]accounting.Adjustment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	adjustments, err := s.adjustmentRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve adjustments: %w", err)
	}
	if len(adjustments) != len(ids) {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "One or more adjustments do not exist")
	}
	return adjustments, nil
}

// mutate loads the document under a row lock, applies fn, recomputes
// and saves, all within one unit of work
func (s *DocumentService) mutate(ctx context.Context, documentID uuid.UUID, fn func(*accounting.Document) error) (*DocumentResponse, error) {
	var doc *accounting.Document
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.docRepo.FindByIDForUpdate(ctx, documentID)
		if err != nil {
			return err
		}

		if err := fn(doc); err != nil {
			return err
		}

		if err := s.docRepo.Save(ctx, doc); err != nil {
			return fmt.Errorf("save document: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, doc)

	response := ToDocumentResponse(doc)
	return &response, nil
}

func (s *DocumentService) transition(ctx context.Context, documentID uuid.UUID, fn func(*accounting.Document) error) (*DocumentResponse, error) {
	return s.mutate(ctx, documentID, fn)
}

// publishEvents publishes the aggregate's buffered events after the
// save has committed. Publish failures are logged, not propagated; the
// financial state is already durable.
func (s *DocumentService) publishEvents(ctx context.Context, doc *accounting.Document) {
	if s.eventPublisher == nil {
		return
	}
	events := doc.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish domain events",
			zap.String("document_id", doc.ID.String()),
			zap.Error(err))
	}
	doc.ClearDomainEvents()
}

// rateFromRequest builds a Rate value object from API fields
func rateFromRequest(computation string, percent decimal.Decimal, amountCents int64) (valueobject.Rate, error) {
	switch valueobject.Computation(computation) {
	case valueobject.ComputationPercentage:
		return valueobject.NewPercentageRateFromDecimal(percent), nil
	case valueobject.ComputationFixed:
		return valueobject.NewFixedRate(amountCents), nil
	}
	return valueobject.Rate{}, shared.NewDomainError("VALIDATION_ERROR", "Rate computation is not valid")
}
