package accounting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/books/backend/internal/domain/accounting"
	"github.com/books/backend/internal/domain/ledger"
	"github.com/books/backend/internal/domain/shared"
	"github.com/books/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PostingService owns the ledger side of the document lifecycle:
// the initial journal transaction for posted bills and invoices,
// payment recording, and the payment status recomputation that keeps
// documents consistent with their transactions. Every mutating
// operation runs inside one unit of work; events publish after the
// commit.
type PostingService struct {
	txnRepo        ledger.TransactionRepository
	docRepo        accounting.DocumentRepository
	accounts       ledger.AccountResolver
	builder        *ledger.JournalBuilder
	converter      ledger.CurrencyConverter
	ledgerCurrency valueobject.Currency
	uow            shared.UnitOfWork
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPostingService creates a new PostingService. The ledger currency
// is the company default all journal legs are expressed in.
func NewPostingService(txnRepo ledger.TransactionRepository, docRepo accounting.DocumentRepository, accounts ledger.AccountResolver, converter ledger.CurrencyConverter, ledgerCurrency valueobject.Currency, uow shared.UnitOfWork, logger *zap.Logger) *PostingService {
	return &PostingService{
		txnRepo:        txnRepo,
		docRepo:        docRepo,
		accounts:       accounts,
		builder:        ledger.NewJournalBuilder(converter),
		converter:      converter,
		ledgerCurrency: ledgerCurrency,
		uow:            uow,
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PostingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// PostInitialTransaction builds and persists the journal transaction
// for a freshly approved bill or invoice. An unbalanced journal or a
// missing currency rate aborts the whole posting.
func (s *PostingService) PostInitialTransaction(ctx context.Context, doc *accounting.Document) (*TransactionResponse, error) {
	var txn *ledger.Transaction
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		txn, err = s.postInitialTransaction(ctx, doc)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publishTransactionPosted(ctx, txn)

	response := ToTransactionResponse(txn)
	return &response, nil
}

// postInitialTransaction does the resolve/build/save work within the
// caller's unit of work. The caller publishes the posted event once
// its transaction has committed.
func (s *PostingService) postInitialTransaction(ctx context.Context, doc *accounting.Document) (*ledger.Transaction, error) {
	accounts, err := s.accounts.ResolvePostingAccounts(ctx, doc.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("resolve posting accounts: %w", err)
	}

	txn, err := s.builder.BuildInitialTransaction(ctx, doc, accounts, s.ledgerCurrency)
	if err != nil {
		return nil, err
	}

	if err := s.txnRepo.Save(ctx, txn); err != nil {
		return nil, fmt.Errorf("save journal transaction: %w", err)
	}

	s.logger.Info("Journal transaction posted",
		zap.String("document_id", doc.ID.String()),
		zap.String("transaction_id", txn.ID.String()),
		zap.Int64("amount_cents", txn.Amount.Amount()))
	return txn, nil
}

// UpdateInitialTransaction deletes and re-posts the journal transaction
// after a posted document's totals changed. Re-posting from scratch
// keeps the legs consistent with the current line items; patching legs
// in place would drift.
func (s *PostingService) UpdateInitialTransaction(ctx context.Context, documentID uuid.UUID) (*TransactionResponse, error) {
	var txn *ledger.Transaction
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		doc, err := s.docRepo.FindByIDForUpdate(ctx, documentID)
		if err != nil {
			return err
		}

		existing, err := s.txnRepo.FindJournalByDocumentID(ctx, documentID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			if err := s.txnRepo.Delete(ctx, existing.ID); err != nil {
				return fmt.Errorf("delete stale journal transaction: %w", err)
			}
		}

		txn, err = s.postInitialTransaction(ctx, doc)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publishTransactionPosted(ctx, txn)

	response := ToTransactionResponse(txn)
	return &response, nil
}

// RecordPayment records a payment against a bill or invoice. Amounts in
// a foreign bank account currency are converted into the document
// currency before posting; the document's payment status is recomputed
// from the full remaining transaction set, in the same transaction as
// the payment save.
func (s *PostingService) RecordPayment(ctx context.Context, companyID uuid.UUID, req RecordPaymentRequest) (*TransactionResponse, error) {
	var doc *accounting.Document
	var txn *ledger.Transaction
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.docRepo.FindByIDForUpdate(ctx, req.DocumentID)
		if err != nil {
			return err
		}
		if doc.CompanyID != companyID {
			return shared.ErrNotFound
		}
		if !doc.AcceptsPayments() {
			return shared.NewDomainError("ILLEGAL_TRANSITION", fmt.Sprintf("Cannot record payments against a %s document", doc.Status))
		}

		amountCents, err := s.converter.Convert(ctx, req.AmountCents, valueobject.Currency(req.Currency), doc.Currency)
		if err != nil {
			return err
		}

		txnType := ledger.TransactionTypeDeposit
		if doc.Kind == accounting.DocumentKindBill {
			txnType = ledger.TransactionTypeWithdrawal
		}

		txn, err = ledger.NewPaymentTransaction(doc.CompanyID, txnType,
			valueobject.MustNewMoney(amountCents, doc.Currency), req.PostedAt,
			req.BankAccountID, doc.ID, req.Description)
		if err != nil {
			return err
		}

		if err := s.txnRepo.Save(ctx, txn); err != nil {
			return fmt.Errorf("save payment transaction: %w", err)
		}

		return s.recomputePaymentStatus(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	s.publishTransactionPosted(ctx, txn)
	s.publishDocumentEvents(ctx, doc)

	s.logger.Info("Payment recorded",
		zap.String("document_id", doc.ID.String()),
		zap.String("transaction_id", txn.ID.String()),
		zap.Int64("amount_cents", txn.Amount.Amount()),
		zap.String("status", doc.Status.String()))

	response := ToTransactionResponse(txn)
	return &response, nil
}

// DeleteTransaction removes a transaction and recomputes the owning
// document's payment status from the remaining set
func (s *PostingService) DeleteTransaction(ctx context.Context, transactionID uuid.UUID) error {
	var doc *accounting.Document
	var txn *ledger.Transaction
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		txn, err = s.txnRepo.FindByID(ctx, transactionID)
		if err != nil {
			return err
		}

		if err := s.txnRepo.Delete(ctx, transactionID); err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}

		if txn.DocumentID == nil {
			return nil
		}
		doc, err = s.docRepo.FindByIDForUpdate(ctx, *txn.DocumentID)
		if err != nil {
			return err
		}
		if !doc.Kind.HasPaymentAxis() {
			return nil
		}
		return s.recomputePaymentStatus(ctx, doc)
	})
	if err != nil {
		return err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, ledger.NewTransactionDeletedEvent(txn)); err != nil {
			s.logger.Error("Failed to publish transaction deleted event", zap.Error(err))
		}
	}
	if doc != nil {
		s.publishDocumentEvents(ctx, doc)
	}
	return nil
}

// DeleteTransactionsForDocument removes every transaction referencing a
// document, part of the document deletion cascade
func (s *PostingService) DeleteTransactionsForDocument(ctx context.Context, documentID uuid.UUID) error {
	if err := s.txnRepo.DeleteByDocumentID(ctx, documentID); err != nil {
		return fmt.Errorf("delete transactions for document: %w", err)
	}
	return nil
}

// RecomputePaymentStatus re-derives a document's paid amount and status
// from its remaining payment transactions. Always a full re-sum, never
// an incremental adjustment.
func (s *PostingService) RecomputePaymentStatus(ctx context.Context, documentID uuid.UUID) error {
	var doc *accounting.Document
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.docRepo.FindByIDForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		if !doc.Kind.HasPaymentAxis() {
			doc = nil
			return nil
		}
		return s.recomputePaymentStatus(ctx, doc)
	})
	if err != nil {
		return err
	}
	if doc != nil {
		s.publishDocumentEvents(ctx, doc)
	}
	return nil
}

func (s *PostingService) recomputePaymentStatus(ctx context.Context, doc *accounting.Document) error {
	payments, err := s.txnRepo.FindPaymentsByDocumentID(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("load payments: %w", err)
	}

	var paid int64
	var latest *time.Time
	for i := range payments {
		paid += payments[i].SignedPaymentAmount()
		if latest == nil || payments[i].PostedAt.After(*latest) {
			postedAt := payments[i].PostedAt
			latest = &postedAt
		}
	}
	if doc.Kind == accounting.DocumentKindBill {
		// Bills settle through withdrawals; flip the sign so paid is
		// positive money out.
		paid = -paid
	}

	if err := doc.ApplyPaymentTotals(paid, latest); err != nil {
		return err
	}
	if err := s.docRepo.Save(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func (s *PostingService) publishDocumentEvents(ctx context.Context, doc *accounting.Document) {
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

func (s *PostingService) publishTransactionPosted(ctx context.Context, txn *ledger.Transaction) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, ledger.NewTransactionPostedEvent(txn)); err != nil {
		s.logger.Error("Failed to publish transaction posted event",
			zap.String("transaction_id", txn.ID.String()),
			zap.Error(err))
	}
}
