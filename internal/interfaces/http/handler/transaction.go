package handler

import (
	accountingapp "github.com/books/backend/internal/application/accounting"
	"github.com/gin-gonic/gin"
)

// TransactionHandler handles payment and ledger API endpoints
type TransactionHandler struct {
	BaseHandler
	postingService *accountingapp.PostingService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(postingService *accountingapp.PostingService) *TransactionHandler {
	return &TransactionHandler{postingService: postingService}
}

// RegisterRoutes registers transaction routes on the given group
func (h *TransactionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments", h.RecordPayment)
	rg.DELETE("/transactions/:id", h.DeleteTransaction)
	rg.POST("/documents/:id/journal/refresh", h.RefreshJournal)
}

// RecordPayment records a payment against a bill or invoice
func (h *TransactionHandler) RecordPayment(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req accountingapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	txn, err := h.postingService.RecordPayment(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, txn)
}

// RefreshJournal deletes and re-posts the journal transaction for a
// document whose totals changed after posting
func (h *TransactionHandler) RefreshJournal(c *gin.Context) {
	documentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	txn, err := h.postingService.UpdateInitialTransaction(c.Request.Context(), documentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, txn)
}

// DeleteTransaction deletes a payment and recomputes the document's
// payment status
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	transactionID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	if err := h.postingService.DeleteTransaction(c.Request.Context(), transactionID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
