package handler

import (
	"context"

	accountingapp "github.com/books/backend/internal/application/accounting"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentHandler handles document-related API endpoints
type DocumentHandler struct {
	BaseHandler
	documentService *accountingapp.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *accountingapp.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// RegisterRoutes registers document routes on the given group
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	docs := rg.Group("/documents")
	docs.POST("", h.Create)
	docs.GET("/:id", h.GetByID)
	docs.DELETE("/:id", h.Delete)
	docs.POST("/:id/items", h.AddLineItem)
	docs.PUT("/:id/items/:itemID", h.UpdateLineItem)
	docs.DELETE("/:id/items/:itemID", h.RemoveLineItem)
	docs.PUT("/:id/discount", h.SetDiscount)
	docs.GET("/:id/discount/allocation", h.AllocateDiscount)
	docs.POST("/:id/approve", h.Approve)
	docs.POST("/:id/send", h.MarkAsSent)
	docs.POST("/:id/view", h.MarkAsViewed)
	docs.POST("/:id/accept", h.MarkAsAccepted)
	docs.POST("/:id/decline", h.MarkAsDeclined)
	docs.POST("/:id/receive-goods", h.MarkGoodsReceived)
	docs.POST("/:id/void", h.Void)
	docs.POST("/:id/convert", h.Convert)
	docs.POST("/:id/replicate", h.Replicate)
}

// Create creates a new draft document
func (h *DocumentHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req accountingapp.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.documentService.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, doc)
}

// GetByID retrieves a document by ID
func (h *DocumentHandler) GetByID(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	documentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	doc, err := h.documentService.GetByID(c.Request.Context(), companyID, documentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// Delete deletes a document and its posted transactions
func (h *DocumentHandler) Delete(c *gin.Context) {
	documentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), documentID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// AddLineItem appends a line item to a draft document
func (h *DocumentHandler) AddLineItem(c *gin.Context) {
	documentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	var req accountingapp.CreateLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.documentService.AddLineItem(c.Request.Context(), documentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// UpdateLineItem changes the quantity, price or adjustments of a line item
func (h *DocumentHandler) UpdateLineItem(c *gin.Context) {
	documentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	itemID, err := parseIDParam(c, "itemID")
	if err != nil {
		h.BadRequest(c, "Invalid line item ID format")
		return
	}

	var req accountingapp.UpdateLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.documentService.UpdateLineItem(c.Request.Context(), documentID, itemID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// RemoveLineItem removes a line item from a draft document
func (h *DocumentHandler) RemoveLineItem(c *gin.Context) {
	documentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	itemID, err := parseIDParam(c, "itemID")
	if err != nil {
		h.BadRequest(c, "Invalid line item ID format")
		return
	}

	doc, err := h.documentService.RemoveLineItem(c.Request.Context(), documentID, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// SetDiscountRequest is the payload for setting a document discount
type SetDiscountRequest struct {
	Method string                             `json:"method" binding:"required,oneof=PER_LINE_ITEM PER_DOCUMENT"`
	Rate   *accountingapp.DiscountRateRequest `json:"rate,omitempty"`
}

// SetDiscount sets the discount method and rate on a draft document
func (h *DocumentHandler) SetDiscount(c *gin.Context) {
	documentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	var req SetDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	doc, err := h.documentService.SetDiscount(c.Request.Context(), documentID, req.Method, req.Rate)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// AllocateDiscount returns the document discount split across line items
func (h *DocumentHandler) AllocateDiscount(c *gin.Context) {
	documentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	allocations, err := h.documentService.AllocateDiscount(c.Request.Context(), documentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, allocations)
}

// Approve approves a draft document and posts its journal
func (h *DocumentHandler) Approve(c *gin.Context) {
	h.transition(c, h.documentService.Approve)
}

// MarkAsSent marks a document as sent to the counterparty
func (h *DocumentHandler) MarkAsSent(c *gin.Context) {
	h.transition(c, h.documentService.MarkAsSent)
}

// MarkAsViewed marks a document as viewed by the counterparty
func (h *DocumentHandler) MarkAsViewed(c *gin.Context) {
	h.transition(c, h.documentService.MarkAsViewed)
}

// MarkAsAccepted marks an estimate or order as accepted
func (h *DocumentHandler) MarkAsAccepted(c *gin.Context) {
	h.transition(c, h.documentService.MarkAsAccepted)
}

// MarkAsDeclined marks an estimate or order as declined
func (h *DocumentHandler) MarkAsDeclined(c *gin.Context) {
	h.transition(c, h.documentService.MarkAsDeclined)
}

// MarkGoodsReceived records goods receipt on a bill
func (h *DocumentHandler) MarkGoodsReceived(c *gin.Context) {
	h.transition(c, h.documentService.MarkGoodsReceived)
}

// Void voids a document
func (h *DocumentHandler) Void(c *gin.Context) {
	h.transition(c, h.documentService.Void)
}

// Convert converts an accepted estimate or order into its target kind
func (h *DocumentHandler) Convert(c *gin.Context) {
	h.transition(c, h.documentService.Convert)
}

// Replicate creates a fresh draft copy of a document
func (h *DocumentHandler) Replicate(c *gin.Context) {
	h.transition(c, h.documentService.Replicate)
}

// transition runs a lifecycle operation identified by the :id parameter
func (h *DocumentHandler) transition(c *gin.Context, fn func(ctx context.Context, documentID uuid.UUID) (*accountingapp.DocumentResponse, error)) {
	documentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	doc, err := fn(c.Request.Context(), documentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}
