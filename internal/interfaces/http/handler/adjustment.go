package handler

import (
	accountingapp "github.com/books/backend/internal/application/accounting"
	"github.com/gin-gonic/gin"
)

// AdjustmentHandler handles adjustment rule API endpoints
type AdjustmentHandler struct {
	BaseHandler
	adjustmentService *accountingapp.AdjustmentService
}

// NewAdjustmentHandler creates a new AdjustmentHandler
func NewAdjustmentHandler(adjustmentService *accountingapp.AdjustmentService) *AdjustmentHandler {
	return &AdjustmentHandler{adjustmentService: adjustmentService}
}

// RegisterRoutes registers adjustment routes on the given group
func (h *AdjustmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	adjustments := rg.Group("/adjustments")
	adjustments.POST("", h.Create)
	adjustments.GET("", h.ListActive)
	adjustments.GET("/:id", h.GetByID)
	adjustments.POST("/:id/approve", h.Approve)
	adjustments.POST("/:id/reverse", h.Reverse)
	adjustments.PUT("/:id/rate", h.UpdateRate)
	adjustments.DELETE("/:id", h.Delete)
}

// Create creates a new adjustment rule in pending state
func (h *AdjustmentHandler) Create(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	var req accountingapp.CreateAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	adj, err := h.adjustmentService.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, adj)
}

// ListActive lists approved adjustment rules for the company
func (h *AdjustmentHandler) ListActive(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	adjustments, err := h.adjustmentService.ListActive(c.Request.Context(), companyID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, adjustments)
}

// GetByID retrieves an adjustment rule by ID
func (h *AdjustmentHandler) GetByID(c *gin.Context) {
	adjustmentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid adjustment ID format")
		return
	}

	adj, err := h.adjustmentService.GetByID(c.Request.Context(), adjustmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, adj)
}

// Approve activates a pending adjustment rule
func (h *AdjustmentHandler) Approve(c *gin.Context) {
	adjustmentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid adjustment ID format")
		return
	}

	adj, err := h.adjustmentService.Approve(c.Request.Context(), adjustmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, adj)
}

// Reverse retires an adjustment rule from further use
func (h *AdjustmentHandler) Reverse(c *gin.Context) {
	adjustmentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid adjustment ID format")
		return
	}

	adj, err := h.adjustmentService.Reverse(c.Request.Context(), adjustmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, adj)
}

// UpdateRate changes the rate of an unreferenced adjustment rule
func (h *AdjustmentHandler) UpdateRate(c *gin.Context) {
	adjustmentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid adjustment ID format")
		return
	}

	var req accountingapp.DiscountRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	adj, err := h.adjustmentService.UpdateRate(c.Request.Context(), adjustmentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, adj)
}

// Delete deletes an unreferenced adjustment rule
func (h *AdjustmentHandler) Delete(c *gin.Context) {
	adjustmentID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid adjustment ID format")
		return
	}

	if err := h.adjustmentService.Delete(c.Request.Context(), adjustmentID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
