package handler

import (
	invoicingapp "github.com/fakturly/backend/internal/application/invoicing"
	"github.com/gin-gonic/gin"
)

// InventoryHandler handles stock movement HTTP requests
type InventoryHandler struct {
	BaseHandler
	inventoryService *invoicingapp.InventoryService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *invoicingapp.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// RegisterRoutes registers inventory routes on the business-scoped group
func (h *InventoryHandler) RegisterRoutes(scoped *gin.RouterGroup) {
	inventory := scoped.Group("/inventory")
	{
		inventory.GET("/movements", h.List)
		inventory.POST("/movements", h.Record)
	}
}

// List returns the business's stock movements
func (h *InventoryHandler) List(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid list parameters")
		return
	}

	result, err := h.inventoryService.ListMovements(c.Request.Context(), rc, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, result)
}

// Record stores a stock movement and applies it to the product
func (h *InventoryHandler) Record(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}

	var input invoicingapp.RecordMovementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindingError(c, err)
		return
	}

	movement, err := h.inventoryService.RecordMovement(c.Request.Context(), rc, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, movement)
}
