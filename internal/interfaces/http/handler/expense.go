package handler

import (
	invoicingapp "github.com/fakturly/backend/internal/application/invoicing"
	"github.com/gin-gonic/gin"
)

// ExpenseHandler handles expense HTTP requests
type ExpenseHandler struct {
	BaseHandler
	expenseService *invoicingapp.ExpenseService
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(expenseService *invoicingapp.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// RegisterRoutes registers expense routes on the business-scoped group
func (h *ExpenseHandler) RegisterRoutes(scoped *gin.RouterGroup) {
	expenses := scoped.Group("/expenses")
	{
		expenses.GET("", h.List)
		expenses.POST("", h.Create)
		expenses.GET("/:id", h.Get)
		expenses.PUT("/:id", h.Update)
		expenses.DELETE("/:id", h.Delete)
	}
}

// List returns the business's expenses
func (h *ExpenseHandler) List(c *gin.Context) {
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

	result, err := h.expenseService.ListExpenses(c.Request.Context(), rc, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, result)
}

// Get returns one expense
func (h *ExpenseHandler) Get(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid expense ID")
		return
	}

	expense, err := h.expenseService.GetExpense(c.Request.Context(), rc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Create records an expense
func (h *ExpenseHandler) Create(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}

	var input invoicingapp.CreateExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindingError(c, err)
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), rc, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, expense)
}

// Update updates an expense
func (h *ExpenseHandler) Update(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid expense ID")
		return
	}

	var input invoicingapp.UpdateExpenseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindingError(c, err)
		return
	}

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), rc, id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, expense)
}

// Delete removes an expense
func (h *ExpenseHandler) Delete(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid expense ID")
		return
	}

	if err := h.expenseService.DeleteExpense(c.Request.Context(), rc, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
