package handler

import (
	invoicingapp "github.com/fakturly/backend/internal/application/invoicing"
	"github.com/gin-gonic/gin"
)

// CategoryHandler handles category HTTP requests
type CategoryHandler struct {
	BaseHandler
	categoryService *invoicingapp.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categoryService *invoicingapp.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// RegisterRoutes registers category routes on the business-scoped group
func (h *CategoryHandler) RegisterRoutes(scoped *gin.RouterGroup) {
	categories := scoped.Group("/categories")
	{
		categories.GET("", h.List)
		categories.POST("", h.Create)
		categories.GET("/:id", h.Get)
		categories.PUT("/:id", h.Update)
		categories.DELETE("/:id", h.Delete)
	}
}

// List returns the business's categories
func (h *CategoryHandler) List(c *gin.Context) {
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

	result, err := h.categoryService.ListCategories(c.Request.Context(), rc, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, result)
}

// Get returns one category
func (h *CategoryHandler) Get(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid category ID")
		return
	}

	category, err := h.categoryService.GetCategory(c.Request.Context(), rc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Create creates a category
func (h *CategoryHandler) Create(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}

	var input invoicingapp.CreateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindingError(c, err)
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), rc, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// Update updates a category
func (h *CategoryHandler) Update(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid category ID")
		return
	}

	var input invoicingapp.UpdateCategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindingError(c, err)
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), rc, id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Delete removes a category
func (h *CategoryHandler) Delete(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid category ID")
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), rc, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
