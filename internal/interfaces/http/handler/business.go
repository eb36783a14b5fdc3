package handler

import (
	"io"

	identityapp "github.com/fakturly/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
)

// maxLogoUploadBytes bounds how much of the uploaded file is read
const maxLogoUploadBytes = 5 << 20

// BusinessHandler handles business management HTTP requests
type BusinessHandler struct {
	BaseHandler
	businessService *identityapp.BusinessService
}

// NewBusinessHandler creates a new business handler
func NewBusinessHandler(businessService *identityapp.BusinessService) *BusinessHandler {
	return &BusinessHandler{businessService: businessService}
}

// RegisterRoutes registers business routes. Listing and creation only need
// an authenticated user; everything else acts on the active business and
// runs behind the business context middleware.
func (h *BusinessHandler) RegisterRoutes(private, scoped *gin.RouterGroup) {
	private.GET("/businesses", h.List)
	private.POST("/businesses", h.Create)

	business := scoped.Group("/business")
	{
		business.GET("", h.Get)
		business.PUT("", h.Update)
		business.DELETE("", h.Deactivate)
		business.POST("/logo", h.UploadLogo)
	}
}

// List returns every active business owned by the authenticated user
func (h *BusinessHandler) List(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	businesses, err := h.businessService.ListBusinesses(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, businesses)
}

// Create creates a business owned by the authenticated user
func (h *BusinessHandler) Create(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var input identityapp.CreateBusinessInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindingError(c, err)
		return
	}

	business, err := h.businessService.CreateBusiness(c.Request.Context(), id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, business)
}

// Get returns the active business
func (h *BusinessHandler) Get(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}

	business, err := h.businessService.GetBusiness(c.Request.Context(), rc)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, business)
}

// Update updates the active business; owner only
func (h *BusinessHandler) Update(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}

	var input identityapp.UpdateBusinessInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindingError(c, err)
		return
	}

	business, err := h.businessService.UpdateBusiness(c.Request.Context(), rc, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, business)
}

// Deactivate deactivates the active business; owner only
func (h *BusinessHandler) Deactivate(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}

	if err := h.businessService.DeactivateBusiness(c.Request.Context(), rc); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UploadLogo stores a new logo for the active business; owner only
func (h *BusinessHandler) UploadLogo(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		h.BadRequest(c, "Logo file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Logo file could not be read")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxLogoUploadBytes))
	if err != nil {
		h.BadRequest(c, "Logo file could not be read")
		return
	}

	business, err := h.businessService.UploadLogo(c.Request.Context(), rc, data, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, business)
}
