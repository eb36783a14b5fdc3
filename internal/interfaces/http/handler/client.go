package handler

import (
	invoicingapp "github.com/fakturly/backend/internal/application/invoicing"
	"github.com/gin-gonic/gin"
)

// ClientHandler handles client HTTP requests
type ClientHandler struct {
	BaseHandler
	clientService *invoicingapp.ClientService
}

// NewClientHandler creates a new client handler
func NewClientHandler(clientService *invoicingapp.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// RegisterRoutes registers client routes on the business-scoped group
func (h *ClientHandler) RegisterRoutes(scoped *gin.RouterGroup) {
	clients := scoped.Group("/clients")
	{
		clients.GET("", h.List)
		clients.POST("", h.Create)
		clients.GET("/:id", h.Get)
		clients.PUT("/:id", h.Update)
		clients.DELETE("/:id", h.Delete)
	}
}

// List returns the clients visible to the caller
func (h *ClientHandler) List(c *gin.Context) {
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

	result, err := h.clientService.ListClients(c.Request.Context(), rc, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, result)
}

// Get returns one client
func (h *ClientHandler) Get(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	client, err := h.clientService.GetClient(c.Request.Context(), rc, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Create creates a client
func (h *ClientHandler) Create(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}

	var input invoicingapp.CreateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindingError(c, err)
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), rc, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, client)
}

// Update updates a client
func (h *ClientHandler) Update(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	var input invoicingapp.UpdateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindingError(c, err)
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), rc, id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Delete removes a client
func (h *ClientHandler) Delete(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	if err := h.clientService.DeleteClient(c.Request.Context(), rc, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
