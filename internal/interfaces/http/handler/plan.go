package handler

import (
	"github.com/fakturly/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
)

// PlanHandler exposes the organization's plan and quota usage
type PlanHandler struct {
	BaseHandler
	planLimits *billing.PlanLimitService
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(planLimits *billing.PlanLimitService) *PlanHandler {
	return &PlanHandler{planLimits: planLimits}
}

// RegisterRoutes registers plan routes on the business-scoped group
func (h *PlanHandler) RegisterRoutes(scoped *gin.RouterGroup) {
	scoped.GET("/plan", h.Status)
}

// Status returns the effective plan and per-resource usage of the
// organization behind the active business. Team members see the owner's
// plan, since that is the one their actions are metered against.
func (h *PlanHandler) Status(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}

	status, err := h.planLimits.Status(c.Request.Context(), rc.OwnerID())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, status)
}
