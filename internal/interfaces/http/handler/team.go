package handler

import (
	identityapp "github.com/fakturly/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
)

// TeamHandler handles team management HTTP requests
type TeamHandler struct {
	BaseHandler
	teamService *identityapp.TeamService
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teamService *identityapp.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// RegisterRoutes registers team routes on the business-scoped group
func (h *TeamHandler) RegisterRoutes(scoped *gin.RouterGroup) {
	team := scoped.Group("/team")
	{
		team.GET("", h.List)
		team.POST("/invite", h.Invite)
		team.PUT("/members/:id/role", h.ChangeRole)
		team.PUT("/members/:id/target", h.SetTarget)
		team.DELETE("/members/:id", h.Remove)
		team.DELETE("/invitations/:id", h.RevokeInvitation)
		team.PUT("/location", h.UpdateLocation)
	}
}

// List returns the members and pending invitations of the organization
func (h *TeamHandler) List(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}

	team, err := h.teamService.ListTeam(c.Request.Context(), rc)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, team)
}

// Invite adds an existing account to the team or records a pending
// invitation for an unknown email
func (h *TeamHandler) Invite(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}

	var input identityapp.InviteMemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.teamService.InviteMember(c.Request.Context(), rc, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ChangeRole changes a team member's role
func (h *TeamHandler) ChangeRole(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}
	memberID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid member ID")
		return
	}

	var input identityapp.ChangeMemberRoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindingError(c, err)
		return
	}

	member, err := h.teamService.ChangeMemberRole(c.Request.Context(), rc, memberID, input.Role)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, member)
}

// SetTarget sets a team member's monthly sales target
func (h *TeamHandler) SetTarget(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}
	memberID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid member ID")
		return
	}

	var input identityapp.SetMonthlyTargetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindingError(c, err)
		return
	}

	member, err := h.teamService.SetMonthlyTarget(c.Request.Context(), rc, memberID, input.Target)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, member)
}

// Remove removes a team member from the organization
func (h *TeamHandler) Remove(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}
	memberID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid member ID")
		return
	}

	if err := h.teamService.RemoveMember(c.Request.Context(), rc, memberID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RevokeInvitation withdraws a pending invitation
func (h *TeamHandler) RevokeInvitation(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}
	invitationID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid invitation ID")
		return
	}

	if err := h.teamService.RevokeInvitation(c.Request.Context(), rc, invitationID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UpdateLocation records the calling member's last known location
func (h *TeamHandler) UpdateLocation(c *gin.Context) {
	rc, ok := businessContext(c)
	if !ok {
		h.Unauthorized(c, "Business context required")
		return
	}

	var input identityapp.UpdateLocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BindingError(c, err)
		return
	}

	member, err := h.teamService.UpdateMyLocation(c.Request.Context(), rc, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, member)
}
