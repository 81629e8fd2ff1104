package handler

import (
	"github.com/gin-gonic/gin"
	appst "github.com/reqtrace/backend/internal/application/stakeholder"
)

// StakeholderHandler handles stakeholder and meeting API endpoints
type StakeholderHandler struct {
	BaseHandler
	service *appst.Service
}

// NewStakeholderHandler creates a new StakeholderHandler
func NewStakeholderHandler(service *appst.Service) *StakeholderHandler {
	return &StakeholderHandler{service: service}
}

// Create godoc
// @ID           createStakeholder
//
//	@Summary		Create a stakeholder
//	@Tags			stakeholders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appst.CreateStakeholderRequest	true	"Stakeholder"
//	@Success		201		{object}	dto.Response
//	@Failure		400		{object}	dto.Response
//	@Failure		403		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/stakeholders [post]
func (h *StakeholderHandler) Create(c *gin.Context) {
	principal, ok := principalID(c)
	if !ok {
		h.Unauthorized(c)
		return
	}

	var req appst.CreateStakeholderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.CreateStakeholder(c.Request.Context(), principal, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListByProject godoc
// @ID           listProjectStakeholders
//
//	@Summary		List a project's stakeholders
//	@Tags			stakeholders
//	@Produce		json
//	@Param			projectId	path		string	true	"Project ID"
//	@Success		200			{object}	dto.Response
//	@Failure		403			{object}	dto.Response
//	@Failure		404			{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/stakeholders/project/{projectId} [get]
func (h *StakeholderHandler) ListByProject(c *gin.Context) {
	principal, ok := principalID(c)
	if !ok {
		h.Unauthorized(c)
		return
	}
	projectID, ok := h.ParseUUIDParam(c, "projectId")
	if !ok {
		return
	}

	list, err := h.service.ListByProject(c.Request.Context(), principal, projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// Update godoc
// @ID           updateStakeholder
//
//	@Summary		Update a stakeholder
//	@Tags			stakeholders
//	@Accept			json
//	@Produce		json
//	@Param			stakeholderId	path		string							true	"Stakeholder ID"
//	@Param			request			body		appst.UpdateStakeholderRequest	true	"Changed fields"
//	@Success		200				{object}	dto.Response
//	@Failure		400				{object}	dto.Response
//	@Failure		403				{object}	dto.Response
//	@Failure		404				{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/stakeholders/{stakeholderId} [put]
func (h *StakeholderHandler) Update(c *gin.Context) {
	principal, ok := principalID(c)
	if !ok {
		h.Unauthorized(c)
		return
	}
	id, ok := h.ParseUUIDParam(c, "stakeholderId")
	if !ok {
		return
	}

	var req appst.UpdateStakeholderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.UpdateStakeholder(c.Request.Context(), principal, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete godoc
// @ID           deleteStakeholder
//
//	@Summary		Delete a stakeholder
//	@Tags			stakeholders
//	@Produce		json
//	@Param			stakeholderId	path		string	true	"Stakeholder ID"
//	@Success		200				{object}	dto.Response
//	@Failure		403				{object}	dto.Response
//	@Failure		404				{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/stakeholders/{stakeholderId} [delete]
func (h *StakeholderHandler) Delete(c *gin.Context) {
	principal, ok := principalID(c)
	if !ok {
		h.Unauthorized(c)
		return
	}
	id, ok := h.ParseUUIDParam(c, "stakeholderId")
	if !ok {
		return
	}

	if err := h.service.DeleteStakeholder(c.Request.Context(), principal, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Stakeholder deleted successfully")
}

// CreateMeeting godoc
// @ID           createMeeting
//
//	@Summary		Record a stakeholder meeting
//	@Tags			stakeholders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		appst.CreateMeetingRequest	true	"Meeting"
//	@Success		201		{object}	dto.Response
//	@Failure		400		{object}	dto.Response
//	@Failure		403		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/stakeholders/meetings [post]
func (h *StakeholderHandler) CreateMeeting(c *gin.Context) {
	principal, ok := principalID(c)
	if !ok {
		h.Unauthorized(c)
		return
	}

	var req appst.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.CreateMeeting(c.Request.Context(), principal, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListMeetings godoc
// @ID           listProjectMeetings
//
//	@Summary		List a project's meetings
//	@Description	Most recent meeting first, with participants and linked requirements
//	@Tags			stakeholders
//	@Produce		json
//	@Param			projectId	path		string	true	"Project ID"
//	@Success		200			{object}	dto.Response
//	@Failure		403			{object}	dto.Response
//	@Failure		404			{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/stakeholders/meetings/project/{projectId} [get]
func (h *StakeholderHandler) ListMeetings(c *gin.Context) {
	principal, ok := principalID(c)
	if !ok {
		h.Unauthorized(c)
		return
	}
	projectID, ok := h.ParseUUIDParam(c, "projectId")
	if !ok {
		return
	}

	list, err := h.service.ListMeetings(c.Request.Context(), principal, projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}
