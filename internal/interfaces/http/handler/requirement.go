package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	appreq "github.com/reqtrace/backend/internal/application/requirement"
	"github.com/reqtrace/backend/internal/interfaces/http/dto"
)

// RequirementHandler handles requirement-related API endpoints
type RequirementHandler struct {
	BaseHandler
	service *appreq.Service
}

// NewRequirementHandler creates a new RequirementHandler
func NewRequirementHandler(service *appreq.Service) *RequirementHandler {
	return &RequirementHandler{service: service}
}

// Create godoc
// @ID           createRequirement
//
//	@Summary		Create a requirement
//	@Description	Creates a requirement at version 1 with its CREATED history entry and stakeholder links
//	@Tags			requirements
//	@Accept			json
//	@Produce		json
//	@Param			Idempotency-Key	header		string							false	"Retry key"
//	@Param			request			body		appreq.CreateRequirementRequest	true	"Requirement"
//	@Success		201				{object}	dto.Response
//	@Failure		400				{object}	dto.Response
//	@Failure		403				{object}	dto.Response
//	@Failure		404				{object}	dto.Response
//	@Failure		409				{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/requirements [post]
func (h *RequirementHandler) Create(c *gin.Context) {
	principal, ok := principalID(c)
	if !ok {
		h.Unauthorized(c)
		return
	}

	var req appreq.CreateRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), principal, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListByProject godoc
// @ID           listProjectRequirements
//
//	@Summary		List a project's requirements
//	@Description	Newest first, optionally filtered by exact status, priority and type
//	@Tags			requirements
//	@Produce		json
//	@Param			projectId	path		string	true	"Project ID"
//	@Param			status		query		string	false	"Status filter"
//	@Param			priority	query		string	false	"Priority filter"
//	@Param			type		query		string	false	"Type filter"
//	@Success		200			{object}	dto.Response
//	@Failure		403			{object}	dto.Response
//	@Failure		404			{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/requirements/project/{projectId} [get]
func (h *RequirementHandler) ListByProject(c *gin.Context) {
	principal, ok := principalID(c)
	if !ok {
		h.Unauthorized(c)
		return
	}
	projectID, ok := h.ParseUUIDParam(c, "projectId")
	if !ok {
		return
	}

	var filter appreq.ListRequirementsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	list, err := h.service.ListByProject(c.Request.Context(), principal, projectID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// Matrix godoc
// @ID           getTraceabilityMatrix
//
//	@Summary		Traceability matrix
//	@Description	Every requirement of the project joined to its stakeholders, tasks and meetings, oldest first
//	@Tags			requirements
//	@Produce		json
//	@Param			projectId	path		string	true	"Project ID"
//	@Success		200			{object}	dto.Response
//	@Failure		403			{object}	dto.Response
//	@Failure		404			{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/requirements/project/{projectId}/traceability-matrix [get]
func (h *RequirementHandler) Matrix(c *gin.Context) {
	principal, ok := principalID(c)
	if !ok {
		h.Unauthorized(c)
		return
	}
	projectID, ok := h.ParseUUIDParam(c, "projectId")
	if !ok {
		return
	}

	matrix, err := h.service.BuildMatrix(c.Request.Context(), principal, projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, matrix)
}

// MatrixPDF godoc
// @ID           exportTraceabilityMatrix
//
//	@Summary		Export the traceability matrix as PDF
//	@Tags			requirements
//	@Produce		application/pdf
//	@Param			projectId	path		string	true	"Project ID"
//	@Success		200			{file}		binary
//	@Failure		403			{object}	dto.Response
//	@Failure		503			{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/requirements/project/{projectId}/traceability-matrix/pdf [get]
func (h *RequirementHandler) MatrixPDF(c *gin.Context) {
	principal, ok := principalID(c)
	if !ok {
		h.Unauthorized(c)
		return
	}
	projectID, ok := h.ParseUUIDParam(c, "projectId")
	if !ok {
		return
	}

	pdf, filename, err := h.service.ExportMatrixPDF(c.Request.Context(), principal, projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Get godoc
// @ID           getRequirement
//
//	@Summary		Get a requirement
//	@Description	Full projection with comments, history, task links and meeting links
//	@Tags			requirements
//	@Produce		json
//	@Param			requirementId	path		string	true	"Requirement ID"
//	@Success		200				{object}	dto.Response
//	@Failure		403				{object}	dto.Response
//	@Failure		404				{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/requirements/{requirementId} [get]
func (h *RequirementHandler) Get(c *gin.Context) {
	principal, ok := principalID(c)
	if !ok {
		h.Unauthorized(c)
		return
	}
	id, ok := h.ParseUUIDParam(c, "requirementId")
	if !ok {
		return
	}

	resp, err := h.service.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update godoc
// @ID           updateRequirement
//
//	@Summary		Update a requirement
//	@Description	Partial update. expectedVersion, or an If-Match header, makes the write conditional.
//	@Tags			requirements
//	@Accept			json
//	@Produce		json
//	@Param			requirementId	path		string							true	"Requirement ID"
//	@Param			If-Match		header		string							false	"Expected version"
//	@Param			request			body		appreq.UpdateRequirementRequest	true	"Changed fields"
//	@Success		200				{object}	dto.Response
//	@Failure		400				{object}	dto.Response
//	@Failure		403				{object}	dto.Response
//	@Failure		404				{object}	dto.Response
//	@Failure		409				{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/requirements/{requirementId} [put]
func (h *RequirementHandler) Update(c *gin.Context) {
	principal, ok := principalID(c)
	if !ok {
		h.Unauthorized(c)
		return
	}
	id, ok := h.ParseUUIDParam(c, "requirementId")
	if !ok {
		return
	}

	var req appreq.UpdateRequirementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if req.ExpectedVersion == nil {
		v, present, err := parseIfMatch(c.GetHeader("If-Match"))
		if err != nil {
			h.BadRequest(c, dto.ErrCodeInvalidVersion, "If-Match must be a requirement version")
			return
		}
		if present {
			req.ExpectedVersion = &v
		}
	}

	resp, err := h.service.Update(c.Request.Context(), principal, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("ETag", strconv.Quote(strconv.Itoa(resp.Version)))
	h.Success(c, resp)
}

// parseIfMatch accepts 3, "3" and W/"3". "*" and an empty header impose
// no condition.
func parseIfMatch(header string) (int, bool, error) {
	v := strings.TrimSpace(header)
	if v == "" || v == "*" {
		return 0, false, nil
	}
	v = strings.TrimPrefix(v, "W/")
	v = strings.Trim(v, `"`)
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, false, fmt.Errorf("invalid If-Match %q", header)
	}
	return n, true, nil
}

// Delete godoc
// @ID           deleteRequirement
//
//	@Summary		Delete a requirement
//	@Description	Removes the requirement with its history, comments, attachments and links
//	@Tags			requirements
//	@Produce		json
//	@Param			requirementId	path		string	true	"Requirement ID"
//	@Success		200				{object}	dto.Response
//	@Failure		403				{object}	dto.Response
//	@Failure		404				{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/requirements/{requirementId} [delete]
func (h *RequirementHandler) Delete(c *gin.Context) {
	principal, ok := principalID(c)
	if !ok {
		h.Unauthorized(c)
		return
	}
	id, ok := h.ParseUUIDParam(c, "requirementId")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), principal, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Requirement deleted successfully")
}

// AddComment godoc
// @ID           commentRequirement
//
//	@Summary		Comment on a requirement
//	@Tags			requirements
//	@Accept			json
//	@Produce		json
//	@Param			requirementId	path		string						true	"Requirement ID"
//	@Param			request			body		appreq.AddCommentRequest	true	"Comment"
//	@Success		201				{object}	dto.Response
//	@Failure		400				{object}	dto.Response
//	@Failure		403				{object}	dto.Response
//	@Failure		404				{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/requirements/{requirementId}/comment [post]
func (h *RequirementHandler) AddComment(c *gin.Context) {
	principal, ok := principalID(c)
	if !ok {
		h.Unauthorized(c)
		return
	}
	id, ok := h.ParseUUIDParam(c, "requirementId")
	if !ok {
		return
	}

	var req appreq.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	comment, err := h.service.AddComment(c.Request.Context(), principal, id, req.Content)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, comment)
}

// LinkTask godoc
// @ID           linkRequirementTask
//
//	@Summary		Link a task to a requirement
//	@Tags			requirements
//	@Accept			json
//	@Produce		json
//	@Param			requirementId	path		string					true	"Requirement ID"
//	@Param			request			body		appreq.LinkTaskRequest	true	"Task"
//	@Success		201				{object}	dto.Response
//	@Failure		400				{object}	dto.Response
//	@Failure		403				{object}	dto.Response
//	@Failure		404				{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/requirements/{requirementId}/link-task [post]
func (h *RequirementHandler) LinkTask(c *gin.Context) {
	principal, ok := principalID(c)
	if !ok {
		h.Unauthorized(c)
		return
	}
	id, ok := h.ParseUUIDParam(c, "requirementId")
	if !ok {
		return
	}

	var req appreq.LinkTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	link, err := h.service.LinkTask(c.Request.Context(), principal, id, req.TaskID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, link)
}

// UnlinkTask godoc
// @ID           unlinkRequirementTask
//
//	@Summary		Remove a task link
//	@Tags			requirements
//	@Produce		json
//	@Param			requirementId	path		string	true	"Requirement ID"
//	@Param			taskId			path		string	true	"Task ID"
//	@Success		200				{object}	dto.Response
//	@Failure		403				{object}	dto.Response
//	@Failure		404				{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/requirements/{requirementId}/link-task/{taskId} [delete]
func (h *RequirementHandler) UnlinkTask(c *gin.Context) {
	principal, ok := principalID(c)
	if !ok {
		h.Unauthorized(c)
		return
	}
	id, ok := h.ParseUUIDParam(c, "requirementId")
	if !ok {
		return
	}
	taskID, ok := h.ParseUUIDParam(c, "taskId")
	if !ok {
		return
	}

	if err := h.service.UnlinkTask(c.Request.Context(), principal, id, taskID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Task unlinked successfully")
}
