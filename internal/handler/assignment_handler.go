package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/stuteach-backend/internal/access"
	"github.com/stemsi/stuteach-backend/internal/middleware"
	"github.com/stemsi/stuteach-backend/internal/model"
	"github.com/stemsi/stuteach-backend/internal/response"
	"github.com/stemsi/stuteach-backend/internal/service"
	"github.com/stemsi/stuteach-backend/internal/validator"
)

// AssignmentHandler exposes the assignment lifecycle over HTTP.
type AssignmentHandler struct {
	assignmentService *service.AssignmentService
	log               zerolog.Logger
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(assignmentService *service.AssignmentService, log zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
		log:               log.With().Str("component", "assignment_handler").Logger(),
	}
}

// Create godoc
// POST /api/v1/assignments
func (h *AssignmentHandler) Create(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	var req model.CreateAssignmentRequest
	if err := validator.Decode(c, &req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	a, err := h.assignmentService.Create(c.Request.Context(), caller, req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"assignment": a})
}

// List godoc
// GET /api/v1/assignments
// Teachers get their own assignments, students get all of them.
func (h *AssignmentHandler) List(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}

	list, err := h.assignmentService.List(c.Request.Context(), caller)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"assignments": list})
}

// GetByID godoc
// GET /api/v1/assignments/:id
func (h *AssignmentHandler) GetByID(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := assignmentID(c)
	if !ok {
		return
	}

	a, err := h.assignmentService.GetByID(c.Request.Context(), caller, id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"assignment": a})
}

// Update godoc
// PUT /api/v1/assignments/:id
func (h *AssignmentHandler) Update(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := assignmentID(c)
	if !ok {
		return
	}

	var req model.UpdateAssignmentRequest
	if err := validator.Decode(c, &req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	a, err := h.assignmentService.Update(c.Request.Context(), caller, id, req)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"assignment": a})
}

// Delete godoc
// DELETE /api/v1/assignments/:id
func (h *AssignmentHandler) Delete(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := assignmentID(c)
	if !ok {
		return
	}

	if err := h.assignmentService.Delete(c.Request.Context(), caller, id); err != nil {
		writeError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "assignment deleted successfully"})
}

func (h *AssignmentHandler) caller(c *gin.Context) (access.Caller, bool) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
	}
	return caller, ok
}

// assignmentID parses the :id path parameter. Ids that cannot name an
// assignment are reported as not found.
func assignmentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrAssignmentNotFound)
		return uuid.Nil, false
	}
	return id, true
}
