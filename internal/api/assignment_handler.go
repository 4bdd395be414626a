package api

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AssignmentHandler struct {
	assignmentService service.AssignmentService
	log               *zap.Logger
}

func NewAssignmentHandler(assignmentService service.AssignmentService, log *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService, log: log}
}

type CreateAssignmentRequest struct {
	Title       string                  `json:"title" binding:"required,max=200"`
	Description string                  `json:"description" binding:"max=10000"`
	DueDate     time.Time               `json:"dueDate" binding:"required"` // RFC3339
	Status      domain.AssignmentStatus `json:"status" binding:"omitempty,oneof=draft published closed"`
}

type AssignmentStatusRequest struct {
	Status domain.AssignmentStatus `json:"status" binding:"required,oneof=draft published closed"`
}

// CreateAssignment
// @Router /courses/{id}/assignments [post]
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	actor := mustUser(c)
	if actor == nil {
		return
	}
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CreateAssignmentRequest
	if !bindJSON(c, &req) {
		return
	}
	assignment, err := h.assignmentService.CreateAssignment(c.Request.Context(), actor, courseID, service.AssignmentInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      req.Status,
	})
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, assignment, "Assignment created")
}

// ListAssignments
// @Router /courses/{id}/assignments [get]
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	assignments, err := h.assignmentService.ListAssignments(c.Request.Context(), courseID)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, assignments, "")
}

// GetAssignment
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	assignment, err := h.assignmentService.GetAssignment(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, assignment, "")
}

// SetStatus
// @Router /assignments/{id}/status [patch]
func (h *AssignmentHandler) SetStatus(c *gin.Context) {
	actor := mustUser(c)
	if actor == nil {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req AssignmentStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	assignment, err := h.assignmentService.SetAssignmentStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, assignment, "Assignment status updated")
}

// DeleteAssignment
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	actor := mustUser(c)
	if actor == nil {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.assignmentService.DeleteAssignment(c.Request.Context(), actor, id); err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, nil, "Assignment deleted")
}
