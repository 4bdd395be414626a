package api

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CourseHandler struct {
	courseService service.CourseService
	log           *zap.Logger
}

func NewCourseHandler(courseService service.CourseService, log *zap.Logger) *CourseHandler {
	return &CourseHandler{courseService: courseService, log: log}
}

// --- DTOs ---

type CreateCourseRequest struct {
	CourseID    string `json:"courseId" binding:"required,coursecode"`
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=5000"`
	Credits     int    `json:"credits" binding:"required,min=1,max=12"`
}

type CourseStatusRequest struct {
	Status domain.CourseStatus `json:"status" binding:"required,oneof=active inactive"`
}

type AssignDirectorRequest struct {
	DirectorID string `json:"directorId" binding:"required,objectid"`
}

// --- Handler Methods ---

// CreateCourse
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	actor := mustUser(c)
	if actor == nil {
		return
	}
	var req CreateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.courseService.CreateCourse(c.Request.Context(), actor, service.CreateCourseInput{
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		Credits:     req.Credits,
	})
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, course, "Course created")
}

// ListCourses accepts an optional ?status= filter.
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.courseService.ListCourses(c.Request.Context(), domain.CourseStatus(c.Query("status")))
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, courses, "")
}

// MyCourses
// @Router /courses/mine [get]
func (h *CourseHandler) MyCourses(c *gin.Context) {
	user := mustUser(c)
	if user == nil {
		return
	}
	courses, err := h.courseService.MyCourses(c.Request.Context(), user)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, courses, "")
}

// GetCourse
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	course, err := h.courseService.GetCourse(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, course, "")
}

// GetCourseByCode
// @Router /courses/code/{code} [get]
func (h *CourseHandler) GetCourseByCode(c *gin.Context) {
	course, err := h.courseService.GetCourseByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, course, "")
}

// SetStatus
// @Router /courses/{id}/status [patch]
func (h *CourseHandler) SetStatus(c *gin.Context) {
	actor := mustUser(c)
	if actor == nil {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CourseStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.courseService.SetStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, course, "Course status updated")
}

// AssignDirector
// @Router /courses/{id}/director [put]
func (h *CourseHandler) AssignDirector(c *gin.Context) {
	actor := mustUser(c)
	if actor == nil {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req AssignDirectorRequest
	if !bindJSON(c, &req) {
		return
	}
	directorID, _ := objectID(req.DirectorID)
	course, err := h.courseService.AssignDirector(c.Request.Context(), actor, id, directorID)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, course, "Course director assigned")
}

// Enroll
// @Router /courses/{id}/enrollment [post]
func (h *CourseHandler) Enroll(c *gin.Context) {
	student := mustUser(c)
	if student == nil {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	course, err := h.courseService.Enroll(c.Request.Context(), student, id)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, course, "Enrolled")
}

// Unenroll
// @Router /courses/{id}/enrollment [delete]
func (h *CourseHandler) Unenroll(c *gin.Context) {
	student := mustUser(c)
	if student == nil {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.courseService.Unenroll(c.Request.Context(), student, id); err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, nil, "Unenrolled")
}

// ListStudents returns the course roster.
// @Router /courses/{id}/students [get]
func (h *CourseHandler) ListStudents(c *gin.Context) {
	actor := mustUser(c)
	if actor == nil {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	students, err := h.courseService.ListStudents(c.Request.Context(), actor, id)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, MapUsersToResponse(students), "")
}
