package api

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LessonHandler struct {
	lessonService service.LessonService
	log           *zap.Logger
}

func NewLessonHandler(lessonService service.LessonService, log *zap.Logger) *LessonHandler {
	return &LessonHandler{lessonService: lessonService, log: log}
}

type LessonRequest struct {
	UnitCode    string              `json:"unitCode" binding:"required,unitcode"`
	Title       string              `json:"title" binding:"required,max=200"`
	Description string              `json:"description" binding:"max=5000"`
	Objectives  []string            `json:"objectives" binding:"max=50,dive,max=500"`
	ReadingList []string            `json:"readingList" binding:"max=50,dive,max=500"`
	Status      domain.LessonStatus `json:"status" binding:"omitempty,oneof=draft active archived"`
	Credits     int                 `json:"credits" binding:"min=0,max=12"`
}

func (r LessonRequest) input() service.LessonInput {
	return service.LessonInput{
		UnitCode:    r.UnitCode,
		Title:       r.Title,
		Description: r.Description,
		Objectives:  r.Objectives,
		ReadingList: r.ReadingList,
		Status:      r.Status,
		Credits:     r.Credits,
	}
}

// CreateLesson
// @Router /courses/{id}/lessons [post]
func (h *LessonHandler) CreateLesson(c *gin.Context) {
	actor := mustUser(c)
	if actor == nil {
		return
	}
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req LessonRequest
	if !bindJSON(c, &req) {
		return
	}
	lesson, err := h.lessonService.CreateLesson(c.Request.Context(), actor, courseID, req.input())
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, lesson, "Lesson created")
}

// ListLessons
// @Router /courses/{id}/lessons [get]
func (h *LessonHandler) ListLessons(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	lessons, err := h.lessonService.ListLessons(c.Request.Context(), courseID)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, lessons, "")
}

// GetLesson
// @Router /lessons/{id} [get]
func (h *LessonHandler) GetLesson(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	lesson, err := h.lessonService.GetLesson(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, lesson, "")
}

// UpdateLesson
// @Router /lessons/{id} [put]
func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	actor := mustUser(c)
	if actor == nil {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req LessonRequest
	if !bindJSON(c, &req) {
		return
	}
	lesson, err := h.lessonService.UpdateLesson(c.Request.Context(), actor, id, req.input())
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, lesson, "Lesson updated")
}

// DeleteLesson
// @Router /lessons/{id} [delete]
func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	actor := mustUser(c)
	if actor == nil {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.lessonService.DeleteLesson(c.Request.Context(), actor, id); err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, nil, "Lesson deleted")
}
