package api

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/service"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipartOverhead is allowed on top of the file size for form boundaries and headers.
const multipartOverhead = 64 << 10

type SubmissionHandler struct {
	submissionService service.SubmissionService
	maxBytes          int64
	log               *zap.Logger
}

func NewSubmissionHandler(submissionService service.SubmissionService, maxBytes int64, log *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService, maxBytes: maxBytes, log: log}
}

type GradeRequest struct {
	Grade    domain.Grade `json:"grade" binding:"required,oneof=P F p f"`
	Feedback string       `json:"feedback" binding:"max=5000"`
}

// Submit accepts a multipart form with a single PDF in the "file" field.
// @Router /assignments/{id}/submission [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	student := mustUser(c)
	if student == nil {
		return
	}
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithError(c, http.StatusBadRequest, service.Message(service.ErrFileTooLarge))
			return
		}
		abortWithError(c, http.StatusBadRequest, "A PDF file is required in the 'file' field")
		return
	}
	if fileHeader.Size > h.maxBytes {
		abortWithError(c, http.StatusBadRequest, service.Message(service.ErrFileTooLarge))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	sub, err := h.submissionService.Submit(c.Request.Context(), student, assignmentID, service.Upload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, sub, "Submission received")
}

// MySubmissions
// @Router /submissions/mine [get]
func (h *SubmissionHandler) MySubmissions(c *gin.Context) {
	student := mustUser(c)
	if student == nil {
		return
	}
	subs, err := h.submissionService.MySubmissions(c.Request.Context(), student)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, subs, "")
}

// AssignmentSubmissions
// @Router /assignments/{id}/submissions [get]
func (h *SubmissionHandler) AssignmentSubmissions(c *gin.Context) {
	actor := mustUser(c)
	if actor == nil {
		return
	}
	assignmentID, ok := paramID(c, "id")
	if !ok {
		return
	}
	subs, err := h.submissionService.AssignmentSubmissions(c.Request.Context(), actor, assignmentID)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, subs, "")
}

// GetSubmission
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	actor := mustUser(c)
	if actor == nil {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sub, err := h.submissionService.GetSubmission(c.Request.Context(), actor, id)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, sub, "")
}

// Download streams the stored file verbatim.
// @Router /submissions/{id}/file [get]
func (h *SubmissionHandler) Download(c *gin.Context) {
	actor := mustUser(c)
	if actor == nil {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	dl, err := h.submissionService.Download(c.Request.Context(), actor, id)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	defer dl.Body.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": dl.FileName})
	c.DataFromReader(http.StatusOK, dl.Size, dl.ContentType, dl.Body, map[string]string{
		"Content-Disposition": disposition,
	})
}

// Grade
// @Router /submissions/{id}/grade [post]
func (h *SubmissionHandler) Grade(c *gin.Context) {
	actor := mustUser(c)
	if actor == nil {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req GradeRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.submissionService.Grade(c.Request.Context(), actor, id, req.Grade, req.Feedback)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, sub, "Submission graded")
}
