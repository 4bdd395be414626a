package api

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/repository"
	"alcyxob/learnhub/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ForumHandler serves one kind of discussion: course threads or global posts.
// Both share the comment, reply and reaction endpoints.
type ForumHandler struct {
	forumService service.ForumService
	kind         domain.DiscussionKind
	log          *zap.Logger
}

func NewForumHandler(forumService service.ForumService, kind domain.DiscussionKind, log *zap.Logger) *ForumHandler {
	return &ForumHandler{forumService: forumService, kind: kind, log: log}
}

// --- DTOs ---

type DiscussionRequest struct {
	Title   string   `json:"title" binding:"required,max=200"`
	Content string   `json:"content" binding:"required,max=20000"`
	Tags    []string `json:"tags" binding:"max=10,dive,max=40"`
}

type CommentRequest struct {
	Content string `json:"content" binding:"required,max=10000"`
}

type ReplyRequest struct {
	Content       string `json:"content" binding:"required,max=10000"`
	ParentReplyID string `json:"parentReplyId" binding:"omitempty,objectid"`
}

type ReactionRequest struct {
	Type      domain.ReactionType `json:"type" binding:"required"`
	Target    string              `json:"target" binding:"omitempty,oneof=thread post comment"`
	CommentID string              `json:"commentId" binding:"omitempty,objectid"`
}

func (r DiscussionRequest) input() service.DiscussionInput {
	return service.DiscussionInput{Title: r.Title, Content: r.Content, Tags: r.Tags}
}

// --- Handler Methods ---

// CreateThread opens a thread under the course in the path.
// @Router /courses/{id}/threads [post]
func (h *ForumHandler) CreateThread(c *gin.Context) {
	author := mustUser(c)
	if author == nil {
		return
	}
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req DiscussionRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.forumService.CreateThread(c.Request.Context(), author, courseID, req.input())
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, d, "Thread created")
}

// ListThreads
// @Router /courses/{id}/threads [get]
func (h *ForumHandler) ListThreads(c *gin.Context) {
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	list, err := h.forumService.List(c.Request.Context(), domain.KindThread, repository.DiscussionFilter{
		CourseID: &courseID,
		Tag:      c.Query("tag"),
	})
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, list, "")
}

// CreatePost
// @Router /posts [post]
func (h *ForumHandler) CreatePost(c *gin.Context) {
	author := mustUser(c)
	if author == nil {
		return
	}
	var req DiscussionRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.forumService.CreatePost(c.Request.Context(), author, req.input())
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, d, "Post created")
}

// ListPosts accepts an optional ?tag= filter.
// @Router /posts [get]
func (h *ForumHandler) ListPosts(c *gin.Context) {
	list, err := h.forumService.List(c.Request.Context(), domain.KindPost, repository.DiscussionFilter{Tag: c.Query("tag")})
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, list, "")
}

// Get
// @Router /threads/{id} [get]
// @Router /posts/{id} [get]
func (h *ForumHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	d, err := h.forumService.Get(c.Request.Context(), h.kind, id)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, d, "")
}

// Delete
// @Router /threads/{id} [delete]
// @Router /posts/{id} [delete]
func (h *ForumHandler) Delete(c *gin.Context) {
	actor := mustUser(c)
	if actor == nil {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.forumService.Delete(c.Request.Context(), h.kind, actor, id); err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, nil, "Deleted")
}

// AddComment
// @Router /threads/{id}/comments [post]
func (h *ForumHandler) AddComment(c *gin.Context) {
	actor := mustUser(c)
	if actor == nil {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CommentRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.forumService.AddComment(c.Request.Context(), h.kind, actor, id, req.Content)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, d, "Comment added")
}

// EditComment
// @Router /threads/{id}/comments/{commentId} [put]
func (h *ForumHandler) EditComment(c *gin.Context) {
	actor := mustUser(c)
	if actor == nil {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	commentID, ok := paramID(c, "commentId")
	if !ok {
		return
	}
	var req CommentRequest
	if !bindJSON(c, &req) {
		return
	}
	d, err := h.forumService.EditComment(c.Request.Context(), h.kind, actor, id, commentID, req.Content)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, d, "Comment updated")
}

// DeleteComment
// @Router /threads/{id}/comments/{commentId} [delete]
func (h *ForumHandler) DeleteComment(c *gin.Context) {
	actor := mustUser(c)
	if actor == nil {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	commentID, ok := paramID(c, "commentId")
	if !ok {
		return
	}
	d, err := h.forumService.DeleteComment(c.Request.Context(), h.kind, actor, id, commentID)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, d, "Comment deleted")
}

// AddReply nests under the comment, or under parentReplyId when given.
// @Router /threads/{id}/comments/{commentId}/replies [post]
func (h *ForumHandler) AddReply(c *gin.Context) {
	actor := mustUser(c)
	if actor == nil {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	commentID, ok := paramID(c, "commentId")
	if !ok {
		return
	}
	var req ReplyRequest
	if !bindJSON(c, &req) {
		return
	}
	var parentID *primitive.ObjectID
	if req.ParentReplyID != "" {
		pid, _ := objectID(req.ParentReplyID)
		parentID = &pid
	}
	d, err := h.forumService.AddReply(c.Request.Context(), h.kind, actor, id, commentID, parentID, req.Content)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, d, "Reply added")
}

// ToggleReaction
// @Router /threads/{id}/reactions [post]
func (h *ForumHandler) ToggleReaction(c *gin.Context) {
	actor := mustUser(c)
	if actor == nil {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ReactionRequest
	if !bindJSON(c, &req) {
		return
	}
	in := service.ReactionInput{Type: req.Type, Target: req.Target}
	if req.CommentID != "" {
		in.CommentID, _ = objectID(req.CommentID)
	}
	d, err := h.forumService.ToggleReaction(c.Request.Context(), h.kind, actor, id, in)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, d, "Reaction toggled")
}
