package api

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler serves the current user and admin user management.
type UserHandler struct {
	userService  service.UserService
	themeService service.ThemeService
	log          *zap.Logger
}

func NewUserHandler(userService service.UserService, themeService service.ThemeService, log *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, themeService: themeService, log: log}
}

// --- Request/Response Structs ---

// UserResponse leaves out the identity provider id.
type UserResponse struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Email             string      `json:"email"`
	Role              domain.Role `json:"role"`
	CreatedAt         time.Time   `json:"createdAt"`
	EnrolledCourseIDs []string    `json:"enrolledCourseIds,omitempty"`
	ThemeID           *string     `json:"themeId,omitempty"`
}

type ChangeRoleRequest struct {
	Role domain.Role `json:"role" binding:"required,oneof=student teacher admin"`
}

type SelectThemeRequest struct {
	ThemeID string `json:"themeId" binding:"required,objectid"`
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	resp := UserResponse{
		ID:        user.ID.Hex(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
	if len(user.EnrolledCourseIDs) > 0 {
		resp.EnrolledCourseIDs = make([]string, len(user.EnrolledCourseIDs))
		for i, id := range user.EnrolledCourseIDs {
			resp.EnrolledCourseIDs[i] = id.Hex()
		}
	}
	if user.ThemeID != nil {
		themeID := user.ThemeID.Hex()
		resp.ThemeID = &themeID
	}
	return resp
}

// MapUsersToResponse converts a slice of domain.User to UserResponse DTOs.
func MapUsersToResponse(users []domain.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = MapUserToResponse(&users[i])
	}
	return out
}

// --- Handler Methods ---

// Me returns the authenticated user.
// @Router /me [get]
func (h *UserHandler) Me(c *gin.Context) {
	user := mustUser(c)
	if user == nil {
		return
	}
	respond(c, http.StatusOK, MapUserToResponse(user), "")
}

// SelectTheme stores the caller's theme choice.
// @Router /me/theme [put]
func (h *UserHandler) SelectTheme(c *gin.Context) {
	user := mustUser(c)
	if user == nil {
		return
	}
	var req SelectThemeRequest
	if !bindJSON(c, &req) {
		return
	}
	themeID, _ := objectID(req.ThemeID)
	updated, err := h.themeService.SelectTheme(c.Request.Context(), user, themeID)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, MapUserToResponse(updated), "Theme selected")
}

// ListUsers lists users, optionally filtered with ?role=.
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context(), domain.Role(c.Query("role")))
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, MapUsersToResponse(users), "")
}

// ChangeRole sets another user's role.
// @Router /admin/users/{id}/role [put]
func (h *UserHandler) ChangeRole(c *gin.Context) {
	actor := mustUser(c)
	if actor == nil {
		return
	}
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ChangeRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	updated, err := h.userService.ChangeRole(c.Request.Context(), actor, userID, req.Role)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, MapUserToResponse(updated), "Role updated")
}
