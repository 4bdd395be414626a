package api

import (
	"alcyxob/learnhub/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ThemeHandler struct {
	themeService service.ThemeService
	log          *zap.Logger
}

func NewThemeHandler(themeService service.ThemeService, log *zap.Logger) *ThemeHandler {
	return &ThemeHandler{themeService: themeService, log: log}
}

type CreateThemeRequest struct {
	HexColor    string `json:"hexColor" binding:"required,hexcolor"`
	Description string `json:"description" binding:"max=200"`
}

// CreateTheme
// @Router /themes [post]
func (h *ThemeHandler) CreateTheme(c *gin.Context) {
	var req CreateThemeRequest
	if !bindJSON(c, &req) {
		return
	}
	theme, err := h.themeService.CreateTheme(c.Request.Context(), req.HexColor, req.Description)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusCreated, theme, "Theme created")
}

// ListThemes
// @Router /themes [get]
func (h *ThemeHandler) ListThemes(c *gin.Context) {
	themes, err := h.themeService.ListThemes(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, themes, "")
}

// DeleteTheme
// @Router /themes/{id} [delete]
func (h *ThemeHandler) DeleteTheme(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.themeService.DeleteTheme(c.Request.Context(), id); err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	respond(c, http.StatusOK, nil, "Theme deleted")
}
