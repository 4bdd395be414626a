package api

import (
	"alcyxob/learnhub/internal/identity"
	"alcyxob/learnhub/internal/service"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

const maxWebhookBytes = 1 << 20

// WebhookHandler receives user lifecycle events from the identity provider.
type WebhookHandler struct {
	userService service.UserService
	secret      string
	log         *zap.Logger
}

func NewWebhookHandler(userService service.UserService, secret string, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{userService: userService, secret: secret, log: log}
}

// Identity verifies the body signature before decoding the event.
// @Router /webhooks/identity [post]
func (h *WebhookHandler) Identity(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Failed to read body")
		return
	}
	if !identity.VerifySignature(h.secret, body, c.GetHeader(identity.SignatureHeader)) {
		h.log.Warn("rejected identity webhook", zap.String("clientIp", c.ClientIP()))
		abortWithError(c, http.StatusUnauthorized, "Invalid webhook signature")
		return
	}

	var evt identity.WebhookEvent
	if err := binding.JSON.BindBody(body, &evt); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	outcome, err := h.userService.HandleIdentityEvent(c.Request.Context(), evt)
	if err != nil {
		handleServiceError(c, h.log, err)
		return
	}
	code := http.StatusOK
	if outcome == service.OutcomeCreated {
		code = http.StatusCreated
	}
	respond(c, code, gin.H{"type": evt.Type, "outcome": outcome}, "")
}
