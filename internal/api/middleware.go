package api

import (
	"alcyxob/learnhub/internal/domain"
	"alcyxob/learnhub/internal/identity"
	"alcyxob/learnhub/internal/metrics"
	"alcyxob/learnhub/internal/policy"
	"alcyxob/learnhub/internal/service"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Constants for context keys
const (
	ContextUserKey      = "user"
	ContextRequestIDKey = "requestID"
	RequestIDHeader     = "X-Request-ID"
)

// RequestID reuses the caller's request id or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("requestId", c.GetString(ContextRequestIDKey)),
			zap.String("clientIp", c.ClientIP()),
		}
		if u, ok := c.Get(ContextUserKey); ok {
			fields = append(fields, zap.String("userId", u.(*domain.User).ID.Hex()))
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// Metrics records request counts and latency by route template.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// AuthMiddleware verifies the bearer session token and loads the local user.
// The stored role wins over the role claim in the token.
func AuthMiddleware(verifier *identity.Verifier, users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		claims, err := verifier.Verify(parts[1])
		if err != nil {
			if errors.Is(err, identity.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, "Token has expired")
			} else {
				abortWithError(c, http.StatusUnauthorized, "Invalid token")
			}
			return
		}

		user, err := users.Resolve(c.Request.Context(), claims.Subject)
		if err != nil {
			if service.KindOf(err) == service.KindUnauthorized {
				abortWithError(c, http.StatusUnauthorized, "User is not provisioned")
				return
			}
			abortWithError(c, http.StatusInternalServerError, "Failed to load user")
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// RequireCapability rejects users whose role does not grant capability.
// Must run AFTER AuthMiddleware.
func RequireCapability(capability policy.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			// This should not happen if AuthMiddleware ran correctly
			abortWithError(c, http.StatusInternalServerError, "User not found in context")
			return
		}
		if !policy.Allows(user.Role, capability) {
			abortWithError(c, http.StatusForbidden, fmt.Sprintf("Access denied: Role '%s' does not have permission", user.Role))
			return
		}
		c.Next()
	}
}

// currentUser returns the user placed in the context by AuthMiddleware.
func currentUser(c *gin.Context) (*domain.User, bool) {
	raw, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := raw.(*domain.User)
	return user, ok
}

// mustUser is currentUser for handlers behind AuthMiddleware.
func mustUser(c *gin.Context) *domain.User {
	user, ok := currentUser(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token")
		return nil
	}
	return user
}
