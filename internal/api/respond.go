package api

import (
	"alcyxob/learnhub/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// envelope is the body of every JSON response.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respond(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, envelope{Success: true, Data: data, Message: message})
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, envelope{Success: false, Error: message})
}

var kindStatus = map[service.Kind]int{
	service.KindValidation:   http.StatusBadRequest,
	service.KindUnauthorized: http.StatusUnauthorized,
	service.KindForbidden:    http.StatusForbidden,
	service.KindNotFound:     http.StatusNotFound,
	service.KindConflict:     http.StatusConflict,
}

// handleServiceError maps a service error to its status code. Anything
// unclassified is logged and reported as a generic 500.
func handleServiceError(c *gin.Context, log *zap.Logger, err error) {
	if code, ok := kindStatus[service.KindOf(err)]; ok {
		abortWithError(c, code, service.Message(err))
		return
	}
	log.Error("request failed",
		zap.String("route", c.FullPath()),
		zap.String("requestId", c.GetString(ContextRequestIDKey)),
		zap.Error(err))
	abortWithError(c, http.StatusInternalServerError, service.Message(err))
}

// paramID parses an ObjectID path parameter, aborting with 400 when malformed.
func paramID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return primitive.NilObjectID, false
	}
	return id, true
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return false
	}
	return true
}

// objectID parses a hex id that binding has already validated.
func objectID(hex string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(hex)
}
