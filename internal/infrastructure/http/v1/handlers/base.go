package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"freshsave/internal/core/apperror"
	"freshsave/internal/core/id"
	"freshsave/internal/infrastructure/http/v1/dto"
)

// BaseHandler provides common handler utilities.
type BaseHandler struct {
	now        func() time.Time
	windowDays int
}

// NewBaseHandler creates a base handler that classifies expiry with the
// given window and clock. A nil clock uses time.Now.
func NewBaseHandler(windowDays int, now func() time.Time) *BaseHandler {
	if now == nil {
		now = time.Now
	}
	return &BaseHandler{now: now, windowDays: windowDays}
}

// BindJSON binds and validates JSON request body.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds and validates query parameters.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// PathID returns the :id parameter, failing the request if it is blank.
func (h *BaseHandler) PathID(c *gin.Context) (string, bool) {
	itemID := strings.TrimSpace(c.Param("id"))
	if id.IsBlank(itemID) {
		h.Error(c, apperror.NewInvalidInput("item id is required"))
		return "", false
	}
	return itemID, true
}

// Error registers err on the gin context and aborts the request.
// The JSON body is produced by middleware.ErrorHandler.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Created sends 201 response with ID.
func (h *BaseHandler) Created(c *gin.Context, newID string) {
	c.JSON(http.StatusCreated, dto.IDResponse{ID: newID})
}

// OK sends 200 response with data.
func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// NoContent sends 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Accepted acknowledges work started in the background.
func (h *BaseHandler) Accepted(c *gin.Context, message string) {
	c.JSON(http.StatusAccepted, dto.SuccessResponse{Success: true, Message: message})
}
