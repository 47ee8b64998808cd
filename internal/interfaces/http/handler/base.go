// Package handler contains the HTTP handlers for the sync API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/channelsync/backend/internal/domain/channel"
	"github.com/channelsync/backend/internal/interfaces/http/dto"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	requestID := getRequestID(c)
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// Conflict sends a 409 conflict response
func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	h.Error(c, http.StatusConflict, dto.ErrCodeConflict, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleDomainError converts domain errors to HTTP responses
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	code := domainErrorCode(err)
	h.Error(c, dto.GetHTTPStatus(code), code, err.Error())
}

// domainErrorCode maps a domain sentinel error to its API error code.
func domainErrorCode(err error) string {
	switch {
	case errors.Is(err, channel.ErrSyncInProgress):
		return dto.ErrCodeSyncInProgress
	case errors.Is(err, channel.ErrMappingAlreadyExists):
		return dto.ErrCodeAlreadyExists
	case errors.Is(err, channel.ErrMappingNotFound),
		errors.Is(err, channel.ErrJobNotFound),
		errors.Is(err, channel.ErrPlatformNotFound):
		return dto.ErrCodeNotFound
	case errors.Is(err, channel.ErrMappingInactive),
		errors.Is(err, channel.ErrJobTerminal),
		errors.Is(err, channel.ErrPlatformConflict):
		return dto.ErrCodeConflict
	case errors.Is(err, channel.ErrExchangeRateUnavailable):
		return dto.ErrCodeRateUnavailable
	case errors.Is(err, channel.ErrPlatformUnavailable),
		errors.Is(err, channel.ErrPlatformRateLimited),
		errors.Is(err, channel.ErrPlatformAuth),
		errors.Is(err, channel.ErrStaleReference):
		return dto.ErrCodePlatformUnavailable
	case errors.Is(err, channel.ErrValidation),
		errors.Is(err, channel.ErrInvalidSKU),
		errors.Is(err, channel.ErrInvalidMargin),
		errors.Is(err, channel.ErrInvalidRef),
		errors.Is(err, channel.ErrInvalidPlatform),
		errors.Is(err, channel.ErrInvalidRate),
		errors.Is(err, channel.ErrManualRateReason):
		return dto.ErrCodeValidation
	default:
		return dto.ErrCodeInternal
	}
}
