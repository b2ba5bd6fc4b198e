package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appsync "github.com/ecommanager/backend/internal/application/sync"
	"github.com/ecommanager/backend/internal/domain/channel"
	"github.com/ecommanager/backend/internal/domain/order"
	"github.com/ecommanager/backend/internal/domain/shared"
	"github.com/ecommanager/backend/internal/domain/shipping"
	"github.com/ecommanager/backend/internal/interfaces/http/dto"
	"github.com/ecommanager/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// getTenantID extracts the tenant ID from the X-Tenant-ID header. Tenant
// resolution proper lives in the surrounding platform; this service only
// scopes its queries by the ID it is handed.
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	tenantID := c.GetHeader("X-Tenant-ID")
	if tenantID == "" {
		return uuid.Nil, errors.New("handler: X-Tenant-ID header is required")
	}
	return uuid.Parse(tenantID)
}

// parseIDParam parses the :id path parameter as a UUID
func parseIDParam(c *gin.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

// parseUUIDParam parses a named path parameter as a UUID
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the given status
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError maps domain errors onto the error-code taxonomy
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	code := dto.ErrCodeInternal
	message := "an unexpected error occurred"

	switch {
	case errors.Is(err, channel.ErrChannelNotFound),
		errors.Is(err, shipping.ErrShipmentNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, shared.ErrNotFound):
		code, message = dto.ErrCodeNotFound, err.Error()
	case errors.Is(err, channel.ErrSyncAlreadyRunning):
		code, message = dto.ErrCodeSyncRunning, err.Error()
	case errors.Is(err, shipping.ErrDuplicateShipment):
		code, message = dto.ErrCodeConflict, err.Error()
	case errors.Is(err, channel.ErrChannelNotConnected),
		errors.Is(err, channel.ErrChannelNoCredentials),
		errors.Is(err, channel.ErrChannelNoStoreURL),
		errors.Is(err, shipping.ErrCourierNotConfigured),
		errors.Is(err, shipping.ErrLabelNotAvailable),
		errors.Is(err, appsync.ErrOrderNotPushable):
		code, message = dto.ErrCodeInvalidState, err.Error()
	case errors.Is(err, channel.ErrProviderNotSupported),
		errors.Is(err, shipping.ErrCourierNotRegistered),
		errors.Is(err, shipping.ErrMissingCredentials),
		errors.Is(err, shared.ErrInvalidInput):
		code, message = dto.ErrCodeBadRequest, err.Error()
	case errors.Is(err, appsync.ErrProviderRejected),
		errors.Is(err, shipping.ErrCourierRequestFailed),
		errors.Is(err, shipping.ErrCourierInvalidResponse):
		code, message = dto.ErrCodeProviderFailed, err.Error()
	}

	if code == dto.ErrCodeInternal {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			code, message = dto.ErrCodeValidation, domainErr.Message
		}
	}

	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// errorIsAny reports whether err matches any of the given targets
func errorIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
