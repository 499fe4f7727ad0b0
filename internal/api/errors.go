package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/nailpos-server/internal/models"
	"github.com/rongwang/nailpos-server/internal/service"
)

// respondError maps service errors onto status codes. Validation failures
// echo the submitted input so the caller can redisplay it.
func (h *Handler) respondError(c *gin.Context, err error, input interface{}) {
	resp := models.ErrorResponse{
		Status:  "error",
		TraceID: c.GetString(ctxTraceID),
	}
	status := http.StatusInternalServerError

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		resp.Code = "VALIDATION_FAILED"
		resp.Message = "Please correct the highlighted problems"
		resp.Problems = verr.Problems
		resp.Input = input
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
		resp.Code = "NOT_FOUND"
		resp.Message = "Resource not found"
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		resp.Code = "INVALID_CREDENTIALS"
		resp.Message = "Invalid email or password"
	case errors.Is(err, service.ErrLockedOut):
		status = http.StatusLocked
		resp.Code = "LOCKED_OUT"
		resp.Message = "Account is locked out, try again later"
	case errors.Is(err, service.ErrDependency):
		h.logger.Error("dependency failure: %v", err)
		status = http.StatusServiceUnavailable
		resp.Code = "DEPENDENCY_UNAVAILABLE"
		resp.Message = "A required service is unavailable, please retry"
	default:
		h.logger.Error("request %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		resp.Code = "INTERNAL_ERROR"
		resp.Message = "Internal server error"
	}

	c.JSON(status, resp)
}

func (h *Handler) respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Status:  "error",
		Code:    "INVALID_REQUEST",
		Message: err.Error(),
		TraceID: c.GetString(ctxTraceID),
	})
}
