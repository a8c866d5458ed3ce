package utils

import (
	"context"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const loggerKey = "logger"

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Reason  string      `json:"reason,omitempty"`
	Details []string    `json:"details,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: c.GetString("trace_id"),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	RespondErrorWithReason(c, code, "", message, nil)
}

func RespondErrorWithReason(c *gin.Context, code int, reason, message string, details []string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		Reason:  reason,
		Details: details,
		TraceID: c.GetString("trace_id"),
	})
}

// SetRequestLogger stores the request-scoped logger used by HandleServiceError.
func SetRequestLogger(c *gin.Context, logger *zap.Logger) {
	c.Set(loggerKey, logger)
}

func requestLogger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if logger, ok := v.(*zap.Logger); ok {
			return logger
		}
	}
	return zap.NewNop()
}

func HandleServiceError(c *gin.Context, err error) {
	var (
		genErr      *GenerationError
		detailedErr *DetailedError
		providerErr ProviderFailure
	)
	log := requestLogger(c)

	switch {
	case errors.As(err, &detailedErr) && errors.Is(err, ErrInvalidInput):
		RespondErrorWithReason(c, http.StatusBadRequest, ReasonBadRequest, ErrInvalidInput.Error(), detailedErr.Details)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidTodoStatus):
		RespondErrorWithReason(c, http.StatusBadRequest, ReasonBadRequest, err.Error(), nil)
	case errors.Is(err, ErrUnauthorized):
		RespondErrorWithReason(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired token", nil)
	case errors.Is(err, ErrTripNotFound):
		RespondErrorWithReason(c, http.StatusNotFound, ReasonTripNotFound, "Trip not found", nil)
	case errors.Is(err, ErrTodoNotFound):
		RespondErrorWithReason(c, http.StatusNotFound, ReasonTodoNotFound, "Todo not found", nil)
	case errors.As(err, &genErr):
		log.Warn("itinerary generation failed", zap.String("reason", genErr.Reason), zap.Strings("details", genErr.Details))
		RespondErrorWithReason(c, http.StatusBadGateway, genErr.Reason, "The planner did not return a usable itinerary", genErr.Details)
	case errors.As(err, &providerErr) && providerErr.NoProviderAvailable():
		log.Error("no usable LLM provider", zap.Error(err))
		RespondErrorWithReason(c, http.StatusServiceUnavailable, ReasonNoProvider, "No language model is reachable right now", nil)
	case errors.Is(err, context.DeadlineExceeded):
		RespondErrorWithReason(c, http.StatusGatewayTimeout, "timeout", "Request timed out", nil)
	case errors.Is(err, ErrCacheUnavailable):
		log.Error("cache unavailable", zap.Error(err))
		RespondErrorWithReason(c, http.StatusServiceUnavailable, "cache_unavailable", "Queue is unavailable", nil)
	case errors.Is(err, ErrTripPersistFailed):
		reportError(c, err)
		RespondErrorWithReason(c, http.StatusInternalServerError, ReasonTripPersistFailed, err.Error(), nil)
	case errors.Is(err, ErrDatabaseError):
		reportError(c, err)
		RespondErrorWithReason(c, http.StatusInternalServerError, ReasonInternal, "Internal server error", nil)
	default:
		reportError(c, err)
		RespondErrorWithReason(c, http.StatusInternalServerError, ReasonInternal, "Internal server error", nil)
	}
}

func reportError(c *gin.Context, err error) {
	requestLogger(c).Error("request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	sentry.CaptureException(err)
}
