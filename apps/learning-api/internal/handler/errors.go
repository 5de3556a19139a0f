package handler

import (
	"errors"
	"net/http"

	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/domain"
	"github.com/archieQa/backend-ZgjidhjeAI/apps/learning-api/internal/dto"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/logger"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/middleware"
	"github.com/archieQa/backend-ZgjidhjeAI/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const internalErrorMessage = "Internal Server Error"

// statusForKind maps an error kind to its HTTP status
func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindQuotaExceeded:
		return http.StatusTooManyRequests
	case domain.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorBody returns the status, code and client-safe message for err
func errorBody(err error) (int, string, string) {
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind == domain.KindInternal && de.Message == "" {
		return http.StatusInternalServerError, string(domain.KindInternal), internalErrorMessage
	}
	return statusForKind(de.Kind), string(de.Kind), de.Message
}

// respondError writes the error envelope for err. Server-side failures
// are logged and attached to the gin context for error reporting; their
// cause never reaches the client.
func respondError(c *gin.Context, err error) {
	respondErrorWithDetails(c, err, nil)
}

func respondErrorWithDetails(c *gin.Context, err error, details interface{}) {
	status, code, message := errorBody(err)

	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		logger.Get().ErrorContext(c.Request.Context(), "request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	c.AbortWithStatusJSON(status, response.Response{
		Success: false,
		Error: &response.ErrorData{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondQuotaExceeded adds the plan and next refill time to a denial
func respondQuotaExceeded(c *gin.Context, err error, decision *domain.Decision) {
	if decision == nil {
		respondError(c, err)
		return
	}
	respondErrorWithDetails(c, err, &dto.QuotaExceededDetails{
		Plan:         decision.Plan,
		TokensLeft:   decision.TokensLeft,
		NextRefillAt: decision.NextRefillAt,
	})
}

// bindJSON decodes the request body, answering 400 on failure
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.BadRequest(c, "Invalid request body")
		c.Abort()
		return false
	}
	return true
}

// invalid answers 400 with message
func invalid(c *gin.Context, message string) {
	respondError(c, domain.NewError(domain.KindInvalidInput, message))
}
