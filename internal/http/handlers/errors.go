package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"traintrack/internal/domain"
	"traintrack/internal/http/middleware"
	"traintrack/internal/utils"
)

func respondError(c *gin.Context, status int, code, message string) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, gin.H{
		"status":     "error",
		"message":    message,
		"code":       code,
		"request_id": middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsInconsistency(err):
		utils.LoggerFromContext(c.Request.Context()).WithError(err).Error("inventory inconsistency")
		respondError(c, http.StatusInternalServerError, "inconsistency", "booking state could not be fully updated, support has been notified")
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error())
	case domain.IsInsufficientAvailability(err):
		respondError(c, http.StatusBadRequest, "insufficient_availability", err.Error())
	case domain.IsForbidden(err):
		respondError(c, http.StatusForbidden, "forbidden", err.Error())
	case domain.IsAlreadyCancelled(err):
		respondError(c, http.StatusBadRequest, "already_cancelled", err.Error())
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, "unauthorized", err.Error())
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error())
	default:
		utils.LoggerFromContext(c.Request.Context()).WithError(err).Error("unhandled error")
		respondError(c, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
