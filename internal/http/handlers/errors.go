package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"providerdash/internal/domain"
	"providerdash/internal/http/middleware"
)

func respondError(c *gin.Context, status int, code, message string) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, gin.H{
		"error":      message,
		"code":       code,
		"message":    message,
		"request_id": middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses. Every failure
// stays a readable inline message; nothing escalates to a crash.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
	case domain.IsAuth(err):
		respondError(c, http.StatusUnauthorized, "auth_error", err.Error())
	case domain.IsPermissionDenied(err):
		respondError(c, http.StatusForbidden, "permission_denied", err.Error())
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error())
	case domain.IsUnavailable(err):
		respondError(c, http.StatusBadGateway, "upstream_unavailable", err.Error())
	case domain.IsConfig(err):
		respondError(c, http.StatusServiceUnavailable, "not_configured", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}
