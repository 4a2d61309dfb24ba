package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kestrelworks/docvault/backend/internal/api/middleware"
	"github.com/kestrelworks/docvault/backend/internal/services"
)

// respondError maps the service error taxonomy onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrAuthentication):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		middleware.GetRequestLogger(c).WithError(err).Error("request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

// requestMeta derives audit attribution from the request: client IP via
// X-Forwarded-For, then X-Real-IP, then the remote address.
func requestMeta(c *gin.Context) services.RequestMeta {
	ip := c.Request.RemoteAddr
	if host := c.ClientIP(); host != "" {
		ip = host
	}
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" && !strings.EqualFold(first, "unknown") {
			ip = first
		}
	} else if realIP := c.GetHeader("X-Real-IP"); realIP != "" && !strings.EqualFold(realIP, "unknown") {
		ip = realIP
	}

	return services.RequestMeta{
		IPAddress: ip,
		UserAgent: c.GetHeader("User-Agent"),
	}
}
