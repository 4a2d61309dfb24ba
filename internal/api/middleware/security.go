package middleware

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityHeadersConfig tunes the security headers middleware.
type SecurityHeadersConfig struct {
	// IsDevelopment relaxes settings that break local plain-HTTP workflows.
	IsDevelopment bool
	// ExtraCSPDirectives overrides or adds Content-Security-Policy directives.
	ExtraCSPDirectives map[string]string
}

// SecurityHeaders sets browser security headers on every response. The API
// serves JSON and CSV attachments, so the policy is locked down hard; anything
// embedding or scripting a response is not a supported client.
func SecurityHeaders(cfg SecurityHeadersConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Security-Policy", buildCSP(cfg))

		// HSTS only outside development; local servers run plain HTTP.
		if !cfg.IsDevelopment {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Cross-Origin-Opener-Policy", "same-origin")
		c.Header("Cross-Origin-Resource-Policy", "same-origin")

		c.Next()
	}
}

func buildCSP(cfg SecurityHeadersConfig) string {
	directives := map[string]string{
		"default-src": "'none'",
		"frame-src":   "'none'",
		"object-src":  "'none'",
		"base-uri":    "'none'",
		"form-action": "'none'",
	}

	for key, value := range cfg.ExtraCSPDirectives {
		directives[key] = value
	}

	// Stable ordering so the header is deterministic across requests.
	keys := make([]string, 0, len(directives))
	for key := range directives {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", key, directives[key]))
	}
	return strings.Join(parts, "; ")
}
