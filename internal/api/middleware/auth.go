package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kestrelworks/docvault/backend/internal/models"
	"github.com/kestrelworks/docvault/backend/internal/services"
)

// CurrentUserKey is the gin context key holding the authenticated principal.
const CurrentUserKey = "currentUser"

// AuthCookieName is the session cookie set by the login handler.
const AuthCookieName = "auth_token"

// tokenFromRequest pulls the session token from the Authorization header or
// the session cookie.
func tokenFromRequest(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(AuthCookieName); err == nil {
		return cookie
	}
	return ""
}

func resolvePrincipal(c *gin.Context, tokens *services.TokenService, users *services.UserService) *models.User {
	token := tokenFromRequest(c)
	if token == "" {
		return nil
	}

	claims, err := tokens.Verify(token)
	if err != nil {
		return nil
	}

	// Deactivated accounts fail resolution even with a still-valid token.
	user, err := users.GetActiveByUUID(claims.Subject)
	if err != nil {
		return nil
	}
	return user
}

// Auth requires a valid session and loads the principal into the context.
func Auth(tokens *services.TokenService, users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := resolvePrincipal(c, tokens, users)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// OptionalAuth loads the principal when a valid session is present but lets
// anonymous requests through; public-document reads depend on this.
func OptionalAuth(tokens *services.TokenService, users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := resolvePrincipal(c, tokens, users); user != nil {
			c.Set(CurrentUserKey, user)
		}
		c.Next()
	}
}

// RequireAdmin aborts unless the current principal is an admin. Must run
// after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated principal, or nil for anonymous
// requests.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CurrentUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
