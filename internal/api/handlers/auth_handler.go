package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kestrelworks/docvault/backend/internal/api/middleware"
	"github.com/kestrelworks/docvault/backend/internal/services"
)

// AuthHandler exposes registration, login and session endpoints.
type AuthHandler struct {
	users      *services.UserService
	tokens     *services.TokenService
	production bool
}

func NewAuthHandler(users *services.UserService, tokens *services.TokenService, production bool) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, production: production}
}

// setSessionCookie sets the auth cookie HttpOnly with SameSite=Strict;
// Secure is only enforced in production so local development works over
// plain HTTP.
func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AuthCookieName, value, maxAge, "/", "", h.production, true)
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name"`
}

// Register creates a new account and opens a session for it.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(req.Username, req.Password, req.Email, req.FullName, requestMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, token, 3600*24)
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and opens a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(req.Username, req.Password, requestMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setSessionCookie(c, token, 3600*24)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated principal.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c))
}
