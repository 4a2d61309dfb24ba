package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/kestrelworks/docvault/backend/internal/logger"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger.Init(true, &buf)

	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) {
		GetRequestLogger(c).Info("ping handled")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	rid := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, rid)
	_, err := uuid.Parse(rid)
	assert.NoError(t, err)

	// the request-scoped logger carries the id
	assert.Contains(t, buf.String(), rid)
}

func TestRequestIDUniquePerRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		router.ServeHTTP(w, req)
		seen[w.Header().Get(RequestIDHeader)] = true
	}
	assert.Len(t, seen, 3)
}
