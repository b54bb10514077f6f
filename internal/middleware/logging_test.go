// SPDX-License-Identifier: MIT
package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loggedRouter(buf *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(buf)), Recovery())
	r.GET("/api/projects/:id", func(c *gin.Context) {
		zerolog.Ctx(c.Request.Context()).Info().Msg("handler")
		c.Status(404)
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return r
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		lines = append(lines, entry)
	}
	return lines
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	w := httptest.NewRecorder()
	loggedRouter(&buf).ServeHTTP(w, httptest.NewRequest("GET", "/api/projects/abc", nil))

	requestID := w.Header().Get(RequestIDHeader)
	assert.Len(t, requestID, 36)

	lines := logLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "handler", lines[0]["message"])
	assert.Equal(t, requestID, lines[0]["request_id"])
	assert.Equal(t, "warn", lines[1]["level"])
	assert.Equal(t, "/api/projects/:id", lines[1]["path"])
	assert.Equal(t, float64(404), lines[1]["status"])
}

func TestRequestLoggerKeepsIncomingID(t *testing.T) {
	var buf bytes.Buffer
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/projects/abc", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	loggedRouter(&buf).ServeHTTP(w, req)

	assert.Equal(t, "upstream-id", w.Header().Get(RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	w := httptest.NewRecorder()
	loggedRouter(&buf).ServeHTTP(w, httptest.NewRequest("GET", "/panic", nil))

	assert.Equal(t, 500, w.Code)
	lines := logLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "Panic recovered", lines[0]["message"])
	assert.Equal(t, "error", lines[1]["level"])
}

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecurityHeadersMiddleware(false))
	r.GET("/", func(c *gin.Context) { c.Status(200) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'none'")
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))

	w = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	r.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
}
