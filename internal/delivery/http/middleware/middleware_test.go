package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/x", ok)
	r.POST("/x", ok)
	r.GET("/admin/x", ok)
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_InMemoryWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(nil, nil)
	rl.now = func() time.Time { return now }

	r := newEngine(rl.Middleware(ContactRateLimitConfig(2, time.Minute)))

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	now = now.Add(61 * time.Second)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(nil, nil)
	r := newEngine(rl.Middleware(ContactRateLimitConfig(1, time.Minute)))

	first := httptest.NewRequest(http.MethodGet, "/x", nil)
	first.RemoteAddr = "198.51.100.1:1000"
	second := httptest.NewRequest(http.MethodGet, "/x", nil)
	second.RemoteAddr = "198.51.100.2:1000"

	assert.Equal(t, http.StatusOK, serve(r, first).Code)
	assert.Equal(t, http.StatusOK, serve(r, second).Code)
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "client-supplied-id-123")
	w = serve(r, req)
	assert.Equal(t, "client-supplied-id-123", w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "bad id\r\n")
	w = serve(r, req)
	assert.NotEqual(t, "bad id\r\n", w.Header().Get(RequestIDHeader))
}

func TestCSRFMiddleware(t *testing.T) {
	r := newEngine(CSRFMiddleware(false))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var token string
	for _, c := range w.Result().Cookies() {
		if c.Name == CSRFTokenCookieName {
			token = c.Value
		}
	}
	require.Len(t, token, CSRFTokenLength*2)

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.AddCookie(&http.Cookie{Name: CSRFTokenCookieName, Value: token})
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/x", nil)
	req.AddCookie(&http.Cookie{Name: CSRFTokenCookieName, Value: token})
	req.Header.Set(CSRFTokenHeaderName, token)
	assert.Equal(t, http.StatusOK, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/x", nil)
	req.AddCookie(&http.Cookie{Name: CSRFTokenCookieName, Value: token})
	req.Header.Set(CSRFTokenHeaderName, "wrong")
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)
}

func TestSecurityHeaders(t *testing.T) {
	r := newEngine(SecurityHeadersMiddleware(true))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
	assert.Empty(t, w.Header().Get("Cache-Control"))

	w = serve(r, httptest.NewRequest(http.MethodGet, "/admin/x", nil))
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
}

func TestCORSMiddleware(t *testing.T) {
	r := newEngine(CORSMiddleware([]string{"https://liniremulima.com"}, true))

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://liniremulima.com")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://liniremulima.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w = serve(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
