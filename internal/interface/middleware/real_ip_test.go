package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func realIPFor(t *testing.T, setup func(*http.Request)) string {
	t.Helper()
	var got string
	r := gin.New()
	r.Use(RealIP())
	r.GET("/", func(c *gin.Context) {
		got = c.GetString("real_ip")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	setup(req)
	r.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestRealIP(t *testing.T) {
	t.Run("cloudflare header wins", func(t *testing.T) {
		ip := realIPFor(t, func(req *http.Request) {
			req.Header.Set("CF-Connecting-IP", "203.0.113.7")
			req.Header.Set("X-Forwarded-For", "198.51.100.1")
		})
		assert.Equal(t, "203.0.113.7", ip)
	})

	t.Run("left-most forwarded-for", func(t *testing.T) {
		ip := realIPFor(t, func(req *http.Request) {
			req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
		})
		assert.Equal(t, "198.51.100.1", ip)
	})

	t.Run("garbage headers fall back to client ip", func(t *testing.T) {
		ip := realIPFor(t, func(req *http.Request) {
			req.Header.Set("CF-Connecting-IP", "not-an-ip")
		})
		assert.NotEmpty(t, ip)
	})
}

func TestRequestID(t *testing.T) {
	var first, second string
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	first = w.Body.String()

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	second = w.Body.String()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
