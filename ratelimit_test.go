package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestIPLimiterBurst(t *testing.T) {
	l := newIPLimiter(0, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, l.allow("10.0.0.1"), "request %d within burst", i)
	}
	assert.False(t, l.allow("10.0.0.1"))

	// buckets are per address
	assert.True(t, l.allow("10.0.0.2"))
}

func TestClientIPPrecedence(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newCtx := func(remote string, headers map[string]string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.RemoteAddr = remote
		for k, v := range headers {
			c.Request.Header.Set(k, v)
		}
		return c
	}

	// first X-Forwarded-For hop wins
	c := newCtx("192.0.2.9:1234", map[string]string{
		"X-Forwarded-For": "203.0.113.5, 10.0.0.1",
		"X-Real-IP":       "198.51.100.2",
	})
	assert.Equal(t, "203.0.113.5", clientIP(c))

	c = newCtx("192.0.2.9:1234", map[string]string{"X-Real-IP": "198.51.100.2"})
	assert.Equal(t, "198.51.100.2", clientIP(c))

	c = newCtx("192.0.2.9:1234", nil)
	assert.Equal(t, "192.0.2.9", clientIP(c))

	c = newCtx("", nil)
	assert.Equal(t, "127.0.0.1", clientIP(c))
}
