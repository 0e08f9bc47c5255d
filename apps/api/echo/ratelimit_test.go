package echoapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestIPRateLimiter(t *testing.T) {
	e := echo.New()
	l := newIPRateLimiter(0.0001, 2, false)
	h := l.middleware()(func(ctx echo.Context) error { return ctx.NoContent(http.StatusOK) })

	call := func(remoteAddr, forwardedFor string) error {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remoteAddr
		req.Header.Set(echo.HeaderXForwardedFor, forwardedFor)
		req.Header.Set(echo.HeaderXRealIP, forwardedFor)
		return h(e.NewContext(req, httptest.NewRecorder()))
	}

	assert.NoError(t, call("10.0.0.1:5000", "1.1.1.1"))
	assert.NoError(t, call("10.0.0.1:5001", "2.2.2.2"))
	assert.Equal(t, errRateLimited, call("10.0.0.1:5002", "3.3.3.3"), "proxy headers are ignored")

	// other clients have their own bucket
	assert.NoError(t, call("10.0.0.2:5000", ""))
	assert.Len(t, l.visitors, 2)
}

func TestIPRateLimiterBehindProxy(t *testing.T) {
	e := echo.New()
	l := newIPRateLimiter(0.0001, 1, true)

	ctxFrom := func(realIP string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.10:443"
		req.Header.Set(echo.HeaderXRealIP, realIP)
		return e.NewContext(req, httptest.NewRecorder())
	}

	assert.Equal(t, "1.1.1.1", l.clientIP(ctxFrom("1.1.1.1")))
	assert.True(t, l.get(l.clientIP(ctxFrom("1.1.1.1"))).Allow())
	assert.True(t, l.get(l.clientIP(ctxFrom("2.2.2.2"))).Allow())
	assert.False(t, l.get(l.clientIP(ctxFrom("1.1.1.1"))).Allow())
}

func TestIPRateLimiterUnlimited(t *testing.T) {
	l := newIPRateLimiter(0, 1, false)
	for i := 0; i < 50; i++ {
		assert.True(t, l.get("1.2.3.4").Allow())
	}
}
