package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilmhub/ilm/core"
)

func Test_rateLimit(t *testing.T) {
	e := setup(t, func(conf *core.Config) {
		conf.Server.RateLimitRPS = 0.001
		conf.Server.RateLimitBurst = 2
	})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, e.get(t, "/v1/hadiths", "").Code)
	}
	rec := e.get(t, "/v1/hadiths", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate limit exceeded", errorOf(t, rec))

	assert.Equal(t, http.StatusOK, e.get(t, "/v1/calendar/today", "").Code, "only search endpoints are limited")
}
