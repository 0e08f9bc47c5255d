package dig_container

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/ilmhub/ilm/apps/api/echo"
	"github.com/ilmhub/ilm/core"
)

func TestNew_memoryEngine(t *testing.T) {
	t.Setenv("ILM_DATABASE_ENGINE", EngineMemory)
	t.Setenv("ILM_REDIS_ADDRESS", "")

	c := New()
	err := c.Invoke(func(conf *core.Config, cache core.Cache, mailSvc core.EmailService, server *echoapi.Server) {
		assert.Equal(t, EngineMemory, conf.Database.Engine)
		assert.NotNil(t, cache)
		assert.NotNil(t, mailSvc)

		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/calendar/today", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
	require.NoError(t, err)
}
