package container

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"datadesk/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestInitInMemory(t *testing.T) {
	cfg := config.LoadLocal()
	cfg.AI.OpenAIKey = ""
	cfg.Auth.JWTSecret = "container-test-secret"

	c, err := New(cfg)
	require.NoError(t, err)

	_, err = c.Handler()
	assert.Error(t, err, "handler needs initialized services")

	c.InitInMemory()
	assert.NotNil(t, c.Ingest)
	assert.NotNil(t, c.Usage)
	assert.Nil(t, c.LLM)

	h, err := c.Handler()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, c.Shutdown(t.Context()))
}
