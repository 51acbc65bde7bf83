package config

import (
	"testing"
	"time"

	apperrors "datadesk/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLocalDefaults(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "")
	t.Setenv("PREVIEW_LIMIT", "")
	t.Setenv("ALLOWED_EXTENSIONS", "")

	cfg := LoadLocal()

	assert.Equal(t, int64(10485760), cfg.Ingest.MaxUploadBytes)
	assert.Equal(t, 10, cfg.Ingest.PreviewLimit)
	assert.Equal(t, []string{".csv", ".xlsx", ".txt"}, cfg.Ingest.AllowedExtensions)
	assert.Equal(t, 5, cfg.Ingest.DefaultPlanFiles)
	assert.Equal(t, 20, cfg.AI.ContextRows)
	assert.NoError(t, ValidateIngest(cfg.Ingest))
}

func TestLoadLocalOverrides(t *testing.T) {
	t.Setenv("PREVIEW_LIMIT", "25")
	t.Setenv("ALLOWED_EXTENSIONS", " .CSV , .txt ,")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("MAX_CONCURRENT_PARSES", "not-a-number")

	cfg := LoadLocal()

	assert.Equal(t, 25, cfg.Ingest.PreviewLimit)
	assert.Equal(t, []string{".csv", ".txt"}, cfg.Ingest.AllowedExtensions)
	assert.Equal(t, 5*time.Second, cfg.AI.Timeout)
	assert.Equal(t, int64(4), cfg.Ingest.MaxConcurrentParses)
}

func TestLoadRequiresDatabaseAndSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "s3cret")
	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))

	t.Setenv("DATABASE_URL", "postgres://localhost/datadesk?sslmode=disable")
	t.Setenv("JWT_SECRET", "")
	_, err = Load()
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/datadesk?sslmode=disable", cfg.Database.URL)
}

func TestValidateIngest(t *testing.T) {
	base := IngestConfig{MaxUploadBytes: 1, PreviewLimit: 1, AllowedExtensions: []string{".csv"}, MaxConcurrentParses: 1}

	tests := []struct {
		name   string
		mutate func(c *IngestConfig)
	}{
		{"zero upload size", func(c *IngestConfig) { c.MaxUploadBytes = 0 }},
		{"zero preview", func(c *IngestConfig) { c.PreviewLimit = 0 }},
		{"no extensions", func(c *IngestConfig) { c.AllowedExtensions = nil }},
		{"zero parses", func(c *IngestConfig) { c.MaxConcurrentParses = 0 }},
		{"negative plan", func(c *IngestConfig) { c.DefaultPlanFiles = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			assert.Error(t, ValidateIngest(c))
		})
	}
	assert.NoError(t, ValidateIngest(base))
}
