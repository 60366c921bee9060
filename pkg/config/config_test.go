package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"STORAGE_DRIVER", "KAIZEN_EDIT_WINDOW", "KAIZEN_APPROVAL_LEVEL_MODE", "IMAGE_MAX_BYTES", "ALLOWED_ORIGINS", "KAIZEN_TREND_MONTHS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, 30*24*time.Hour, cfg.Kaizen.EditWindow)
	assert.Equal(t, 6, cfg.Kaizen.TrendMonths)
	assert.Equal(t, ApprovalLevelFrozen, cfg.Kaizen.ApprovalLevelMode)
	assert.Equal(t, int64(3*1024*1024), cfg.Images.MaxBytes)
	assert.Empty(t, cfg.CORS.AllowedOrigins)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("KAIZEN_EDIT_WINDOW", "48h")
	t.Setenv("KAIZEN_APPROVAL_LEVEL_MODE", "RECOMPUTE")
	t.Setenv("KAIZEN_TREND_MONTHS", "-2")
	t.Setenv("ALLOWED_ORIGINS", " https://kaizen.example.com , ,http://localhost:5173")
	t.Setenv("DASHBOARD_CACHE_TTL", "not-a-duration")
	t.Setenv("IMAGE_STORE", "S3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, 48*time.Hour, cfg.Kaizen.EditWindow)
	assert.Equal(t, ApprovalLevelRecompute, cfg.Kaizen.ApprovalLevelMode)
	assert.Equal(t, 6, cfg.Kaizen.TrendMonths)
	assert.Equal(t, []string{"https://kaizen.example.com", "http://localhost:5173"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, ImageStoreS3, cfg.Images.Store)
}

func TestLoadUnknownApprovalModeFallsBackToFrozen(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("KAIZEN_APPROVAL_LEVEL_MODE", "sometimes")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ApprovalLevelFrozen, cfg.Kaizen.ApprovalLevelMode)
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
