package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATA_DIR", "/tmp/quiztube-test")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_DSN", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, filepath.Join("/tmp/quiztube-test", "quiztube.db"), cfg.DBDSN)
	assert.Equal(t, time.Hour, cfg.NotifyInterval)
	assert.Equal(t, 4, cfg.NotifyConcurrency)
	assert.Equal(t, 5, cfg.PromptCandidates)
}

func TestLoadFromEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "DB_DRIVER=postgres\nDB_DSN=postgres://localhost/quiztube?sslmode=disable\nNOTIFY_INTERVAL_MINUTES=15\nNOTIFY_CONCURRENCY=8\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	// godotenv does not override variables that are already set
	for _, k := range []string{"DB_DRIVER", "DB_DSN", "NOTIFY_INTERVAL_MINUTES", "NOTIFY_CONCURRENCY"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "postgres://localhost/quiztube?sslmode=disable", cfg.DBDSN)
	assert.Equal(t, 15*time.Minute, cfg.NotifyInterval)
	assert.Equal(t, 8, cfg.NotifyConcurrency)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DBDSN = "file.db"
	require.NoError(t, cfg.Validate())

	bad := *cfg
	bad.DBDriver = "mysql"
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.NotifyConcurrency = 0
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.DBDriver = "postgres"
	bad.DBDSN = ""
	assert.Error(t, bad.Validate())
}
