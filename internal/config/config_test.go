package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/homilybuild/homily/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, db.SQLite, cfg.Dialect())
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "local", cfg.DevOwnerID)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.False(t, cfg.AuthEnabled())
	assert.Equal(t, filepath.Join(os.Getenv("HOME"), ".homily", "homily.db"), cfg.DSN())
}

func TestLoad_EnvFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("HOMILY_JWT_SECRET=s3cret\nHOMILY_BASE_URL=https://homily.build/\n"), 0o600))
	t.Setenv("HOMILY_DB_PATH", filepath.Join(dir, "h.db"))
	t.Setenv("HOMILY_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Cleanup(func() {
		os.Unsetenv("HOMILY_JWT_SECRET")
		os.Unsetenv("HOMILY_BASE_URL")
	})

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.True(t, cfg.AuthEnabled())
	assert.Equal(t, filepath.Join(dir, "h.db"), cfg.DSN())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "https://homily.build/homilies/abc?step=3", cfg.ShareURL("abc", 3))
}

func TestLoad_Postgres(t *testing.T) {
	t.Setenv("HOMILY_DB_DRIVER", "postgresql")
	_, err := Load(filepath.Join(t.TempDir(), "none"))
	assert.Error(t, err, "dsn is required")

	t.Setenv("HOMILY_DB_DSN", "postgres://homily@localhost/homily")
	cfg, err := Load(filepath.Join(t.TempDir(), "none"))
	require.NoError(t, err)
	assert.Equal(t, db.Postgres, cfg.Dialect())
	assert.Equal(t, "postgres://homily@localhost/homily", cfg.DSN())
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("HOMILY_DB_DRIVER", "mysql")
	_, err := Load(filepath.Join(t.TempDir(), "none"))
	assert.Error(t, err)
}
