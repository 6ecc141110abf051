package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("DATABASE_DSN", "user:pw@tcp(localhost:3306)/market")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "vm_session", cfg.SessionCookie)
	assert.Equal(t, int64(5<<20), cfg.UploadMaxBytes)
	assert.True(t, cfg.AutoMigrate)
	assert.False(t, cfg.LineEnabled())
}

func TestLoadRequiresDatabase(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("DATABASE_DSN", "")
	t.Setenv("DB_USER", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingDatabase)
}

func TestLoadRequiresSessionSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("DATABASE_DSN", "dsn")

	_, err := Load()
	assert.Error(t, err)
}

func TestAllowedOriginsSplit(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("DB_USER", "u")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_NAME", "market")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}
