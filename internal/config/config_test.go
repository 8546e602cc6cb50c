package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("SECRET_KEY", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "static", cfg.Server.StaticDir)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "site.db", cfg.Database.SQLitePath)
	assert.True(t, cfg.Database.RunMigrations)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 720*time.Hour, cfg.Session.RememberTTL)
	assert.Equal(t, int64(5242880), cfg.Upload.MaxBytes)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.Equal(t, 10, cfg.RateLimit.LoginPerMinute)
	assert.Equal(t, 5, cfg.RateLimit.ContactPerMinute)
	assert.False(t, cfg.RedisEnabled())
	assert.False(t, cfg.MailEnabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("MAIL_SERVER", "smtp.example.com")
	t.Setenv("CONTACT_RECIPIENT", "owner@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.RedisEnabled())
	assert.True(t, cfg.MailEnabled())
	assert.Equal(t, "owner@example.com", cfg.Mail.Recipient)
}

func TestLoad_SuppressSendDisablesMail(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("MAIL_SERVER", "smtp.example.com")
	t.Setenv("MAIL_SUPPRESS_SEND", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MailEnabled())
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("SECRET_KEY", "")
	require.NoError(t, os.Unsetenv("SECRET_KEY"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := `
secret_key: file-secret
server:
  addr: ":9090"
database:
  driver: sqlite
  sqlite_path: /tmp/blog.db
mail:
  recipient: file@example.com
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file-secret", cfg.SecretKey)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/tmp/blog.db", cfg.Database.SQLitePath)
	assert.Equal(t, "file@example.com", cfg.Mail.Recipient)
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "missing.yml"))

	_, err := Load()
	assert.Error(t, err)
}
