package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret-key-of-sufficient-length"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", testSecret)

	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "file:./hostlink.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.Database.DSN)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10*time.Minute, cfg.Claims.TTL)
	assert.Equal(t, 8, cfg.Claims.CodeLength)
	assert.Equal(t, 5, cfg.Claims.MaxActivePerUser)
	assert.Equal(t, 2*time.Minute, cfg.Heartbeat.OnlineWindow)
	assert.Equal(t, "0.0.0.0:8080", cfg.GetListenAddress())
}

func TestLoad_MissingSecret(t *testing.T) {
	os.Unsetenv("JWT_SECRET_KEY")

	_, err := Load("", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET_KEY")
}

func TestLoad_ShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "too-short")

	_, err := Load("", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", testSecret)
	t.Setenv("HOSTLINK_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "file:/tmp/other.db")

	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "file:/tmp/other.db", cfg.Database.DSN)
}

func TestLoad_YAMLFile(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", testSecret)

	configFile := filepath.Join(t.TempDir(), "hostlink.yaml")
	yaml := `
log:
  level: warn
server:
  port: 9191
claims:
  code_length: 10
`
	require.NoError(t, os.WriteFile(configFile, []byte(yaml), 0o644))

	cfg, err := Load(configFile, "")
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Claims.CodeLength)

	// Defaults still apply for keys the file leaves out.
	assert.Equal(t, 10*time.Minute, cfg.Claims.TTL)
}

func TestValidate_ClaimSettings(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", testSecret)

	cfg, err := Load("", "")
	require.NoError(t, err)

	// Anything below 8 characters drops under the 40-bit entropy
	// floor and must be rejected.
	for _, length := range []int{4, 6, 7} {
		cfg.Claims.CodeLength = length
		assert.Error(t, cfg.Validate(), "code length %d must be rejected", length)
	}

	cfg.Claims.CodeLength = 8
	assert.NoError(t, cfg.Validate())

	cfg.Claims.TTL = 0
	assert.Error(t, cfg.Validate())

	cfg.Claims.TTL = time.Minute
	cfg.Claims.MaxActivePerUser = -1
	assert.Error(t, cfg.Validate())
}

func TestValidate_TokenTTL(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", testSecret)

	cfg, err := Load("", "")
	require.NoError(t, err)

	cfg.Auth.TokenTTL = 0
	assert.Error(t, cfg.Validate())

	cfg.Auth.TokenTTL = -time.Hour
	assert.Error(t, cfg.Validate())

	cfg.Auth.TokenTTL = time.Hour
	assert.NoError(t, cfg.Validate())
}
