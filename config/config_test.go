package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONTROLLER_HOST", "CONTROLLER_PORT", "TRUSTED_PROXIES", "BACKEND_FLAVOR", "LLM_API_HOST",
		"DEFAULT_MODEL", "HEALTH_CHECK_TIMEOUT", "BACKEND_TIMEOUT", "STREAM_TIMEOUT", "PULL_TIMEOUT",
		"HEALTH_CHECK_INTERVAL", "RATE_LIMIT_PER_MINUTE", "RATE_LIMIT_WINDOW", "RATE_LIMIT_DRIVER",
		"REDIS_ADDR", "CORS_ALLOWED_ORIGINS", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsWithoutFiles(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9999", cfg.Server.Addr())
	assert.Equal(t, BackendFlavorOllama, cfg.Backend.Flavor)
	assert.Equal(t, 10*time.Second, cfg.Backend.HealthTimeout.Std())
	assert.Equal(t, 120*time.Second, cfg.Backend.GenerateTimeout.Std())
	assert.Equal(t, 30*time.Second, cfg.Health.Interval.Std())
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window.Std())
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Empty(t, cfg.Warnings)
}

func TestLoadYAMLThenEnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	yamlBody := `
server:
  port: 8080
backend:
  flavor: vllm
  base_url: http://vllm:8000/
  generate_timeout: 90s
health:
  interval: 15
rate_limit:
  requests_per_minute: 20
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, CONFIG_FILE), []byte(yamlBody), 0o600))
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, BackendFlavorVLLM, cfg.Backend.Flavor)
	assert.Equal(t, "http://vllm:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 90*time.Second, cfg.Backend.GenerateTimeout.Std())
	assert.Equal(t, 15*time.Second, cfg.Health.Interval.Std())
	assert.Equal(t, 5, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadClampsTimeouts(t *testing.T) {
	clearEnv(t)
	t.Setenv("HEALTH_CHECK_TIMEOUT", "30")
	t.Setenv("BACKEND_TIMEOUT", "10m")
	t.Setenv("STREAM_TIMEOUT", "1h")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, MaxHealthTimeout, cfg.Backend.HealthTimeout.Std())
	assert.Equal(t, MaxGenerateTimeout, cfg.Backend.GenerateTimeout.Std())
	assert.Equal(t, MaxStreamTimeout, cfg.Backend.StreamTimeout.Std())
	assert.Len(t, cfg.Warnings, 3)
}

func TestLoadKeepsStreamTimeoutSeparateFromGenerateBound(t *testing.T) {
	clearEnv(t)
	t.Setenv("STREAM_TIMEOUT", "300")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 300*time.Second, cfg.Backend.StreamTimeout.Std())
	assert.Equal(t, 120*time.Second, cfg.Backend.GenerateTimeout.Std())
	assert.Empty(t, cfg.Warnings)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown flavor", key: "BACKEND_FLAVOR", val: "tgi"},
		{name: "unknown driver", key: "RATE_LIMIT_DRIVER", val: "memcached"},
		{name: "bad port", key: "CONTROLLER_PORT", val: "http"},
		{name: "bad duration", key: "BACKEND_TIMEOUT", val: "soon"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(testCase.key, testCase.val)

			_, err := Load(t.TempDir())
			assert.Error(t, err)
		})
	}
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("10.5")
	require.NoError(t, err)
	assert.Equal(t, 10500*time.Millisecond, d)

	d, err = ParseDuration("2m")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, d)

	_, err = ParseDuration("-1")
	assert.Error(t, err)
}
