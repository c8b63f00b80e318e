package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("SUPPORTBOT_CONFIG", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, 10, cfg.Quota.DailyLimit)
	assert.Equal(t, 10, cfg.Memory.MaxEntries)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load("/nonexistent/supportbot.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [not a mapping"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoadOverlaysDefaults(t *testing.T) {
	content := `
api:
  port: 9090
quota:
  daily_limit: 3
  privileged_roles: ["dispatcher-lead"]
logging:
  level: debug
kafka:
  enabled: true
  brokers: ["kafka-1:9092"]
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, 3, cfg.Quota.DailyLimit)
	assert.Equal(t, []string{"dispatcher-lead"}, cfg.Quota.PrivilegedRoles)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"kafka-1:9092"}, cfg.Kafka.Brokers)

	// Untouched sections keep their defaults.
	assert.Equal(t, 10, cfg.Memory.MaxEntries)
	assert.Equal(t, 3, cfg.Knowledge.TopN)
	assert.Equal(t, "supportbot.events", cfg.Kafka.Topic)
}

func TestLoadEnvKeyFallback(t *testing.T) {
	t.Setenv("SUPPORTBOT_CONFIG", "")
	t.Setenv("OPENAI_API_KEY", "sk-env-test")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sk-env-test", cfg.OpenAI.APIKey)
}

func TestLoadFileKeyWinsOverEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env-test")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("openai:\n  api_key: sk-file-key\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-file-key", cfg.OpenAI.APIKey)
}

func TestLoadHonorsConfigEnvVar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  port: 7070\n"), 0o644))
	t.Setenv("SUPPORTBOT_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.API.Port)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{"zero port", func(c *Config) { c.API.Port = 0 }, "port"},
		{"cors without origins", func(c *Config) { c.API.AllowedOrigins = nil }, "allowed_origins"},
		{"write timeout below generation timeout", func(c *Config) { c.API.WriteTimeout = c.OpenAI.Timeout }, "write_timeout"},
		{"missing model", func(c *Config) { c.OpenAI.Model = "" }, "model"},
		{"temperature out of range", func(c *Config) { c.OpenAI.Temperature = 2.5 }, "temperature"},
		{"inverted score weights", func(c *Config) { c.Knowledge.WordScore = 50 }, "score weights"},
		{"zero min score", func(c *Config) { c.Knowledge.MinScore = 0 }, "min_score"},
		{"zero memory entries", func(c *Config) { c.Memory.MaxEntries = 0 }, "max_entries"},
		{"zero daily limit", func(c *Config) { c.Quota.DailyLimit = 0 }, "daily_limit"},
		{"unknown reset location", func(c *Config) { c.Quota.ResetLocation = "Mars/Olympus" }, "reset_location"},
		{"kafka enabled without brokers", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = nil }, "brokers"},
		{"kafka broker missing port", func(c *Config) { c.Kafka.Enabled = true; c.Kafka.Brokers = []string{"localhost"} }, "host:port"},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }, "log level"},
		{"zero cleanup interval", func(c *Config) { c.Cleanup.Interval = 0 }, "interval"},
		{"short counter retention", func(c *Config) { c.Cleanup.CounterRetention = time.Hour }, "counter_retention"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
