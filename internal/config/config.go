package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/haulstack/supportbot/internal/api"
	"github.com/haulstack/supportbot/internal/events"
	"github.com/haulstack/supportbot/internal/knowledge"
	"github.com/haulstack/supportbot/internal/llm"
	"github.com/haulstack/supportbot/internal/quota"
)

// Config is the full service configuration. File values overlay the
// defaults, so a partial config file is fine.
type Config struct {
	API       api.GatewayConfig      `yaml:"api"`
	OpenAI    llm.Config             `yaml:"openai"`
	Knowledge knowledge.EngineConfig `yaml:"knowledge"`
	Memory    MemoryConfig           `yaml:"memory"`
	Quota     quota.Config           `yaml:"quota"`
	Kafka     events.KafkaConfig     `yaml:"kafka"`
	Logging   LoggingConfig          `yaml:"logging"`
	Cleanup   CleanupConfig          `yaml:"cleanup"`
}

// MemoryConfig bounds conversation memory.
type MemoryConfig struct {
	// MaxEntries is the per-conversation history depth.
	MaxEntries int `yaml:"max_entries"`

	// MaxConversations caps how many conversations the cleanup pass keeps.
	MaxConversations int `yaml:"max_conversations"`
}

// LoggingConfig holds the logger settings.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// CleanupConfig drives the periodic cleanup pass.
type CleanupConfig struct {
	Interval          time.Duration `yaml:"interval"`
	MaxTrackedReplies int           `yaml:"max_tracked_replies"`
	CounterRetention  time.Duration `yaml:"counter_retention"`
}

// Default returns the complete default configuration.
func Default() *Config {
	return &Config{
		API:       api.DefaultGatewayConfig(),
		OpenAI:    llm.DefaultConfig(),
		Knowledge: knowledge.DefaultEngineConfig(),
		Memory: MemoryConfig{
			MaxEntries:       10,
			MaxConversations: 500,
		},
		Quota: quota.DefaultConfig(),
		Kafka: events.DefaultKafkaConfig(),
		Logging: LoggingConfig{
			Level: "info",
		},
		Cleanup: CleanupConfig{
			Interval:          10 * time.Minute,
			MaxTrackedReplies: 1000,
			CounterRetention:  48 * time.Hour,
		},
	}
}

// Load reads the config file over the defaults. An empty path falls back to
// the SUPPORTBOT_CONFIG environment variable, then to pure defaults. An
// OpenAI key absent from the file is taken from OPENAI_API_KEY.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("SUPPORTBOT_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	return cfg, nil
}
