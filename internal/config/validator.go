package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks every section plus the constraints that span sections.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return fmt.Errorf("api config error: %v", err)
	}
	if err := c.validateOpenAI(); err != nil {
		return fmt.Errorf("openai config error: %v", err)
	}
	if err := c.validateKnowledge(); err != nil {
		return fmt.Errorf("knowledge config error: %v", err)
	}
	if err := c.validateMemory(); err != nil {
		return fmt.Errorf("memory config error: %v", err)
	}
	if err := c.validateQuota(); err != nil {
		return fmt.Errorf("quota config error: %v", err)
	}
	if err := c.validateKafka(); err != nil {
		return fmt.Errorf("kafka config error: %v", err)
	}
	if err := c.validateLogging(); err != nil {
		return fmt.Errorf("logging config error: %v", err)
	}
	if err := c.validateCleanup(); err != nil {
		return fmt.Errorf("cleanup config error: %v", err)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if c.API.ReadTimeout <= 0 || c.API.WriteTimeout <= 0 || c.API.IdleTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.API.EnableCORS && len(c.API.AllowedOrigins) == 0 {
		return fmt.Errorf("allowed_origins is required when CORS is enabled")
	}
	if c.API.MaxRequestSize <= 0 {
		return fmt.Errorf("max_request_size must be positive")
	}
	// The messages route holds the connection open while the answer is
	// generated, so the server has to outwait the generator.
	if c.API.WriteTimeout <= c.OpenAI.Timeout {
		return fmt.Errorf("write_timeout must exceed the openai timeout")
	}
	return nil
}

func (c *Config) validateOpenAI() error {
	if c.OpenAI.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.OpenAI.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}
	if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if c.OpenAI.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

func (c *Config) validateKnowledge() error {
	k := c.Knowledge
	if k.ExactPhraseScore <= 0 || k.TermScore <= 0 || k.FuzzyScore <= 0 || k.WordScore <= 0 {
		return fmt.Errorf("score weights must be positive")
	}
	// Weights are ordered strongest signal first; an inversion would make
	// fuzzy guesses outrank verbatim hits.
	if k.ExactPhraseScore < k.TermScore || k.TermScore < k.FuzzyScore || k.FuzzyScore < k.WordScore {
		return fmt.Errorf("score weights must descend from exact_phrase_score to word_score")
	}
	if k.MinScore <= 0 {
		return fmt.Errorf("min_score must be positive")
	}
	if k.TopN <= 0 {
		return fmt.Errorf("top_n must be positive")
	}
	if k.FuzzyThreshold < 1 {
		return fmt.Errorf("fuzzy_threshold must be at least 1")
	}
	return nil
}

func (c *Config) validateMemory() error {
	if c.Memory.MaxEntries <= 0 {
		return fmt.Errorf("max_entries must be positive")
	}
	if c.Memory.MaxConversations <= 0 {
		return fmt.Errorf("max_conversations must be positive")
	}
	return nil
}

func (c *Config) validateQuota() error {
	if c.Quota.DailyLimit <= 0 {
		return fmt.Errorf("daily_limit must be positive")
	}
	if c.Quota.ResetLocation != "" {
		if _, err := time.LoadLocation(c.Quota.ResetLocation); err != nil {
			return fmt.Errorf("invalid reset_location: %v", err)
		}
	}
	return nil
}

func (c *Config) validateKafka() error {
	if !c.Kafka.Enabled {
		return nil
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("brokers is required when kafka is enabled")
	}
	for _, broker := range c.Kafka.Brokers {
		if !strings.Contains(broker, ":") {
			return fmt.Errorf("invalid broker format: %s (expected host:port)", broker)
		}
	}
	if c.Kafka.Topic == "" {
		return fmt.Errorf("topic is required when kafka is enabled")
	}
	if c.Kafka.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	level := strings.ToLower(c.Logging.Level)
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateCleanup() error {
	if c.Cleanup.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.Cleanup.MaxTrackedReplies <= 0 {
		return fmt.Errorf("max_tracked_replies must be positive")
	}
	// Retention below a full day would prune counters whose window is still
	// the current calendar day, handing users a fresh allowance early.
	if c.Cleanup.CounterRetention < 24*time.Hour {
		return fmt.Errorf("counter_retention must be at least 24h")
	}
	return nil
}
