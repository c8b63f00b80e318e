package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Config holds the OpenAI chat completion settings.
type Config struct {
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the OpenAI endpoint for proxies and compatible
	// servers. Empty means the public API.
	BaseURL string `yaml:"base_url"`

	Model        string        `yaml:"model"`
	Temperature  float32       `yaml:"temperature"`
	MaxTokens    int           `yaml:"max_tokens"`
	Timeout      time.Duration `yaml:"timeout"`
	SystemPrompt string        `yaml:"system_prompt"`
}

// DefaultConfig returns the shipped completion settings. The API key is
// expected from config or the OPENAI_API_KEY environment variable.
func DefaultConfig() Config {
	return Config{
		Model:        openai.GPT4,
		Temperature:  0.7,
		MaxTokens:    500,
		Timeout:      30 * time.Second,
		SystemPrompt: "You are HaulBot, the HaulStack support assistant. Answer from the provided context, keep it short, and suggest contacting support when unsure.",
	}
}

// Client generates answers through the OpenAI chat completion API.
type Client struct {
	api    *openai.Client
	config Config
}

// NewClient builds a client from config.
func NewClient(config Config) *Client {
	apiConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		apiConfig.BaseURL = config.BaseURL
	}

	return &Client{
		api:    openai.NewClientWithConfig(apiConfig),
		config: config,
	}
}

// Generate sends the prompt and returns the model's answer text. The call
// is bounded by the configured timeout on top of the caller's context.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: c.config.SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.config.APIKey != ""
}
