// Package openai adapts the OpenAI chat completion API to the guide.Drafter port.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"praticai/internal/guide"
	"praticai/pkg/platform/sentinel"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4-turbo-preview"

var errNoChoices = errors.New("openai: response has no choices")

// Client drafts guides through chat completions.
type Client struct {
	api   *openai.Client
	model string
}

// Config holds the adapter settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// New builds a Client. Without an API key the client is created anyway and
// every Draft reports sentinel.ErrUnavailable.
func New(cfg Config) *Client {
	c := &Client{model: cfg.Model}
	if c.model == "" {
		c.model = DefaultModel
	}
	if cfg.APIKey == "" {
		return c
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	c.api = openai.NewClientWithConfig(apiCfg)
	return c
}

// Configured reports whether a credential was supplied.
func (c *Client) Configured() bool {
	return c.api != nil
}

// Draft sends one system + user exchange and returns the trimmed answer.
func (c *Client) Draft(ctx context.Context, req guide.DraftRequest) (string, error) {
	if c.api == nil {
		return "", fmt.Errorf("openai: api key not configured: %w", sentinel.ErrUnavailable)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
