// Package llm issues single, non-streaming completion calls to an
// OpenAI-compatible endpoint (OpenRouter in production) and normalizes every
// failure into a domain.UpstreamError.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"chatgate/internal/domain"
)

// Fixed call parameters per the upstream contract. Response length is
// bounded and the temperature never varies between requests.
const (
	requestTemperature = 0.7
	requestMaxTokens   = 2000
	defaultTimeout     = 30 * time.Second
)

// ClientConfig holds the settings for the completion client.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration // zero means the 30s default
}

// Client talks to one completion endpoint. Stateless between invocations;
// retries are a caller policy, never performed here.
type Client struct {
	api    *openai.Client
	model  string
	logger *slog.Logger
}

// NewClient creates a completion client with a hard per-request timeout.
func NewClient(cfg ClientConfig, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("completion API key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("completion model is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	apiConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}
	apiConfig.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		api:    openai.NewClientWithConfig(apiConfig),
		model:  cfg.Model,
		logger: logger,
	}, nil
}

// Complete sends the full conversation history, prefixed with a single
// synthetic system entry carrying the persona prompt, and returns the text
// of the first completion choice.
func (c *Client) Complete(ctx context.Context, history []domain.Message, systemPrompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, msg := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: requestTemperature,
		MaxTokens:   requestMaxTokens,
	})
	if err != nil {
		return "", c.normalizeError(err)
	}

	c.logger.Debug("completion received",
		"model", c.model,
		"choices", len(resp.Choices),
	)

	if len(resp.Choices) == 0 {
		return "", &domain.UpstreamError{
			Reason:  domain.UpstreamMalformed,
			Message: "completion response contains no choices",
		}
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", &domain.UpstreamError{
			Reason:  domain.UpstreamMalformed,
			Message: "completion response is missing message content",
		}
	}

	return content, nil
}

// normalizeError collapses transport, status and decode failures into the
// single caller-visible error kind, keeping the reason for logs and retry
// policy.
func (c *Client) normalizeError(err error) *domain.UpstreamError {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	var urlErr *url.Error

	switch {
	case errors.As(err, &apiErr):
		return &domain.UpstreamError{
			Reason:  domain.UpstreamStatus,
			Message: fmt.Sprintf("completion request rejected with status %d", apiErr.HTTPStatusCode),
		}
	case errors.As(err, &reqErr):
		return &domain.UpstreamError{
			Reason:  domain.UpstreamStatus,
			Message: fmt.Sprintf("completion request rejected with status %d", reqErr.HTTPStatusCode),
		}
	case errors.Is(err, context.DeadlineExceeded):
		return &domain.UpstreamError{
			Reason:  domain.UpstreamTimeout,
			Message: "completion request timed out",
		}
	case errors.As(err, &urlErr):
		if urlErr.Timeout() {
			return &domain.UpstreamError{
				Reason:  domain.UpstreamTimeout,
				Message: "completion request timed out",
			}
		}
		return &domain.UpstreamError{
			Reason:  domain.UpstreamNetwork,
			Message: "completion endpoint unreachable",
		}
	default:
		// Anything else is a response body we could not decode.
		return &domain.UpstreamError{
			Reason:  domain.UpstreamMalformed,
			Message: "completion response could not be decoded",
		}
	}
}
