// Package chatclient is the Go client for the chat gateway. Client is a thin
// HTTP wrapper; Session layers optimistic local state with reconciliation and
// rollback on top of it.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"chatgate/internal/domain"
)

// SendRequest is the body of POST /api/chat/send.
type SendRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
	UseCase        string `json:"useCase,omitempty"`
}

// SendResponse is the confirmed result of a turn.
type SendResponse struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

// Client calls the gateway's HTTP API with a bearer credential.
type Client struct {
	baseURL string
	token   string
	hc      *http.Client
}

// NewClient creates a gateway client. The timeout is generous because a send
// waits on the upstream completion call.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		hc:      &http.Client{Timeout: 60 * time.Second},
	}
}

// SendMessage submits one user message and returns the assistant reply.
func (c *Client) SendMessage(ctx context.Context, req SendRequest) (*SendResponse, error) {
	var resp SendResponse
	if err := c.do(ctx, http.MethodPost, "/api/chat/send", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListConversations returns the caller's conversations, most recently
// updated first.
func (c *Client) ListConversations(ctx context.Context) ([]domain.Conversation, error) {
	var conversations []domain.Conversation
	if err := c.do(ctx, http.MethodGet, "/api/chat/conversations", nil, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

// GetConversation returns a full conversation with its messages.
func (c *Client) GetConversation(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	var conv domain.Conversation
	if err := c.do(ctx, http.MethodGet, "/api/chat/conversation/"+conversationID, nil, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Message != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Message)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
