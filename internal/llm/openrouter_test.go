package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chatgate/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, baseURL string, timeout time.Duration) *Client {
	t.Helper()
	client, err := NewClient(ClientConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "test-model",
		Timeout: timeout,
	}, testLogger())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func completionBody(content string) string {
	return `{"id":"gen-1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":` + mustJSON(content) + `}}]}`
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestCompleteSuccess(t *testing.T) {
	var captured struct {
		Model       string `json:"model"`
		Temperature float32
		MaxTokens   int `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var authHeader string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		authHeader = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionBody("hi there"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/v1", 0)
	history := []domain.Message{
		{Role: domain.RoleUser, Content: "hello"},
		{Role: domain.RoleAssistant, Content: "hi"},
		{Role: domain.RoleUser, Content: "how are you"},
	}

	reply, err := client.Complete(context.Background(), history, "you are a test persona")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if reply != "hi there" {
		t.Errorf("reply = %q, want %q", reply, "hi there")
	}
	if authHeader != "Bearer test-key" {
		t.Errorf("Authorization = %q", authHeader)
	}
	if captured.Model != "test-model" {
		t.Errorf("model = %q", captured.Model)
	}
	if captured.MaxTokens != requestMaxTokens {
		t.Errorf("max_tokens = %d, want %d", captured.MaxTokens, requestMaxTokens)
	}
	if captured.Temperature != requestTemperature {
		t.Errorf("temperature = %v, want %v", captured.Temperature, requestTemperature)
	}
	if len(captured.Messages) != len(history)+1 {
		t.Fatalf("sent %d messages, want %d", len(captured.Messages), len(history)+1)
	}
	if captured.Messages[0].Role != "system" || captured.Messages[0].Content != "you are a test persona" {
		t.Errorf("first message should be the persona system entry, got %+v", captured.Messages[0])
	}
	for i, msg := range history {
		sent := captured.Messages[i+1]
		if sent.Role != string(msg.Role) || sent.Content != msg.Content {
			t.Errorf("message %d = %+v, want %+v", i, sent, msg)
		}
	}
}

func TestCompleteNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"message":"rate limited","type":"rate_limit"}}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL+"/v1", 0)
	_, err := client.Complete(context.Background(), []domain.Message{{Role: domain.RoleUser, Content: "hi"}}, "persona")

	var upstreamErr *domain.UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstreamErr.Reason != domain.UpstreamStatus {
		t.Errorf("reason = %q, want %q", upstreamErr.Reason, domain.UpstreamStatus)
	}
}

func TestCompleteMalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>gateway error</html>`},
		{"no choices", `{"id":"gen-1","object":"chat.completion","choices":[]}`},
		{"empty content", completionBody("  ")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			client := newTestClient(t, srv.URL+"/v1", 0)
			_, err := client.Complete(context.Background(), []domain.Message{{Role: domain.RoleUser, Content: "hi"}}, "persona")

			var upstreamErr *domain.UpstreamError
			if !errors.As(err, &upstreamErr) {
				t.Fatalf("expected UpstreamError, got %v", err)
			}
			if upstreamErr.Reason != domain.UpstreamMalformed {
				t.Errorf("reason = %q, want %q", upstreamErr.Reason, domain.UpstreamMalformed)
			}
		})
	}
}

func TestCompleteTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		io.WriteString(w, completionBody("too late"))
	}))
	defer srv.Close()
	defer close(release)

	client := newTestClient(t, srv.URL+"/v1", 50*time.Millisecond)
	_, err := client.Complete(context.Background(), []domain.Message{{Role: domain.RoleUser, Content: "hi"}}, "persona")

	var upstreamErr *domain.UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstreamErr.Reason != domain.UpstreamTimeout {
		t.Errorf("reason = %q, want %q", upstreamErr.Reason, domain.UpstreamTimeout)
	}
}

func TestCompleteUnreachableEndpoint(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1/v1", time.Second)
	_, err := client.Complete(context.Background(), []domain.Message{{Role: domain.RoleUser, Content: "hi"}}, "persona")

	var upstreamErr *domain.UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstreamErr.Reason != domain.UpstreamNetwork {
		t.Errorf("reason = %q, want %q", upstreamErr.Reason, domain.UpstreamNetwork)
	}
}
