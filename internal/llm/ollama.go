package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// ollamaBackend talks to a local Ollama server through its Go API client.
type ollamaBackend struct {
	client *api.Client
}

func newOllamaBackend(cfg LLMConfig) (*ollamaBackend, error) {
	endpoint := cfg.OllamaEndpoint
	if cfg.BaseURL != "" {
		endpoint = cfg.BaseURL
	}
	// The API client expects the server root, not the OpenAI-compatible /v1 path.
	endpoint = strings.TrimSuffix(strings.TrimRight(endpoint, "/"), "/v1")
	base, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing ollama endpoint %q: %w", endpoint, err)
	}
	hc := defaultHTTPClient()
	hc.Transport = statusRecorder{next: hc.Transport}
	return &ollamaBackend{client: api.NewClient(base, hc)}, nil
}

// The API client turns most error bodies into a plain error and drops the
// status code, so the transport records it for the call in flight.
type statusKey struct{}

type statusRecorder struct {
	next http.RoundTripper
}

func (t statusRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err == nil {
		if code, ok := req.Context().Value(statusKey{}).(*int); ok {
			*code = resp.StatusCode
		}
	}
	return resp, err
}

func (b *ollamaBackend) complete(ctx context.Context, c completion) (*GenerateResponse, error) {
	stream := false
	req := &api.ChatRequest{
		Model: c.Model,
		Messages: []api.Message{
			{Role: "system", Content: c.System},
			{Role: "user", Content: c.Prompt},
		},
		Stream: &stream,
		Options: map[string]any{
			"temperature": c.Temperature,
			"num_predict": c.MaxTokens,
		},
	}

	var (
		text   strings.Builder
		final  api.ChatResponse
		status int
	)
	ctx = context.WithValue(ctx, statusKey{}, &status)
	err := b.client.Chat(ctx, req, func(r api.ChatResponse) error {
		text.WriteString(r.Message.Content)
		if r.Done {
			final = r
		}
		return nil
	})
	if err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			return nil, &APIError{
				Provider:   ProviderOllama,
				StatusCode: statusErr.StatusCode,
				Message:    statusErr.ErrorMessage,
			}
		}
		if status >= http.StatusBadRequest {
			return nil, &APIError{Provider: ProviderOllama, StatusCode: status, Message: err.Error()}
		}
		return nil, err
	}

	return &GenerateResponse{
		Text:  text.String(),
		Model: final.Model,
		Usage: &Usage{
			PromptTokens:     final.PromptEvalCount,
			CompletionTokens: final.EvalCount,
			TotalTokens:      final.PromptEvalCount + final.EvalCount,
		},
	}, nil
}

func (b *ollamaBackend) available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return b.client.Heartbeat(ctx) == nil
}
