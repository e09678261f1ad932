package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// GenerateRequest holds the parameters for an LLM generation call.
type GenerateRequest struct {
	Task         TaskType
	SystemPrompt string   // empty uses the configured system prompt
	UserPrompt   string
	Temperature  *float64 // nil uses task default
	MaxTokens    *int     // nil uses task default
}

// Usage is token accounting reported by the provider. It is passed through
// to callers and never interpreted.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// GenerateResponse holds the result of an LLM generation call.
type GenerateResponse struct {
	Text      string
	Model     string
	LatencyMs int64
	Usage     *Usage
}

// LLMClient provides access to a language model for text generation.
type LLMClient interface {
	// Generate sends a prompt and returns the raw text response.
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// Available checks whether the provider can be called.
	Available(ctx context.Context) bool
}

// completion is a fully resolved request handed to a provider backend.
type completion struct {
	Model       string
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// backend performs a single attempt against one provider.
type backend interface {
	complete(ctx context.Context, c completion) (*GenerateResponse, error)
	available(ctx context.Context) bool
}

// client wraps a backend with per-task timeouts, retries and observation.
type client struct {
	cfg      LLMConfig
	provider Provider
	backend  backend
	observer Observer
}

// NewClient builds the LLMClient for cfg.Provider.
func NewClient(ctx context.Context, cfg LLMConfig, observer Observer) (LLMClient, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("%w: provider %q", ErrNotConfigured, cfg.Provider)
	}
	if cfg.Tasks == nil {
		cfg.Tasks = defaultTasks(cfg)
	}

	var (
		b   backend
		err error
	)
	switch cfg.Provider {
	case ProviderAnthropic:
		b = newAnthropicBackend(cfg)
	case ProviderOpenAI:
		b = newOpenAIBackend(cfg)
	case ProviderOpenRouter:
		b = newOpenRouterBackend(cfg)
	case ProviderGemini:
		b, err = newGeminiBackend(ctx, cfg)
	case ProviderOllama:
		b, err = newOllamaBackend(cfg)
	default:
		return nil, fmt.Errorf("%w: provider %q", ErrNotConfigured, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s client: %w", cfg.Provider, err)
	}
	return newClient(cfg, b, observer), nil
}

func newClient(cfg LLMConfig, b backend, observer Observer) *client {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &client{cfg: cfg, provider: cfg.Provider, backend: b, observer: observer}
}

func (c *client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()

	temp, maxTok := c.cfg.TaskParams(req.Task)
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	if req.MaxTokens != nil {
		maxTok = *req.MaxTokens
	}
	system := req.SystemPrompt
	if system == "" {
		system = c.cfg.ResolvedSystemPrompt()
	}

	timeoutMs := c.cfg.TaskTimeout(req.Task)
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	body := completion{
		Model:       c.cfg.ResolvedModel(),
		System:      system,
		Prompt:      req.UserPrompt,
		Temperature: temp,
		MaxTokens:   maxTok,
	}

	var lastErr error
	attempts := 1 + c.cfg.MaxRetries

	for i := 0; i < attempts; i++ {
		resp, err := c.backend.complete(ctx, body)
		if err == nil && resp.Text == "" {
			err = ErrEmptyResponse
		}
		if err == nil {
			resp.LatencyMs = time.Since(start).Milliseconds()
			if resp.Model == "" {
				resp.Model = body.Model
			}
			c.observer.OnCallComplete(LLMCallEvent{
				Task:      req.Task,
				Provider:  c.provider,
				Model:     resp.Model,
				LatencyMs: resp.LatencyMs,
				Success:   true,
				Usage:     resp.Usage,
			})
			return resp, nil
		}
		lastErr = err

		// Don't retry on context cancellation/timeout or permanent failures.
		if ctx.Err() != nil || !retryable(err) {
			break
		}
	}

	if ctx.Err() != nil {
		lastErr = ErrTimeout
	} else if isConnectionError(lastErr) {
		lastErr = fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
	} else if attempts > 1 && retryable(lastErr) {
		lastErr = fmt.Errorf("%w: %w", ErrRetryExhausted, lastErr)
	}

	c.observer.OnCallComplete(LLMCallEvent{
		Task:      req.Task,
		Provider:  c.provider,
		Model:     body.Model,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   false,
		ErrorCode: errorCode(lastErr),
	})
	return nil, lastErr
}

func (c *client) Available(ctx context.Context) bool {
	return c.backend.available(ctx)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	switch KindOf(err) {
	case KindNone:
		return ""
	case KindTimeout:
		return "TIMEOUT"
	case KindUnavailable:
		return "UNAVAILABLE"
	case KindRateLimited:
		return "RATE_LIMITED"
	case KindQuotaExceeded:
		return "QUOTA"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindBadRequest:
		return "BAD_REQUEST"
	case KindEmptyResponse:
		return "EMPTY"
	default:
		return "UNKNOWN"
	}
}

func defaultHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: 5 * time.Second,
			}).DialContext,
		},
	}
}
