package llm

import (
	"context"
	"errors"
	"fmt"

	openaigo "github.com/sashabaranov/go-openai"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// openRouterBackend talks to any OpenAI-compatible endpoint, OpenRouter by
// default, through go-openai.
type openRouterBackend struct {
	client *openaigo.Client
	hasKey bool
}

func newOpenRouterBackend(cfg LLMConfig) *openRouterBackend {
	clientCfg := openaigo.DefaultConfig(cfg.OpenRouterAPIKey)
	clientCfg.BaseURL = openRouterBaseURL
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = defaultHTTPClient()
	return &openRouterBackend{
		client: openaigo.NewClientWithConfig(clientCfg),
		hasKey: cfg.OpenRouterAPIKey != "",
	}
}

func (b *openRouterBackend) complete(ctx context.Context, c completion) (*GenerateResponse, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model: c.Model,
		Messages: []openaigo.ChatCompletionMessage{
			{Role: openaigo.ChatMessageRoleSystem, Content: c.System},
			{Role: openaigo.ChatMessageRoleUser, Content: c.Prompt},
		},
		MaxTokens:   c.MaxTokens,
		Temperature: float32(c.Temperature),
	})
	if err != nil {
		return nil, classifyGoOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	return &GenerateResponse{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
		Usage: &Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func (b *openRouterBackend) available(context.Context) bool {
	return b.hasKey
}

func classifyGoOpenAIError(err error) error {
	var apiErr *openaigo.APIError
	if errors.As(err, &apiErr) {
		code := ""
		if apiErr.Code != nil {
			code = fmt.Sprint(apiErr.Code)
		}
		return &APIError{
			Provider:   ProviderOpenRouter,
			StatusCode: apiErr.HTTPStatusCode,
			Code:       code,
			Message:    apiErr.Message,
		}
	}
	var reqErr *openaigo.RequestError
	if errors.As(err, &reqErr) {
		return &APIError{
			Provider:   ProviderOpenRouter,
			StatusCode: reqErr.HTTPStatusCode,
			Message:    reqErr.Error(),
		}
	}
	return err
}
