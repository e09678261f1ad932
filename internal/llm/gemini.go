package llm

import (
	"context"
	"errors"

	"google.golang.org/genai"
)

// geminiBackend uses the Google GenAI SDK against the Gemini API.
type geminiBackend struct {
	client *genai.Client
	hasKey bool
}

func newGeminiBackend(ctx context.Context, cfg LLMConfig) (*geminiBackend, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.GeminiAPIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: defaultHTTPClient(),
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, err
	}
	return &geminiBackend{client: client, hasKey: cfg.GeminiAPIKey != ""}, nil
}

func (b *geminiBackend) complete(ctx context.Context, c completion) (*GenerateResponse, error) {
	temp := float32(c.Temperature)
	resp, err := b.client.Models.GenerateContent(ctx, c.Model,
		[]*genai.Content{genai.NewContentFromText(c.Prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(c.System, genai.RoleUser),
			Temperature:       &temp,
			MaxOutputTokens:   int32(c.MaxTokens),
		})
	if err != nil {
		return nil, classifyGeminiError(err)
	}

	out := &GenerateResponse{Text: resp.Text(), Model: resp.ModelVersion}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = &Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return out, nil
}

func (b *geminiBackend) available(context.Context) bool {
	return b.hasKey
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{
			Provider:   ProviderGemini,
			StatusCode: apiErr.Code,
			Code:       apiErr.Status,
			Message:    apiErr.Message,
		}
	}
	return err
}
