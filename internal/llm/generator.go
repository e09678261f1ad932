package llm

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// GenerationResult is the outcome of one generation call. Failures are
// reported through ErrorKind and Message, never as a Go error.
type GenerationResult struct {
	Content   string    `json:"content"`
	ErrorKind ErrorKind `json:"errorKind,omitempty"`
	Message   string    `json:"message,omitempty"`
	Model     string    `json:"model,omitempty"`
	Usage     *Usage    `json:"usage,omitempty"`
}

// OK reports whether the result carries usable content.
func (r GenerationResult) OK() bool {
	return r.ErrorKind == KindNone && strings.TrimSpace(r.Content) != ""
}

// Generator adapts an LLMClient to the identity-checked, error-free
// contract the wizard consumes.
type Generator struct {
	client   LLMClient
	provider Provider
	logger   *zap.Logger
}

// NewGenerator wraps client. A nil client yields a generator that reports
// KindNotConfigured for every call.
func NewGenerator(client LLMClient, provider Provider, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{client: client, provider: provider, logger: logger.Named("generator")}
}

// Generate sends an already rendered prompt on behalf of identity.
func (g *Generator) Generate(ctx context.Context, task TaskType, prompt, identity string) GenerationResult {
	if strings.TrimSpace(identity) == "" {
		return g.fail(KindAuthRequired)
	}
	if strings.TrimSpace(prompt) == "" {
		return GenerationResult{ErrorKind: KindBadRequest, Message: "Prompt is required"}
	}
	if g.client == nil {
		return g.fail(KindNotConfigured)
	}

	resp, err := g.client.Generate(ctx, GenerateRequest{Task: task, UserPrompt: prompt})
	if err != nil {
		kind := KindOf(err)
		g.logger.Warn("generation failed",
			zap.String("task", string(task)),
			zap.String("owner", identity),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return g.fail(kind)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return g.fail(KindEmptyResponse)
	}
	return GenerationResult{Content: resp.Text, Model: resp.Model, Usage: resp.Usage}
}

func (g *Generator) fail(kind ErrorKind) GenerationResult {
	return GenerationResult{ErrorKind: kind, Message: kind.Message(g.provider)}
}
