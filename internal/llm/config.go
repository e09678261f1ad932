package llm

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Provider selects the backend used for generation.
type Provider string

const (
	ProviderAnthropic  Provider = "anthropic"
	ProviderOpenAI     Provider = "openai"
	ProviderOpenRouter Provider = "openrouter"
	ProviderGemini     Provider = "gemini"
	ProviderOllama     Provider = "ollama"
	ProviderNone       Provider = "none"
)

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskFirstQuestions  TaskType = "first_questions"
	TaskSecondQuestions TaskType = "second_questions"
	TaskFinalDraft      TaskType = "final_draft"
)

// DefaultSystemPrompt frames every generation call.
const DefaultSystemPrompt = "You are a helpful assistant for Catholic homily preparation. " +
	"Provide thoughtful, theologically sound content that helps priests and deacons prepare meaningful homilies."

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// LLMConfig holds all configuration for the LLM subsystem. Provider keys
// fall back to the vendor's conventional variable (e.g. ANTHROPIC_API_KEY)
// when the HOMILY_LLM_ prefixed one is unset.
type LLMConfig struct {
	Provider     Provider `envconfig:"PROVIDER" default:"anthropic"`
	LogCalls     bool     `envconfig:"LOG_CALLS" default:"false"`
	Model        string   `envconfig:"MODEL"`
	BaseURL      string   `envconfig:"BASE_URL"`
	SystemPrompt string   `envconfig:"SYSTEM_PROMPT"`
	Temperature  float64  `envconfig:"TEMPERATURE" default:"0.7"`
	MaxTokens    int      `envconfig:"MAX_TOKENS" default:"1000"`
	TimeoutMs    int      `envconfig:"TIMEOUT_MS" default:"60000"`
	MaxRetries   int      `envconfig:"MAX_RETRIES" default:"1"`

	AnthropicAPIKey  string `envconfig:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY"`
	OpenRouterAPIKey string `envconfig:"OPENROUTER_API_KEY"`
	GeminiAPIKey     string `envconfig:"GEMINI_API_KEY"`
	OllamaEndpoint   string `envconfig:"OLLAMA_ENDPOINT" default:"http://localhost:11434"`

	FinalDraftTimeoutMs int `envconfig:"FINAL_DRAFT_TIMEOUT_MS"`

	Tasks map[TaskType]TaskConfig `ignored:"true"`
}

// DefaultConfig returns an LLMConfig with sensible defaults.
func DefaultConfig() LLMConfig {
	cfg := LLMConfig{
		Provider:       ProviderAnthropic,
		Temperature:    0.7,
		MaxTokens:      1000,
		TimeoutMs:      60000,
		MaxRetries:     1,
		OllamaEndpoint: "http://localhost:11434",
	}
	cfg.Tasks = defaultTasks(cfg)
	return cfg
}

// LoadConfig reads HOMILY_LLM_* environment variables over the defaults.
func LoadConfig() (LLMConfig, error) {
	var cfg LLMConfig
	if err := envconfig.Process("HOMILY_LLM", &cfg); err != nil {
		return LLMConfig{}, fmt.Errorf("loading llm config: %w", err)
	}
	cfg.Provider = Provider(strings.ToLower(string(cfg.Provider)))
	if err := cfg.Validate(); err != nil {
		return LLMConfig{}, err
	}
	cfg.Tasks = defaultTasks(cfg)
	if cfg.FinalDraftTimeoutMs > 0 {
		tc := cfg.Tasks[TaskFinalDraft]
		tc.TimeoutMs = cfg.FinalDraftTimeoutMs
		cfg.Tasks[TaskFinalDraft] = tc
	}
	return cfg, nil
}

// The final draft is the longest output, so it gets more room and time.
func defaultTasks(cfg LLMConfig) map[TaskType]TaskConfig {
	return map[TaskType]TaskConfig{
		TaskFirstQuestions:  {Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens},
		TaskSecondQuestions: {Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens},
		TaskFinalDraft:      {Temperature: cfg.Temperature, MaxTokens: max(cfg.MaxTokens, 2000), TimeoutMs: 2 * cfg.TimeoutMs},
	}
}

// Validate rejects unknown providers and nonsensical limits.
func (c LLMConfig) Validate() error {
	switch c.Provider {
	case ProviderAnthropic, ProviderOpenAI, ProviderOpenRouter, ProviderGemini, ProviderOllama, ProviderNone:
	default:
		return fmt.Errorf("unknown llm provider %q", c.Provider)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("llm max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.TimeoutMs <= 0 {
		return fmt.Errorf("llm timeout must be positive, got %d", c.TimeoutMs)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("llm max retries must not be negative, got %d", c.MaxRetries)
	}
	return nil
}

// Enabled reports whether generation can be attempted at all.
func (c LLMConfig) Enabled() bool {
	if c.Provider == ProviderNone || c.Provider == "" {
		return false
	}
	return c.Provider == ProviderOllama || c.APIKey() != ""
}

// APIKey returns the key for the selected provider.
func (c LLMConfig) APIKey() string {
	switch c.Provider {
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderOpenRouter:
		return c.OpenRouterAPIKey
	case ProviderGemini:
		return c.GeminiAPIKey
	default:
		return ""
	}
}

// ResolvedModel returns the configured model or the provider default.
func (c LLMConfig) ResolvedModel() string {
	if c.Model != "" {
		return c.Model
	}
	switch c.Provider {
	case ProviderAnthropic:
		return "claude-3-5-sonnet-20241022"
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderOpenRouter:
		return "openai/gpt-4o-mini"
	case ProviderGemini:
		return "gemini-2.0-flash"
	case ProviderOllama:
		return "llama3.2"
	default:
		return ""
	}
}

// ResolvedSystemPrompt returns the configured system prompt or the default.
func (c LLMConfig) ResolvedSystemPrompt() string {
	if strings.TrimSpace(c.SystemPrompt) != "" {
		return c.SystemPrompt
	}
	return DefaultSystemPrompt
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

// TaskParams returns temperature and max tokens for task, falling back to
// the global values.
func (c LLMConfig) TaskParams(task TaskType) (float64, int) {
	temp, maxTok := c.Temperature, c.MaxTokens
	if tc, ok := c.Tasks[task]; ok {
		if tc.Temperature > 0 {
			temp = tc.Temperature
		}
		if tc.MaxTokens > 0 {
			maxTok = tc.MaxTokens
		}
	}
	return temp, maxTok
}
