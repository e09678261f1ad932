package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies a failed generation for the user-facing layer.
type ErrorKind string

const (
	KindNone          ErrorKind = ""
	KindAuthRequired  ErrorKind = "auth_required"
	KindNotConfigured ErrorKind = "not_configured"
	KindRateLimited   ErrorKind = "rate_limited"
	KindQuotaExceeded ErrorKind = "quota_exceeded"
	KindUnauthorized  ErrorKind = "unauthorized"
	KindBadRequest    ErrorKind = "bad_request"
	KindEmptyResponse ErrorKind = "empty_response"
	KindTimeout       ErrorKind = "timeout"
	KindUnavailable   ErrorKind = "unavailable"
	KindUnknown       ErrorKind = "unknown"
)

// KindOf maps an error returned by an LLMClient to an ErrorKind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNotConfigured):
		return KindNotConfigured
	case errors.Is(err, ErrQuotaExceeded):
		return KindQuotaExceeded
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrBadRequest):
		return KindBadRequest
	case errors.Is(err, ErrEmptyResponse):
		return KindEmptyResponse
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	default:
		return KindUnknown
	}
}

// Message is the notification shown to the user for this kind of failure.
func (k ErrorKind) Message(p Provider) string {
	switch k {
	case KindNone:
		return ""
	case KindAuthRequired:
		return "User authentication required"
	case KindNotConfigured:
		return fmt.Sprintf("%s API key not configured", providerLabel(p))
	case KindRateLimited:
		return "Rate limit exceeded. Please try again in a moment."
	case KindQuotaExceeded:
		return fmt.Sprintf("%s quota exceeded. Please check your billing.", providerLabel(p))
	case KindUnauthorized:
		return fmt.Sprintf("Invalid %s API key configured.", providerLabel(p))
	case KindBadRequest:
		return "Bad request. Please check your prompt and try again."
	case KindEmptyResponse:
		return "No content generated from AI"
	case KindTimeout:
		return "The AI service took too long to respond. Please try again."
	case KindUnavailable:
		return fmt.Sprintf("%s is unavailable right now. Please try again later.", providerLabel(p))
	default:
		return "Failed to generate AI content. Please try again."
	}
}

func providerLabel(p Provider) string {
	switch p {
	case ProviderAnthropic:
		return "Anthropic"
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderOpenRouter:
		return "OpenRouter"
	case ProviderGemini:
		return "Gemini"
	case ProviderOllama:
		return "Ollama"
	default:
		return "AI"
	}
}
