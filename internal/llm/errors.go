package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNotConfigured indicates no provider or API key is configured.
	ErrNotConfigured = errors.New("llm provider not configured")

	// ErrUnavailable indicates the provider could not be reached.
	ErrUnavailable = errors.New("llm provider unavailable")

	// ErrTimeout indicates the LLM request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrRateLimited indicates the provider throttled the request.
	ErrRateLimited = errors.New("llm rate limit exceeded")

	// ErrQuotaExceeded indicates the account has no remaining credit.
	ErrQuotaExceeded = errors.New("llm quota exceeded")

	// ErrUnauthorized indicates the API key was rejected.
	ErrUnauthorized = errors.New("llm api key rejected")

	// ErrBadRequest indicates the provider refused the request as malformed.
	ErrBadRequest = errors.New("llm bad request")

	// ErrEmptyResponse indicates the provider answered without any text.
	ErrEmptyResponse = errors.New("no content generated from llm")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")
)

// APIError is a provider HTTP failure normalised across SDKs.
type APIError struct {
	Provider   Provider
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: status %d (%s): %s", e.Provider, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Unwrap maps the failure onto one of the package sentinels so callers can
// use errors.Is without knowing the provider.
func (e *APIError) Unwrap() error {
	code := strings.ToLower(e.Code)
	msg := strings.ToLower(e.Message)
	switch {
	case code == "insufficient_quota" || strings.Contains(msg, "quota") || strings.Contains(msg, "credit balance"):
		return ErrQuotaExceeded
	case code == "invalid_api_key" || e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusUnprocessableEntity:
		return ErrBadRequest
	case e.StatusCode >= 500:
		return ErrUnavailable
	default:
		return nil
	}
}

// retryable reports whether another attempt could plausibly succeed.
func retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable) || isConnectionError(err)
}
