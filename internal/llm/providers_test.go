package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

const chatCompletionBody = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-4o-mini",
	"choices": [{"index": 0, "message": {"role": "assistant", "content": "Consider the shepherd."}, "finish_reason": "stop"}],
	"usage": {"prompt_tokens": 5, "completion_tokens": 7, "total_tokens": 12}
}`

func TestOpenAIClient_Generate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-openai", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])
		msgs, ok := body["messages"].([]any)
		require.True(t, ok)
		assert.Len(t, msgs, 2)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatCompletionBody))
	}))
	defer srv.Close()

	client := newTestClient(t, testConfig(ProviderOpenAI, srv.URL+"/"), nil)
	resp, err := client.Generate(context.Background(), GenerateRequest{Task: TaskSecondQuestions, UserPrompt: "p"})

	require.NoError(t, err)
	assert.Equal(t, "Consider the shepherd.", resp.Text)
	assert.Equal(t, "gpt-4o-mini", resp.Model)
	assert.Equal(t, 12, resp.Usage.TotalTokens)
}

func TestOpenAIClient_Generate_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, testConfig(ProviderOpenAI, srv.URL+"/"), nil)
	_, err := client.Generate(context.Background(), GenerateRequest{Task: TaskFirstQuestions, UserPrompt: "p"})

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Invalid OpenAI API key configured.", KindOf(err).Message(ProviderOpenAI))
}

func TestOpenRouterClient_Generate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-openrouter", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatCompletionBody))
	}))
	defer srv.Close()

	cfg := testConfig(ProviderOpenRouter, srv.URL)
	cfg.Model = "gpt-4o-mini"
	client := newTestClient(t, cfg, nil)
	resp, err := client.Generate(context.Background(), GenerateRequest{Task: TaskFinalDraft, UserPrompt: "p"})

	require.NoError(t, err)
	assert.Equal(t, "Consider the shepherd.", resp.Text)
	assert.Equal(t, 5, resp.Usage.PromptTokens)
}

func TestOpenRouterClient_Generate_QuotaExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"You exceeded your current quota","type":"insufficient_quota","code":"insufficient_quota"}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, testConfig(ProviderOpenRouter, srv.URL), nil)
	_, err := client.Generate(context.Background(), GenerateRequest{Task: TaskFirstQuestions, UserPrompt: "p"})

	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.NotErrorIs(t, err, ErrRetryExhausted, "quota errors are not retried")
}

func TestOllamaClient_Generate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.2", req["model"])
		assert.Equal(t, false, req["stream"])

		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Write([]byte(`{"model":"llama3.2","message":{"role":"assistant","content":"Questions follow."},"done":true,"prompt_eval_count":3,"eval_count":4}` + "\n"))
	}))
	defer srv.Close()

	cfg := testConfig(ProviderOllama, "")
	cfg.OllamaEndpoint = srv.URL
	client := newTestClient(t, cfg, nil)
	resp, err := client.Generate(context.Background(), GenerateRequest{Task: TaskFirstQuestions, UserPrompt: "p"})

	require.NoError(t, err)
	assert.Equal(t, "Questions follow.", resp.Text)
	assert.Equal(t, "llama3.2", resp.Model)
	assert.Equal(t, 7, resp.Usage.TotalTokens)
}

func TestOllamaClient_Generate_ModelMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model \"llama3.2\" not found, try pulling it first"}`))
	}))
	defer srv.Close()

	cfg := testConfig(ProviderOllama, srv.URL+"/v1")
	client := newTestClient(t, cfg, nil)
	_, err := client.Generate(context.Background(), GenerateRequest{Task: TaskFirstQuestions, UserPrompt: "p"})

	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestOllamaClient_Generate_ErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
		kind   ErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"unauthorized"}`, ErrUnauthorized, KindUnauthorized},
		{"rate limited", http.StatusTooManyRequests, `{"error":"too many requests"}`, ErrRateLimited, KindRateLimited},
		{"server error", http.StatusInternalServerError, `{"error":"llama runner process has terminated"}`, ErrUnavailable, KindUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			cfg := testConfig(ProviderOllama, srv.URL)
			cfg.MaxRetries = 0
			_, err := newTestClient(t, cfg, nil).Generate(context.Background(), GenerateRequest{Task: TaskFirstQuestions, UserPrompt: "p"})

			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.kind, KindOf(err))
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestOllamaGenerator_UnauthorizedMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, testConfig(ProviderOllama, srv.URL), nil)
	res := NewGenerator(client, ProviderOllama, nil).Generate(context.Background(), TaskFirstQuestions, "p", "owner-1")

	assert.False(t, res.OK())
	assert.Equal(t, KindUnauthorized, res.ErrorKind)
	assert.Equal(t, KindUnauthorized.Message(ProviderOllama), res.Message)
}

func TestOllamaClient_Available(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig(ProviderOllama, srv.URL)
	assert.True(t, newTestClient(t, cfg, nil).Available(context.Background()))

	cfg = testConfig(ProviderOllama, "http://127.0.0.1:1")
	assert.False(t, newTestClient(t, cfg, nil).Available(context.Background()))
}

func TestClassifyGeminiError(t *testing.T) {
	err := classifyGeminiError(genai.APIError{Code: http.StatusTooManyRequests, Status: "RESOURCE_EXHAUSTED", Message: "Resource has been exhausted"})
	assert.ErrorIs(t, err, ErrRateLimited)

	err = classifyGeminiError(genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT", Message: "API key not valid"})
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestAPIError_Unwrap(t *testing.T) {
	tests := []struct {
		err  *APIError
		want error
	}{
		{&APIError{StatusCode: 429, Code: "insufficient_quota"}, ErrQuotaExceeded},
		{&APIError{StatusCode: 401, Code: "invalid_api_key"}, ErrUnauthorized},
		{&APIError{StatusCode: 403}, ErrUnauthorized},
		{&APIError{StatusCode: 429}, ErrRateLimited},
		{&APIError{StatusCode: 422}, ErrBadRequest},
		{&APIError{StatusCode: 529, Code: "overloaded_error"}, ErrUnavailable},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, tt.err, tt.want, tt.err.Error())
	}
	assert.Nil(t, (&APIError{StatusCode: 302}).Unwrap())
}
