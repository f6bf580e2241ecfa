package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicGenerate(t *testing.T) {
	var gotReq anthropicRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{"type": "text", "text": "hello from claude"}},
		})
	}))
	defer server.Close()

	a := &Anthropic{BaseURL: server.URL}
	text, err := a.Generate(context.Background(), Request{
		Prompt:      "hi",
		Model:       "claude-3-sonnet",
		APIKey:      "sk-test",
		Temperature: 0.5,
		MaxTokens:   256,
	})

	require.NoError(t, err)
	assert.Equal(t, "hello from claude", text)
	assert.Equal(t, "claude-3-sonnet", gotReq.Model)
	assert.Equal(t, 256, gotReq.MaxTokens)
	require.Len(t, gotReq.Messages, 1)
	assert.Equal(t, "user", gotReq.Messages[0].Role)
	assert.Equal(t, "hi", gotReq.Messages[0].Content)
}

func TestAnthropicGenerateHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid api key"}}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	a := &Anthropic{BaseURL: server.URL}
	_, err := a.Generate(context.Background(), Request{Prompt: "hi", Model: "claude-3-sonnet", APIKey: "bad"})

	require.Error(t, err)
	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "anthropic", provErr.Provider)
	assert.Contains(t, err.Error(), "anthropic")
}

func TestAnthropicGenerateNoTextContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"content": []map[string]any{}})
	}))
	defer server.Close()

	a := &Anthropic{BaseURL: server.URL}
	_, err := a.Generate(context.Background(), Request{Prompt: "hi", Model: "claude-3-sonnet", APIKey: "k"})
	assert.Error(t, err)
}
