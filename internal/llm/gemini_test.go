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

func TestGeminiGenerate(t *testing.T) {
	var gotReq geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "g-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{"text": "part one"}, {"text": "part two"}},
				},
			}},
		})
	}))
	defer server.Close()

	g := &Gemini{BaseURL: server.URL}
	text, err := g.Generate(context.Background(), Request{
		Prompt:      "hi",
		Model:       "gemini-2.5-flash",
		APIKey:      "g-key",
		Temperature: 0.2,
		MaxTokens:   128,
	})

	require.NoError(t, err)
	assert.Equal(t, "part one part two", text)
	require.Len(t, gotReq.Contents, 1)
	require.Len(t, gotReq.Contents[0].Parts, 1)
	assert.Equal(t, "hi", gotReq.Contents[0].Parts[0].Text)
	assert.Equal(t, 128, gotReq.GenerationConfig.MaxOutputTokens)
}

func TestGeminiGenerateNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer server.Close()

	g := &Gemini{BaseURL: server.URL}
	_, err := g.Generate(context.Background(), Request{Prompt: "hi", Model: "gemini-2.5-pro", APIKey: "k"})

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "gemini", provErr.Provider)
}

func TestGeminiGenerateHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	g := &Gemini{BaseURL: server.URL}
	_, err := g.Generate(context.Background(), Request{Prompt: "hi", Model: "gemini-2.5-pro", APIKey: "k"})

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Contains(t, provErr.Err.Error(), "429")
}
