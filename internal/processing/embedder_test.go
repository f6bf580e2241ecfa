package processing

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedderDeterministic(t *testing.T) {
	e := HashEmbedder{}

	a, err := e.Embed(context.Background(), "the capital of France is Paris")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "the capital of France is Paris")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, EmbeddingDim)
}

func TestHashEmbedderNormalized(t *testing.T) {
	e := HashEmbedder{}

	vec, err := e.Embed(context.Background(), "some words to hash into buckets")
	require.NoError(t, err)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestHashEmbedderEmptyText(t *testing.T) {
	e := HashEmbedder{}

	vec, err := e.Embed(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, vec, EmbeddingDim)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}

func TestHashEmbedderCaseInsensitive(t *testing.T) {
	e := HashEmbedder{}

	a, _ := e.Embed(context.Background(), "Hello World")
	b, _ := e.Embed(context.Background(), "hello world")
	assert.Equal(t, a, b)
}

func TestOllamaEmbedder(t *testing.T) {
	embedding := make([]float32, EmbeddingDim)
	embedding[0] = 0.5

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)

		var req ollamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, "hello", req.Prompt)

		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: embedding})
	}))
	defer server.Close()

	e := NewOllamaEmbedder(server.URL, "nomic-embed-text")
	vec, err := e.Embed(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, embedding, vec)
}

func TestOllamaEmbedderDimensionMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: make([]float32, 10)})
	}))
	defer server.Close()

	e := NewOllamaEmbedder(server.URL, "nomic-embed-text")
	_, err := e.Embed(context.Background(), "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "768")
}

func TestOllamaEmbedderEmptyText(t *testing.T) {
	e := NewOllamaEmbedder("http://localhost:11434", "nomic-embed-text")
	_, err := e.Embed(context.Background(), "")
	assert.Error(t, err)
}

type failingEmbedder struct{ after int }

func (f *failingEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if f.after <= 0 {
		return nil, errors.New("embedding service down")
	}
	f.after--
	return make([]float32, EmbeddingDim), nil
}

func TestEmbedChunks(t *testing.T) {
	out, err := EmbedChunks(context.Background(), HashEmbedder{}, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, out, 3)
}

func TestEmbedChunksPropagatesError(t *testing.T) {
	_, err := EmbedChunks(context.Background(), &failingEmbedder{after: 1}, []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk 1")
}

func TestEmbedChunksEmptyInput(t *testing.T) {
	_, err := EmbedChunks(context.Background(), HashEmbedder{}, nil)
	assert.Error(t, err)
}
