package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Divas-Gupta30/workflow-studio/internal/llm"
)

type fakeRetriever struct {
	snippets []Snippet
	err      error
	calls    int
}

func (f *fakeRetriever) QuerySimilar(_ context.Context, _, _ string, _ int) ([]Snippet, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.snippets, nil
}

type fakeProvider struct {
	name       string
	response   string
	err        error
	called     int
	lastPrompt string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(_ context.Context, req llm.Request) (string, error) {
	f.called++
	f.lastPrompt = req.Prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeSearcher struct {
	results []string
	err     error
	called  int
}

func (f *fakeSearcher) Search(_ context.Context, _, _ string) ([]string, error) {
	f.called++
	return f.results, f.err
}

func newTestEngine(retriever Retriever, provider llm.Provider, searcher WebSearcher) *Engine {
	registry := llm.NewRegistry()
	if provider != nil {
		registry.Register(provider)
	}
	return NewEngine(retriever, registry, searcher, time.Second)
}

func llmGraph(config map[string]any) Graph {
	return Graph{
		Nodes: []Node{
			{ID: "q1", Kind: KindQuery},
			{ID: "llm1", Kind: KindLLM, Config: config},
			{ID: "out1", Kind: KindOutput},
		},
		Edges: []Edge{
			{Source: "q1", Target: "llm1"},
			{Source: "llm1", Target: "out1"},
		},
	}
}

func TestExecuteMockModeWithoutAPIKey(t *testing.T) {
	provider := &fakeProvider{name: "openai"}
	engine := newTestEngine(&fakeRetriever{}, provider, nil)

	g := llmGraph(map[string]any{"provider": "openai", "model": "gpt-3.5-turbo", "api_key": ""})
	result, err := engine.Execute(context.Background(), "wf1", g, ExecutionRequest{Query: "What is 2+2?"})

	require.NoError(t, err)
	assert.False(t, result.APIKeyProvided)
	assert.Contains(t, result.Response, "What is 2+2?")
	assert.Equal(t, "openai", result.Provider)
	assert.Equal(t, "gpt-3.5-turbo", result.Model)
	assert.Zero(t, provider.called, "no network call may happen without a credential")
}

func TestExecuteMockResponseIsDeterministic(t *testing.T) {
	engine := newTestEngine(&fakeRetriever{}, nil, nil)
	g := llmGraph(map[string]any{"provider": "openai"})

	first, err := engine.Execute(context.Background(), "wf1", g, ExecutionRequest{Query: "hello"})
	require.NoError(t, err)
	second, err := engine.Execute(context.Background(), "wf1", g, ExecutionRequest{Query: "hello"})
	require.NoError(t, err)

	assert.Equal(t, first.Response, second.Response)
}

func TestExecuteMockModeAppliesToEveryProvider(t *testing.T) {
	// The empty-credential rule is uniform; even the local ollama
	// provider is not called without a key on the node.
	provider := &fakeProvider{name: "ollama"}
	engine := newTestEngine(&fakeRetriever{}, provider, nil)

	g := llmGraph(map[string]any{"provider": "ollama", "model": "llama3"})
	result, err := engine.Execute(context.Background(), "wf1", g, ExecutionRequest{Query: "q"})

	require.NoError(t, err)
	assert.Zero(t, provider.called)
	assert.False(t, result.APIKeyProvided)
	assert.Contains(t, result.Response, "mock")
}

func TestExecuteCallsProviderWithContext(t *testing.T) {
	retriever := &fakeRetriever{snippets: []Snippet{
		{Text: "Paris is the capital of France", Score: 0.1, Source: "geo.pdf"},
	}}
	provider := &fakeProvider{name: "openai", response: "Paris."}
	engine := newTestEngine(retriever, provider, nil)

	g := Graph{
		Nodes: []Node{
			{ID: "kb1", Kind: KindKnowledgeBase},
			{ID: "llm1", Kind: KindLLM, Config: map[string]any{"provider": "openai", "api_key": "key"}},
			{ID: "out1", Kind: KindOutput},
		},
		Edges: []Edge{
			{Source: "kb1", Target: "llm1"},
			{Source: "llm1", Target: "out1"},
		},
	}
	result, err := engine.Execute(context.Background(), "wf1", g, ExecutionRequest{Query: "capital of France"})

	require.NoError(t, err)
	assert.Equal(t, 1, provider.called)
	assert.Equal(t, "Paris.", result.Response)
	assert.True(t, result.APIKeyProvided)
	require.Len(t, result.ContextUsed, 1)
	assert.Contains(t, result.ContextUsed[0], "Paris is the capital of France")
	assert.Contains(t, result.ContextUsed[0], "geo.pdf")
	assert.Contains(t, provider.lastPrompt, "Context from Knowledge Base:")
	assert.Contains(t, provider.lastPrompt, "Question: capital of France")
}

func TestExecuteGatherIsIdempotent(t *testing.T) {
	retriever := &fakeRetriever{snippets: []Snippet{
		{Text: "alpha", Source: "a.txt"},
		{Text: "beta", Source: "b.txt"},
	}}
	engine := newTestEngine(retriever, nil, nil)

	g := Graph{
		Nodes: []Node{
			{ID: "kb-a", Kind: KindKnowledgeBase},
			{ID: "kb-b", Kind: KindKnowledgeBase},
			{ID: "llm1", Kind: KindLLM, Config: map[string]any{}},
			{ID: "out1", Kind: KindOutput},
		},
		Edges: []Edge{
			{Source: "kb-b", Target: "llm1"},
			{Source: "kb-a", Target: "llm1"},
			{Source: "llm1", Target: "out1"},
		},
	}

	first, err := engine.Execute(context.Background(), "wf1", g, ExecutionRequest{Query: "q"})
	require.NoError(t, err)
	second, err := engine.Execute(context.Background(), "wf1", g, ExecutionRequest{Query: "q"})
	require.NoError(t, err)

	// Both knowledge base nodes query the same workflow partition, so
	// each contributes the same snippets, in node-id order.
	assert.Len(t, first.ContextUsed, 4)
	assert.Equal(t, first.ContextUsed, second.ContextUsed)
}

func TestExecuteRetrievalFailureDegrades(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("connection refused")}
	engine := newTestEngine(retriever, nil, nil)

	g := Graph{
		Nodes: []Node{
			{ID: "kb1", Kind: KindKnowledgeBase},
			{ID: "llm1", Kind: KindLLM, Config: map[string]any{}},
			{ID: "out1", Kind: KindOutput},
		},
		Edges: []Edge{
			{Source: "kb1", Target: "llm1"},
			{Source: "llm1", Target: "out1"},
		},
	}
	result, err := engine.Execute(context.Background(), "wf1", g, ExecutionRequest{Query: "q"})

	require.NoError(t, err)
	assert.Empty(t, result.ContextUsed)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "kb1")
}

func TestExecuteProviderErrorIsFatal(t *testing.T) {
	provider := &fakeProvider{name: "openai", err: &llm.ProviderError{Provider: "openai", Err: errors.New("boom")}}
	engine := newTestEngine(&fakeRetriever{}, provider, nil)

	g := llmGraph(map[string]any{"provider": "openai", "api_key": "key"})
	_, err := engine.Execute(context.Background(), "wf1", g, ExecutionRequest{Query: "q"})

	require.Error(t, err)
	var provErr *llm.ProviderError
	assert.ErrorAs(t, err, &provErr)
}

func TestExecuteWebSearchAugmentsPrompt(t *testing.T) {
	provider := &fakeProvider{name: "openai", response: "ok"}
	searcher := &fakeSearcher{results: []string{"Title: t\nSnippet: s\nURL: u"}}
	engine := newTestEngine(&fakeRetriever{}, provider, searcher)

	g := llmGraph(map[string]any{
		"provider":       "openai",
		"api_key":        "key",
		"use_web_search": true,
		"serp_api_key":   "serp",
	})
	result, err := engine.Execute(context.Background(), "wf1", g, ExecutionRequest{Query: "q"})

	require.NoError(t, err)
	assert.True(t, result.WebSearchUsed)
	assert.Equal(t, 1, searcher.called)
	assert.Contains(t, provider.lastPrompt, "Web Search Results:")
}

func TestExecuteWebSearchSkippedWithoutKey(t *testing.T) {
	searcher := &fakeSearcher{results: []string{"x"}}
	engine := newTestEngine(&fakeRetriever{}, nil, searcher)

	g := llmGraph(map[string]any{"use_web_search": true})
	result, err := engine.Execute(context.Background(), "wf1", g, ExecutionRequest{Query: "q"})

	require.NoError(t, err)
	assert.False(t, result.WebSearchUsed)
	assert.Zero(t, searcher.called)
}

func TestExecuteWebSearchFailureIsNonFatal(t *testing.T) {
	provider := &fakeProvider{name: "openai", response: "ok"}
	searcher := &fakeSearcher{err: errors.New("search down")}
	engine := newTestEngine(&fakeRetriever{}, provider, searcher)

	g := llmGraph(map[string]any{
		"provider":       "openai",
		"api_key":        "key",
		"use_web_search": true,
		"serp_api_key":   "serp",
	})
	result, err := engine.Execute(context.Background(), "wf1", g, ExecutionRequest{Query: "q"})

	require.NoError(t, err)
	assert.False(t, result.WebSearchUsed)
	assert.Equal(t, "ok", result.Response)
}

func TestExecuteCustomPromptSubstitution(t *testing.T) {
	retriever := &fakeRetriever{snippets: []Snippet{{Text: "facts", Source: "f.txt"}}}
	provider := &fakeProvider{name: "openai", response: "ok"}
	engine := newTestEngine(retriever, provider, nil)

	g := Graph{
		Nodes: []Node{
			{ID: "kb1", Kind: KindKnowledgeBase},
			{ID: "llm1", Kind: KindLLM, Config: map[string]any{
				"provider":      "openai",
				"api_key":       "key",
				"custom_prompt": "Given {context}, answer: {query}",
			}},
			{ID: "out1", Kind: KindOutput},
		},
		Edges: []Edge{
			{Source: "kb1", Target: "llm1"},
			{Source: "llm1", Target: "out1"},
		},
	}
	_, err := engine.Execute(context.Background(), "wf1", g, ExecutionRequest{Query: "why?"})

	require.NoError(t, err)
	assert.Contains(t, provider.lastPrompt, "Given File: f.txt\nfacts, answer: why?")
	assert.NotContains(t, provider.lastPrompt, "{query}")
}

func TestExecuteUnknownProviderWithKeyReturnsLabeledMock(t *testing.T) {
	engine := newTestEngine(&fakeRetriever{}, nil, nil)

	g := llmGraph(map[string]any{"provider": "acme", "model": "acme-xl", "api_key": "key"})
	result, err := engine.Execute(context.Background(), "wf1", g, ExecutionRequest{Query: "q"})

	require.NoError(t, err)
	assert.True(t, result.APIKeyProvided)
	assert.Contains(t, result.Response, "acme")
	assert.Contains(t, result.Response, "Mock response")
}

func TestExecuteKnowledgeBaseOnlyPath(t *testing.T) {
	retriever := &fakeRetriever{snippets: []Snippet{
		{Text: "Paris is the capital of France", Source: "geo.pdf"},
	}}
	engine := newTestEngine(retriever, nil, nil)

	g := Graph{
		Nodes: []Node{
			{ID: "kb1", Kind: KindKnowledgeBase},
			{ID: "out1", Kind: KindOutput},
		},
		Edges: []Edge{{Source: "kb1", Target: "out1"}},
	}
	result, err := engine.Execute(context.Background(), "wf1", g, ExecutionRequest{Query: "capital of France"})

	require.NoError(t, err)
	assert.Equal(t, "knowledge-base", result.Provider)
	assert.Equal(t, "kb-search", result.Model)
	assert.Contains(t, result.Response, "Paris is the capital of France")
}

func TestExecuteQueryEchoPath(t *testing.T) {
	engine := newTestEngine(&fakeRetriever{}, nil, nil)

	g := Graph{
		Nodes: []Node{
			{ID: "q1", Kind: KindQuery},
			{ID: "out1", Kind: KindOutput},
		},
		Edges: []Edge{{Source: "q1", Target: "out1"}},
	}
	result, err := engine.Execute(context.Background(), "wf1", g, ExecutionRequest{Query: "echo me"})

	require.NoError(t, err)
	assert.Equal(t, "echo me", result.Response)
	assert.Equal(t, "user", result.Provider)
	assert.Greater(t, result.ProcessingTime, 0.0)
}

func TestExecuteGraphErrorsPropagate(t *testing.T) {
	engine := newTestEngine(&fakeRetriever{}, nil, nil)

	_, err := engine.Execute(context.Background(), "wf1", Graph{}, ExecutionRequest{Query: "q"})
	assert.ErrorIs(t, err, ErrGraphIncomplete)
}

func TestBuildPromptOmitsEmptySections(t *testing.T) {
	prompt := buildPrompt("", "q", nil, nil)
	assert.Equal(t, "Question: q\n\nAnswer:", prompt)

	prompt = buildPrompt("", "q", []string{"ctx"}, nil)
	assert.Contains(t, prompt, "Context from Knowledge Base:\nctx")
	assert.NotContains(t, prompt, "Web Search Results:")
}
