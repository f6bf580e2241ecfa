package workflow

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Divas-Gupta30/workflow-studio/internal/llm"
)

// invokeLLM gathers context, optionally augments it with web search
// results, builds the prompt and calls the configured provider. With no
// API key on the node, no network call is made and a clearly labeled
// mock response is returned instead.
func (e *Engine) invokeLLM(ctx context.Context, workflowID string, path *Path, query string) (*ExecutionResult, error) {
	cfg := ParseLLMConfig(path.LLM.Config)

	snippets, warnings := e.gatherContext(ctx, workflowID, path.KnowledgeBases, query)

	var webResults []string
	if cfg.UseWebSearch && cfg.SerpAPIKey != "" && e.searcher != nil {
		results, err := e.searcher.Search(ctx, query, cfg.SerpAPIKey)
		if err != nil {
			// Web search is best-effort augmentation only.
			log.Printf("Web search failed: %v", err)
		} else {
			webResults = results
		}
	}

	prompt := buildPrompt(cfg.CustomPrompt, query, snippets, webResults)

	var response string
	start := time.Now()
	if cfg.APIKey == "" {
		response = mockResponse(query, len(snippets), len(webResults))
	} else {
		text, err := e.callProvider(ctx, cfg, prompt, len(snippets), len(webResults), query)
		if err != nil {
			return nil, err
		}
		response = text
	}

	return &ExecutionResult{
		Response:       response,
		Provider:       cfg.Provider,
		Model:          cfg.Model,
		ProcessingTime: time.Since(start).Seconds(),
		ContextUsed:    snippets,
		WebSearchUsed:  len(webResults) > 0,
		APIKeyProvided: cfg.APIKey != "",
		Warnings:       warnings,
	}, nil
}

func (e *Engine) callProvider(ctx context.Context, cfg LLMNodeConfig, prompt string, contextCount, webCount int, query string) (string, error) {
	provider, ok := e.providers.Get(cfg.Provider)
	if !ok {
		// A key was supplied but the provider is not wired up; answer
		// deterministically rather than failing the turn.
		return fmt.Sprintf("Mock response to: %s\n\nContext provided: %d documents\n\nWeb search results: %d results\n\n(Using %s with provided API key)",
			query, contextCount, webCount, cfg.Provider), nil
	}

	if e.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.callTimeout)
		defer cancel()
	}

	return provider.Generate(ctx, llm.Request{
		Prompt:      prompt,
		Model:       cfg.Model,
		APIKey:      cfg.APIKey,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	})
}

// buildPrompt assembles the final prompt. A custom template substitutes
// {context} and {query}; otherwise the default layout is used, omitting
// sections that are empty.
func buildPrompt(customPrompt, query string, snippets, webResults []string) string {
	contextBlock := strings.Join(snippets, "\n")

	if customPrompt != "" {
		full := contextBlock
		if len(webResults) > 0 {
			if full != "" {
				full += "\n"
			}
			full += strings.Join(webResults, "\n")
		}
		prompt := strings.ReplaceAll(customPrompt, "{context}", full)
		return strings.ReplaceAll(prompt, "{query}", query)
	}

	var b strings.Builder
	if contextBlock != "" {
		b.WriteString("Context from Knowledge Base:\n")
		b.WriteString(contextBlock)
		b.WriteString("\n\n")
	}
	if len(webResults) > 0 {
		b.WriteString("Web Search Results:\n")
		b.WriteString(strings.Join(webResults, "\n"))
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Question: %s\n\nAnswer:", query)
	return b.String()
}

// mockResponse is the deterministic offline answer used when the node
// carries no API key. It depends only on the query and the sizes of the
// gathered context.
func mockResponse(query string, contextCount, webCount int) string {
	return fmt.Sprintf("This is a mock response to: %s\n\nContext provided: %d documents\n\nWeb search results: %d results\n\n(No API key provided - using mock mode)",
		query, contextCount, webCount)
}
