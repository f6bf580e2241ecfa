package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/Divas-Gupta30/workflow-studio/internal/llm"
)

// ExecutionRequest is one chat turn against a workflow.
type ExecutionRequest struct {
	Query string `json:"query"`
	// TargetNodeID optionally names the output node to execute toward,
	// for graphs the editor saved with more than one output.
	TargetNodeID string `json:"output_node_id,omitempty"`
}

// ExecutionResult is the envelope handed back to the API layer, which
// persists it as a conversation record.
type ExecutionResult struct {
	Response       string   `json:"response"`
	Provider       string   `json:"provider"`
	Model          string   `json:"llm_used"`
	ProcessingTime float64  `json:"processing_time"`
	ContextUsed    []string `json:"context_used"`
	WebSearchUsed  bool     `json:"web_search_used"`
	APIKeyProvided bool     `json:"api_key_provided"`
	// Warnings records non-fatal degradations, e.g. an unreachable
	// vector store that forced an empty context.
	Warnings []string `json:"warnings,omitempty"`
}

// Snippet is one retrieved chunk with its similarity distance and the
// document it came from.
type Snippet struct {
	Text   string
	Score  float64
	Source string
}

// Retriever answers similarity queries against a workflow's vector
// partition. Implementations must be safe for concurrent use.
type Retriever interface {
	QuerySimilar(ctx context.Context, workflowID, query string, topK int) ([]Snippet, error)
}

// WebSearcher returns formatted web results for a query. Failures are
// never fatal to an execution.
type WebSearcher interface {
	Search(ctx context.Context, query, apiKey string) ([]string, error)
}

const defaultTopK = 5

// Engine executes a workflow graph for one query. It holds no per-request
// state, so a single Engine serves concurrent executions.
type Engine struct {
	retriever   Retriever
	providers   *llm.Registry
	searcher    WebSearcher
	topK        int
	callTimeout time.Duration
}

// NewEngine wires the engine's collaborators. searcher may be nil, in
// which case web search is skipped regardless of node settings.
func NewEngine(retriever Retriever, providers *llm.Registry, searcher WebSearcher, callTimeout time.Duration) *Engine {
	return &Engine{
		retriever:   retriever,
		providers:   providers,
		searcher:    searcher,
		topK:        defaultTopK,
		callTimeout: callTimeout,
	}
}

// Execute resolves the graph, gathers retrieval context and produces a
// generated response. Graph errors and provider errors are returned to
// the caller; retrieval errors degrade to an empty context with a
// warning on the result.
func (e *Engine) Execute(ctx context.Context, workflowID string, g Graph, req ExecutionRequest) (*ExecutionResult, error) {
	start := time.Now()
	path, err := Resolve(g, req.TargetNodeID)
	if err != nil {
		return nil, err
	}

	switch {
	case path.LLM != nil:
		return e.invokeLLM(ctx, workflowID, path, req.Query)
	case len(path.KnowledgeBases) > 0:
		return e.searchOnly(ctx, workflowID, path, req.Query)
	default:
		// A query node wired straight into output echoes the request.
		return &ExecutionResult{
			Response:       req.Query,
			Provider:       "user",
			Model:          "user-query",
			ProcessingTime: time.Since(start).Seconds(),
			ContextUsed:    []string{},
		}, nil
	}
}

// searchOnly handles a knowledge base connected directly to the output
// node: the top matches become the response, no generation step.
func (e *Engine) searchOnly(ctx context.Context, workflowID string, path *Path, query string) (*ExecutionResult, error) {
	start := time.Now()
	snippets, warnings := e.gatherContext(ctx, workflowID, path.KnowledgeBases, query)

	response := "No matching context found."
	if len(snippets) > 0 {
		response = strings.Join(snippets, "\n---\n")
	}

	return &ExecutionResult{
		Response:       response,
		Provider:       "knowledge-base",
		Model:          "kb-search",
		ProcessingTime: time.Since(start).Seconds(),
		ContextUsed:    snippets,
		Warnings:       warnings,
	}, nil
}
