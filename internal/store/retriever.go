package store

import (
	"context"
	"fmt"

	"github.com/Divas-Gupta30/workflow-studio/internal/processing"
	"github.com/Divas-Gupta30/workflow-studio/internal/workflow"
)

// Retriever embeds a query and runs it against the vector store,
// satisfying workflow.Retriever.
type Retriever struct {
	Vectors  *VectorStore
	Embedder processing.Embedder
}

func (r *Retriever) QuerySimilar(ctx context.Context, workflowID, query string, topK int) ([]workflow.Snippet, error) {
	emb, err := r.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding failed: %w", err)
	}
	return r.Vectors.SearchSimilar(ctx, workflowID, emb, topK)
}
