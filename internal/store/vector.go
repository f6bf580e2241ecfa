package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/Divas-Gupta30/workflow-studio/internal/workflow"
)

// EmbeddingDim is the fixed dimension of stored chunk embeddings.
const EmbeddingDim = 768

// VectorStore holds embedded document chunks, partitioned per workflow
// under the key "workflow_<id>". Reads during execution never mutate it.
type VectorStore struct {
	pool *pgxpool.Pool
}

func NewVectorStore(ctx context.Context, databaseURL string) (*VectorStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	return &VectorStore{pool: pool}, nil
}

func (v *VectorStore) Close() { v.pool.Close() }

// CreateSchema installs the pgvector extension and the chunk table.
func (v *VectorStore) CreateSchema(ctx context.Context) error {
	_, err := v.pool.Exec(ctx, `
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS document_chunks (
			id BIGSERIAL PRIMARY KEY,
			collection_key TEXT NOT NULL,
			document_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding vector(768)
		);
		CREATE INDEX IF NOT EXISTS idx_chunks_collection ON document_chunks (collection_key);
	`)
	return err
}

// CollectionKey derives the per-workflow partition name.
func CollectionKey(workflowID string) string {
	return "workflow_" + workflowID
}

// InsertChunk stores one embedded chunk under the workflow's partition.
func (v *VectorStore) InsertChunk(ctx context.Context, workflowID, documentID, filename, content string, embedding []float32) error {
	if len(embedding) != EmbeddingDim {
		return fmt.Errorf("expected embedding dim %d, got %d", EmbeddingDim, len(embedding))
	}
	_, err := v.pool.Exec(ctx,
		"INSERT INTO document_chunks (collection_key, document_id, filename, content, embedding) VALUES ($1, $2, $3, $4, $5)",
		CollectionKey(workflowID), documentID, filename, content, pgvector.NewVector(embedding))
	return err
}

// SearchSimilar returns the topK nearest chunks in the workflow's
// partition by L2 distance. An empty partition yields zero snippets.
func (v *VectorStore) SearchSimilar(ctx context.Context, workflowID string, queryEmb []float32, topK int) ([]workflow.Snippet, error) {
	rows, err := v.pool.Query(ctx,
		`SELECT content, filename, embedding <-> $1 AS distance
		 FROM document_chunks WHERE collection_key = $2
		 ORDER BY embedding <-> $1 LIMIT $3`,
		pgvector.NewVector(queryEmb), CollectionKey(workflowID), topK)
	if err != nil {
		return nil, fmt.Errorf("similarity query failed: %w", err)
	}
	defer rows.Close()

	var snippets []workflow.Snippet
	for rows.Next() {
		var s workflow.Snippet
		if err := rows.Scan(&s.Text, &s.Source, &s.Score); err != nil {
			return nil, err
		}
		snippets = append(snippets, s)
	}
	return snippets, rows.Err()
}

// DeleteDocumentChunks removes all chunks belonging to an uploaded
// document, used when the document itself is deleted.
func (v *VectorStore) DeleteDocumentChunks(ctx context.Context, workflowID, documentID string) error {
	_, err := v.pool.Exec(ctx,
		"DELETE FROM document_chunks WHERE collection_key = $1 AND document_id = $2",
		CollectionKey(workflowID), documentID)
	return err
}

// DeleteCollection drops a workflow's whole partition.
func (v *VectorStore) DeleteCollection(ctx context.Context, workflowID string) error {
	_, err := v.pool.Exec(ctx,
		"DELETE FROM document_chunks WHERE collection_key = $1", CollectionKey(workflowID))
	return err
}

// Ping is used by the health endpoint.
func (v *VectorStore) Ping(ctx context.Context) error {
	return v.pool.Ping(ctx)
}
