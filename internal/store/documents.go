package store

import "time"

// Document is an uploaded file attached to a workflow's knowledge base.
// The extracted chunks live in the vector store; this row tracks the
// original file.
type Document struct {
	ID                string    `json:"id"`
	WorkflowID        string    `json:"workflow_id"`
	Filename          string    `json:"filename"`
	FilePath          string    `json:"file_path"`
	FileSize          int64     `json:"file_size"`
	FileType          string    `json:"file_type"`
	EmbeddingsCreated bool      `json:"embeddings_created"`
	CreatedAt         time.Time `json:"created_at"`
}

func (s *Store) CreateDocument(d *Document) error {
	return s.db.QueryRow(`
		INSERT INTO documents (id, workflow_id, filename, file_path, file_size, file_type, embeddings_created)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, d.ID, d.WorkflowID, d.Filename, d.FilePath, d.FileSize, d.FileType, d.EmbeddingsCreated).
		Scan(&d.CreatedAt)
}

func (s *Store) ListDocuments(workflowID string) ([]Document, error) {
	rows, err := s.db.Query(`
		SELECT id, workflow_id, filename, file_path, file_size, file_type, embeddings_created, created_at
		FROM documents WHERE workflow_id = $1 ORDER BY created_at DESC
	`, workflowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.WorkflowID, &d.Filename, &d.FilePath,
			&d.FileSize, &d.FileType, &d.EmbeddingsCreated, &d.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *Store) GetDocument(id, workflowID string) (*Document, error) {
	var d Document
	err := s.db.QueryRow(`
		SELECT id, workflow_id, filename, file_path, file_size, file_type, embeddings_created, created_at
		FROM documents WHERE id = $1 AND workflow_id = $2
	`, id, workflowID).Scan(&d.ID, &d.WorkflowID, &d.Filename, &d.FilePath,
		&d.FileSize, &d.FileType, &d.EmbeddingsCreated, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) DeleteDocument(id, workflowID string) error {
	result, err := s.db.Exec("DELETE FROM documents WHERE id = $1 AND workflow_id = $2", id, workflowID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
