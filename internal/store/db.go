package store

import (
	"database/sql"
	"log"

	_ "github.com/lib/pq"
)

// Store wraps the relational side of persistence: items, workflows,
// uploaded documents and conversation history.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres and verifies the connection.
func Open(databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	log.Println("Connected to PostgreSQL database")
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping is used by the health endpoint.
func (s *Store) Ping() error { return s.db.Ping() }

// CreateTables sets up the schema if it does not exist yet.
func (s *Store) CreateTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS items (
		id VARCHAR(64) PRIMARY KEY,
		user_id VARCHAR(128) NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		status VARCHAR(20) DEFAULT 'pending',
		priority VARCHAR(20) DEFAULT 'medium',
		type VARCHAR(20) DEFAULT 'task',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_items_user ON items (user_id);

	CREATE TABLE IF NOT EXISTS workflows (
		id VARCHAR(64) PRIMARY KEY,
		user_id VARCHAR(128) NOT NULL,
		item_id VARCHAR(64),
		name VARCHAR(255) NOT NULL,
		description TEXT,
		components JSONB,
		is_active BOOLEAN DEFAULT TRUE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_workflows_user ON workflows (user_id);

	CREATE TABLE IF NOT EXISTS documents (
		id VARCHAR(64) PRIMARY KEY,
		workflow_id VARCHAR(64) REFERENCES workflows(id) ON DELETE CASCADE,
		filename VARCHAR(255) NOT NULL,
		file_path VARCHAR(512),
		file_size BIGINT,
		file_type VARCHAR(20),
		embeddings_created BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS conversations (
		id VARCHAR(64) PRIMARY KEY,
		workflow_id VARCHAR(64) REFERENCES workflows(id) ON DELETE CASCADE,
		user_query TEXT NOT NULL,
		system_response TEXT,
		context_used JSONB,
		llm_used VARCHAR(64),
		provider VARCHAR(32),
		processing_time DOUBLE PRECISION,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`

	if _, err := s.db.Exec(query); err != nil {
		return err
	}
	log.Println("Database tables created successfully")
	return nil
}
