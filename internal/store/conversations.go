package store

import (
	"encoding/json"
	"time"
)

// Conversation is one persisted chat turn: the user query and what the
// engine produced for it.
type Conversation struct {
	ID             string          `json:"id"`
	WorkflowID     string          `json:"workflow_id"`
	UserQuery      string          `json:"user_query"`
	SystemResponse string          `json:"system_response"`
	ContextUsed    json.RawMessage `json:"context_used"`
	LLMUsed        string          `json:"llm_used"`
	Provider       string          `json:"provider"`
	ProcessingTime float64         `json:"processing_time"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (s *Store) CreateConversation(c *Conversation) error {
	return s.db.QueryRow(`
		INSERT INTO conversations (id, workflow_id, user_query, system_response, context_used, llm_used, provider, processing_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, c.ID, c.WorkflowID, c.UserQuery, c.SystemResponse, c.ContextUsed, c.LLMUsed, c.Provider, c.ProcessingTime).
		Scan(&c.CreatedAt)
}

func (s *Store) ListConversations(workflowID string) ([]Conversation, error) {
	rows, err := s.db.Query(`
		SELECT id, workflow_id, user_query, COALESCE(system_response, ''), COALESCE(context_used, 'null'), COALESCE(llm_used, ''), COALESCE(provider, ''), COALESCE(processing_time, 0), created_at
		FROM conversations WHERE workflow_id = $1 ORDER BY created_at DESC
	`, workflowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversations := []Conversation{}
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.WorkflowID, &c.UserQuery, &c.SystemResponse,
			&c.ContextUsed, &c.LLMUsed, &c.Provider, &c.ProcessingTime, &c.CreatedAt); err != nil {
			return nil, err
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}
