package store

import (
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Workflow is a saved canvas: metadata plus the serialized node/edge
// graph in Components.
type Workflow struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	ItemID      string          `json:"item_id,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Components  json.RawMessage `json:"components"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// WorkflowUpdate carries optional fields for a partial update.
type WorkflowUpdate struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Components  json.RawMessage `json:"components,omitempty"`
	IsActive    *bool           `json:"is_active,omitempty"`
}

func (s *Store) ListWorkflows(userID string) ([]Workflow, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, COALESCE(item_id, ''), name, description, COALESCE(components, 'null'), is_active, created_at, updated_at
		FROM workflows WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workflows := []Workflow{}
	for rows.Next() {
		var w Workflow
		if err := rows.Scan(&w.ID, &w.UserID, &w.ItemID, &w.Name, &w.Description,
			&w.Components, &w.IsActive, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		workflows = append(workflows, w)
	}
	return workflows, rows.Err()
}

func (s *Store) CreateWorkflow(w *Workflow) error {
	var itemID sql.NullString
	if w.ItemID != "" {
		itemID = sql.NullString{String: w.ItemID, Valid: true}
	}
	return s.db.QueryRow(`
		INSERT INTO workflows (id, user_id, item_id, name, description, components, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, w.ID, w.UserID, itemID, w.Name, w.Description, w.Components, w.IsActive).
		Scan(&w.CreatedAt, &w.UpdatedAt)
}

func (s *Store) GetWorkflow(id, userID string) (*Workflow, error) {
	var w Workflow
	err := s.db.QueryRow(`
		SELECT id, user_id, COALESCE(item_id, ''), name, description, COALESCE(components, 'null'), is_active, created_at, updated_at
		FROM workflows WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&w.ID, &w.UserID, &w.ItemID, &w.Name, &w.Description,
		&w.Components, &w.IsActive, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Store) UpdateWorkflow(id, userID string, upd WorkflowUpdate) (*Workflow, error) {
	setParts := []string{}
	args := []interface{}{}
	argIndex := 1

	add := func(column string, value interface{}) {
		setParts = append(setParts, column+" = $"+strconv.Itoa(argIndex))
		args = append(args, value)
		argIndex++
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Components != nil {
		add("components", []byte(upd.Components))
	}
	if upd.IsActive != nil {
		add("is_active", *upd.IsActive)
	}
	if len(setParts) == 0 {
		return s.GetWorkflow(id, userID)
	}
	add("updated_at", time.Now().UTC())

	query := "UPDATE workflows SET " + strings.Join(setParts, ", ") +
		" WHERE id = $" + strconv.Itoa(argIndex) + " AND user_id = $" + strconv.Itoa(argIndex+1)
	args = append(args, id, userID)

	result, err := s.db.Exec(query, args...)
	if err != nil {
		return nil, err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetWorkflow(id, userID)
}

func (s *Store) DeleteWorkflow(id, userID string) error {
	result, err := s.db.Exec("DELETE FROM workflows WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountWorkflows feeds the workflows gauge on the metrics endpoint.
func (s *Store) CountWorkflows() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM workflows").Scan(&count)
	return count, err
}
