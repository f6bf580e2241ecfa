package store

import (
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// Item is a task card on the dashboard; workflows hang off items.
type Item struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemUpdate carries optional fields for a partial update.
type ItemUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
}

// ErrNotFound is returned when a row does not exist or belongs to a
// different user.
var ErrNotFound = sql.ErrNoRows

func (s *Store) ListItems(userID string) ([]Item, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, title, description, status, priority, type, created_at, updated_at
		FROM items WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.UserID, &it.Title, &it.Description,
			&it.Status, &it.Priority, &it.Type, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) CreateItem(it *Item) error {
	return s.db.QueryRow(`
		INSERT INTO items (id, user_id, title, description, status, priority, type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, it.ID, it.UserID, it.Title, it.Description, it.Status, it.Priority, it.Type).
		Scan(&it.CreatedAt, &it.UpdatedAt)
}

func (s *Store) GetItem(id, userID string) (*Item, error) {
	var it Item
	err := s.db.QueryRow(`
		SELECT id, user_id, title, description, status, priority, type, created_at, updated_at
		FROM items WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&it.ID, &it.UserID, &it.Title, &it.Description,
		&it.Status, &it.Priority, &it.Type, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// UpdateItem builds the SET clause dynamically from the fields present
// in the update.
func (s *Store) UpdateItem(id, userID string, upd ItemUpdate) (*Item, error) {
	setParts := []string{}
	args := []interface{}{}
	argIndex := 1

	add := func(column string, value interface{}) {
		setParts = append(setParts, column+" = $"+strconv.Itoa(argIndex))
		args = append(args, value)
		argIndex++
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if upd.Priority != nil {
		add("priority", *upd.Priority)
	}
	if len(setParts) == 0 {
		return s.GetItem(id, userID)
	}
	add("updated_at", time.Now().UTC())

	query := "UPDATE items SET " + strings.Join(setParts, ", ") +
		" WHERE id = $" + strconv.Itoa(argIndex) + " AND user_id = $" + strconv.Itoa(argIndex+1)
	args = append(args, id, userID)

	result, err := s.db.Exec(query, args...)
	if err != nil {
		return nil, err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetItem(id, userID)
}

func (s *Store) DeleteItem(id, userID string) error {
	result, err := s.db.Exec("DELETE FROM items WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
