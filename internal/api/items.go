package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Divas-Gupta30/workflow-studio/internal/store"
)

// CreateItemRequest is the payload for creating a dashboard item.
type CreateItemRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Type        string `json:"type"`
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	items, err := s.store.ListItems(user.ID)
	if err != nil {
		s.observe("GET", "/items", "error", start)
		http.Error(w, "Failed to query items", http.StatusInternalServerError)
		return
	}

	s.observe("GET", "/items", "success", start)
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.observe("POST", "/items", "error", start)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		s.observe("POST", "/items", "error", start)
		http.Error(w, "Title is required", http.StatusBadRequest)
		return
	}
	if req.Priority == "" {
		req.Priority = "medium"
	}
	if req.Type == "" {
		req.Type = "task"
	}

	item := &store.Item{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      "pending",
		Priority:    req.Priority,
		Type:        req.Type,
	}
	if err := s.store.CreateItem(item); err != nil {
		s.observe("POST", "/items", "error", start)
		http.Error(w, "Failed to create item", http.StatusInternalServerError)
		return
	}

	s.observe("POST", "/items", "success", start)
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	item, err := s.store.GetItem(mux.Vars(r)["id"], user.ID)
	if err != nil {
		s.observe("GET", "/items/:id", "error", start)
		notFoundOr500(w, err, "Item")
		return
	}

	s.observe("GET", "/items/:id", "success", start)
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var upd store.ItemUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		s.observe("PUT", "/items/:id", "error", start)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	item, err := s.store.UpdateItem(mux.Vars(r)["id"], user.ID, upd)
	if err != nil {
		s.observe("PUT", "/items/:id", "error", start)
		notFoundOr500(w, err, "Item")
		return
	}

	s.observe("PUT", "/items/:id", "success", start)
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteItem(mux.Vars(r)["id"], user.ID); err != nil {
		s.observe("DELETE", "/items/:id", "error", start)
		notFoundOr500(w, err, "Item")
		return
	}

	s.observe("DELETE", "/items/:id", "success", start)
	w.WriteHeader(http.StatusNoContent)
}
