package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Divas-Gupta30/workflow-studio/internal/store"
)

// CreateWorkflowRequest is the payload for saving a new canvas.
type CreateWorkflowRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ItemID      string          `json:"item_id,omitempty"`
	Components  json.RawMessage `json:"components,omitempty"`
}

func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	workflows, err := s.store.ListWorkflows(user.ID)
	if err != nil {
		s.observe("GET", "/workflows", "error", start)
		http.Error(w, "Failed to query workflows", http.StatusInternalServerError)
		return
	}

	s.observe("GET", "/workflows", "success", start)
	writeJSON(w, http.StatusOK, map[string]interface{}{"workflows": workflows})
}

func (s *Server) handleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var req CreateWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.observe("POST", "/workflows", "error", start)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		s.observe("POST", "/workflows", "error", start)
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	wf := &store.Workflow{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		ItemID:      req.ItemID,
		Name:        req.Name,
		Description: req.Description,
		Components:  req.Components,
		IsActive:    true,
	}
	if err := s.store.CreateWorkflow(wf); err != nil {
		s.observe("POST", "/workflows", "error", start)
		http.Error(w, "Failed to create workflow", http.StatusInternalServerError)
		return
	}

	s.observe("POST", "/workflows", "success", start)
	writeJSON(w, http.StatusCreated, wf)
}

func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	wf, err := s.store.GetWorkflow(mux.Vars(r)["id"], user.ID)
	if err != nil {
		s.observe("GET", "/workflows/:id", "error", start)
		notFoundOr500(w, err, "Workflow")
		return
	}

	s.observe("GET", "/workflows/:id", "success", start)
	writeJSON(w, http.StatusOK, wf)
}

func (s *Server) handleUpdateWorkflow(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var upd store.WorkflowUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		s.observe("PUT", "/workflows/:id", "error", start)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	wf, err := s.store.UpdateWorkflow(mux.Vars(r)["id"], user.ID, upd)
	if err != nil {
		s.observe("PUT", "/workflows/:id", "error", start)
		notFoundOr500(w, err, "Workflow")
		return
	}

	s.observe("PUT", "/workflows/:id", "success", start)
	writeJSON(w, http.StatusOK, wf)
}

func (s *Server) handleDeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	if err := s.store.DeleteWorkflow(id, user.ID); err != nil {
		s.observe("DELETE", "/workflows/:id", "error", start)
		notFoundOr500(w, err, "Workflow")
		return
	}

	// Drop the workflow's vector partition alongside its rows.
	if err := s.vectors.DeleteCollection(r.Context(), id); err != nil {
		// Rows are gone; orphaned vectors only waste space.
		s.observe("DELETE", "/workflows/:id", "success", start)
		writeJSON(w, http.StatusOK, map[string]string{"warning": "workflow deleted, vector cleanup failed"})
		return
	}

	s.observe("DELETE", "/workflows/:id", "success", start)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	if _, err := s.store.GetWorkflow(id, user.ID); err != nil {
		s.observe("GET", "/workflows/:id/conversations", "error", start)
		notFoundOr500(w, err, "Workflow")
		return
	}

	conversations, err := s.store.ListConversations(id)
	if err != nil {
		s.observe("GET", "/workflows/:id/conversations", "error", start)
		http.Error(w, "Failed to query conversations", http.StatusInternalServerError)
		return
	}

	s.observe("GET", "/workflows/:id/conversations", "success", start)
	writeJSON(w, http.StatusOK, map[string]interface{}{"conversations": conversations})
}
