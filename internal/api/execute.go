package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Divas-Gupta30/workflow-studio/internal/store"
	"github.com/Divas-Gupta30/workflow-studio/internal/workflow"
)

// QueryResponse is the execute endpoint's envelope. Engine failures are
// reported in-band with success=false so the chat UI can render them as
// a message.
type QueryResponse struct {
	Success        bool     `json:"success"`
	Response       string   `json:"response,omitempty"`
	Error          string   `json:"error,omitempty"`
	ContextUsed    []string `json:"context_used,omitempty"`
	LLMUsed        string   `json:"llm_used,omitempty"`
	Provider       string   `json:"provider,omitempty"`
	ProcessingTime float64  `json:"processing_time"`
	WorkflowID     string   `json:"workflow_id"`
	WebSearchUsed  bool     `json:"web_search_used,omitempty"`
	APIKeyProvided bool     `json:"api_key_provided"`
	Warnings       []string `json:"warnings,omitempty"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	workflowID := mux.Vars(r)["id"]

	wf, err := s.store.GetWorkflow(workflowID, user.ID)
	if err != nil {
		s.observe("POST", "/workflows/:id/execute", "error", start)
		notFoundOr500(w, err, "Workflow")
		return
	}

	var req workflow.ExecutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.observe("POST", "/workflows/:id/execute", "error", start)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		s.observe("POST", "/workflows/:id/execute", "error", start)
		http.Error(w, "Query is required", http.StatusBadRequest)
		return
	}

	var graph workflow.Graph
	if len(wf.Components) > 0 {
		if err := json.Unmarshal(wf.Components, &graph); err != nil {
			s.observe("POST", "/workflows/:id/execute", "error", start)
			http.Error(w, "Workflow components are malformed", http.StatusInternalServerError)
			return
		}
	}

	result, err := s.engine.Execute(r.Context(), workflowID, graph, req)

	resp := QueryResponse{WorkflowID: workflowID}
	if err != nil {
		resp.Error = err.Error()
	} else {
		resp.Success = true
		resp.Response = result.Response
		resp.ContextUsed = result.ContextUsed
		resp.LLMUsed = result.Model
		resp.Provider = result.Provider
		resp.ProcessingTime = result.ProcessingTime
		resp.WebSearchUsed = result.WebSearchUsed
		resp.APIKeyProvided = result.APIKeyProvided
		resp.Warnings = result.Warnings
	}

	s.saveConversation(workflowID, req.Query, &resp)

	if err != nil {
		s.observe("POST", "/workflows/:id/execute", "error", start)
	} else {
		s.observe("POST", "/workflows/:id/execute", "success", start)
	}
	writeJSON(w, http.StatusOK, resp)
}

// saveConversation records the turn; failures are logged, not surfaced,
// because the user already has their answer.
func (s *Server) saveConversation(workflowID, query string, resp *QueryResponse) {
	contextUsed, err := json.Marshal(resp.ContextUsed)
	if err != nil {
		contextUsed = []byte("null")
	}
	conv := &store.Conversation{
		ID:             uuid.NewString(),
		WorkflowID:     workflowID,
		UserQuery:      query,
		SystemResponse: resp.Response,
		ContextUsed:    contextUsed,
		LLMUsed:        resp.LLMUsed,
		Provider:       resp.Provider,
		ProcessingTime: resp.ProcessingTime,
	}
	if err := s.store.CreateConversation(conv); err != nil {
		log.Printf("Failed to save conversation: %v", err)
	}
}
