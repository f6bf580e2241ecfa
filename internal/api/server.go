// Package api exposes the studio's HTTP surface: item and workflow
// CRUD, document uploads, workflow execution and conversation history.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Divas-Gupta30/workflow-studio/internal/auth"
	"github.com/Divas-Gupta30/workflow-studio/internal/processing"
	"github.com/Divas-Gupta30/workflow-studio/internal/store"
	"github.com/Divas-Gupta30/workflow-studio/internal/workflow"
)

// Prometheus metrics
var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "studio_requests_total",
			Help: "Total number of studio API requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "studio_request_duration_seconds",
			Help: "Duration of studio API requests",
		},
		[]string{"method", "endpoint"},
	)
	workflowsInDB = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "workflows_in_database_total",
			Help: "Total number of workflows in database",
		},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(requestDuration)
	prometheus.MustRegister(workflowsInDB)
}

// Storage is what the handlers need from the relational store.
type Storage interface {
	ListItems(userID string) ([]store.Item, error)
	CreateItem(it *store.Item) error
	GetItem(id, userID string) (*store.Item, error)
	UpdateItem(id, userID string, upd store.ItemUpdate) (*store.Item, error)
	DeleteItem(id, userID string) error

	ListWorkflows(userID string) ([]store.Workflow, error)
	CreateWorkflow(w *store.Workflow) error
	GetWorkflow(id, userID string) (*store.Workflow, error)
	UpdateWorkflow(id, userID string, upd store.WorkflowUpdate) (*store.Workflow, error)
	DeleteWorkflow(id, userID string) error
	CountWorkflows() (int, error)

	CreateDocument(d *store.Document) error
	ListDocuments(workflowID string) ([]store.Document, error)
	GetDocument(id, workflowID string) (*store.Document, error)
	DeleteDocument(id, workflowID string) error

	CreateConversation(c *store.Conversation) error
	ListConversations(workflowID string) ([]store.Conversation, error)

	Ping() error
}

// VectorIndex is what the handlers need from the vector store.
type VectorIndex interface {
	InsertChunk(ctx context.Context, workflowID, documentID, filename, content string, embedding []float32) error
	DeleteDocumentChunks(ctx context.Context, workflowID, documentID string) error
	DeleteCollection(ctx context.Context, workflowID string) error
	Ping(ctx context.Context) error
}

// Server wires the HTTP handlers to their collaborators.
type Server struct {
	store     Storage
	vectors   VectorIndex
	engine    *workflow.Engine
	embedder  processing.Embedder
	auth      auth.Authenticator
	redis     *redis.Client
	uploadDir string
	router    *mux.Router
}

func NewServer(st Storage, vectors VectorIndex, engine *workflow.Engine,
	embedder processing.Embedder, authn auth.Authenticator, redisClient *redis.Client, uploadDir string) *Server {

	s := &Server{
		store:     st,
		vectors:   vectors,
		engine:    engine,
		embedder:  embedder,
		auth:      authn,
		redis:     redisClient,
		uploadDir: uploadDir,
		router:    mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	r.HandleFunc("/items", s.handleListItems).Methods("GET")
	r.HandleFunc("/items", s.handleCreateItem).Methods("POST")
	r.HandleFunc("/items/{id}", s.handleGetItem).Methods("GET")
	r.HandleFunc("/items/{id}", s.handleUpdateItem).Methods("PUT")
	r.HandleFunc("/items/{id}", s.handleDeleteItem).Methods("DELETE")

	r.HandleFunc("/workflows", s.handleListWorkflows).Methods("GET")
	r.HandleFunc("/workflows", s.handleCreateWorkflow).Methods("POST")
	r.HandleFunc("/workflows/{id}", s.handleGetWorkflow).Methods("GET")
	r.HandleFunc("/workflows/{id}", s.handleUpdateWorkflow).Methods("PUT")
	r.HandleFunc("/workflows/{id}", s.handleDeleteWorkflow).Methods("DELETE")

	r.HandleFunc("/workflows/{id}/documents", s.handleUploadDocument).Methods("POST")
	r.HandleFunc("/workflows/{id}/documents", s.handleListDocuments).Methods("GET")
	r.HandleFunc("/workflows/{id}/documents/{docID}", s.handleDeleteDocument).Methods("DELETE")

	r.HandleFunc("/workflows/{id}/execute", s.handleExecute).Methods("POST")
	r.HandleFunc("/workflows/{id}/conversations", s.handleListConversations).Methods("GET")

	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// RunMetricsUpdater refreshes the workflows gauge until ctx is done.
func (s *Server) RunMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if count, err := s.store.CountWorkflows(); err == nil {
				workflowsInDB.Set(float64(count))
			}
		}
	}
}

// currentUser authenticates the request, writing a 401 itself when the
// credentials are bad.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (auth.User, bool) {
	user, err := s.auth.Authenticate(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return auth.User{}, false
	}
	return user, true
}

func (s *Server) observe(method, endpoint, status string, start time.Time) {
	requestsTotal.WithLabelValues(method, endpoint, status).Inc()
	requestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// notFoundOr500 maps store errors onto HTTP statuses.
func notFoundOr500(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, what+" not found", http.StatusNotFound)
		return
	}
	log.Printf("Storage error: %v", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
