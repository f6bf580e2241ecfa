package api

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Divas-Gupta30/workflow-studio/internal/ingestion"
	"github.com/Divas-Gupta30/workflow-studio/internal/processing"
	"github.com/Divas-Gupta30/workflow-studio/internal/store"
)

// maxUploadSize bounds a single document upload.
const maxUploadSize = 32 << 20

// handleUploadDocument receives a file, extracts its text, chunks and
// embeds it, and stores both the document row and its vectors.
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	workflowID := mux.Vars(r)["id"]

	if _, err := s.store.GetWorkflow(workflowID, user.ID); err != nil {
		s.observe("POST", "/workflows/:id/documents", "error", start)
		notFoundOr500(w, err, "Workflow")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.observe("POST", "/workflows/:id/documents", "error", start)
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.observe("POST", "/workflows/:id/documents", "error", start)
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if !ingestion.SupportedExt(filename) {
		s.observe("POST", "/workflows/:id/documents", "error", start)
		http.Error(w, "Unsupported file type", http.StatusBadRequest)
		return
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		s.observe("POST", "/workflows/:id/documents", "error", start)
		http.Error(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}
	filePath := filepath.Join(s.uploadDir, workflowID+"_"+filename)
	if err := saveUpload(file, filePath); err != nil {
		s.observe("POST", "/workflows/:id/documents", "error", start)
		http.Error(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}

	chunksCreated, err := s.processDocument(r, workflowID, filename, filePath, header.Size)
	if err != nil {
		os.Remove(filePath)
		s.observe("POST", "/workflows/:id/documents", "error", start)
		log.Printf("Document processing failed for %s: %v", filename, err)
		http.Error(w, fmt.Sprintf("Error processing document: %v", err), http.StatusInternalServerError)
		return
	}

	s.observe("POST", "/workflows/:id/documents", "success", start)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":        true,
		"message":        "Document processed successfully",
		"chunks_created": chunksCreated,
	})
}

func saveUpload(src io.Reader, dst string) error {
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, src)
	return err
}

func (s *Server) processDocument(r *http.Request, workflowID, filename, filePath string, size int64) (int, error) {
	ctx := r.Context()

	text, err := ingestion.ExtractText(filePath)
	if err != nil {
		return 0, fmt.Errorf("text extraction: %w", err)
	}

	chunks := processing.ChunkText(text)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("document %s contains no extractable text", filename)
	}

	embeddings, err := processing.EmbedChunks(ctx, s.embedder, chunks)
	if err != nil {
		return 0, fmt.Errorf("embedding: %w", err)
	}

	doc := &store.Document{
		ID:                uuid.NewString(),
		WorkflowID:        workflowID,
		Filename:          filename,
		FilePath:          filePath,
		FileSize:          size,
		FileType:          strings.TrimPrefix(filepath.Ext(filename), "."),
		EmbeddingsCreated: true,
	}
	if err := s.store.CreateDocument(doc); err != nil {
		return 0, fmt.Errorf("saving document record: %w", err)
	}

	for i := range chunks {
		if err := s.vectors.InsertChunk(ctx, workflowID, doc.ID, filename, chunks[i], embeddings[i]); err != nil {
			return 0, fmt.Errorf("storing chunk %d: %w", i, err)
		}
	}
	return len(chunks), nil
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	workflowID := mux.Vars(r)["id"]

	if _, err := s.store.GetWorkflow(workflowID, user.ID); err != nil {
		s.observe("GET", "/workflows/:id/documents", "error", start)
		notFoundOr500(w, err, "Workflow")
		return
	}

	docs, err := s.store.ListDocuments(workflowID)
	if err != nil {
		s.observe("GET", "/workflows/:id/documents", "error", start)
		http.Error(w, "Failed to query documents", http.StatusInternalServerError)
		return
	}

	s.observe("GET", "/workflows/:id/documents", "success", start)
	writeJSON(w, http.StatusOK, map[string]interface{}{"documents": docs})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	workflowID, docID := vars["id"], vars["docID"]

	if _, err := s.store.GetWorkflow(workflowID, user.ID); err != nil {
		s.observe("DELETE", "/workflows/:id/documents/:docID", "error", start)
		notFoundOr500(w, err, "Workflow")
		return
	}

	doc, err := s.store.GetDocument(docID, workflowID)
	if err != nil {
		s.observe("DELETE", "/workflows/:id/documents/:docID", "error", start)
		notFoundOr500(w, err, "Document")
		return
	}

	if err := s.store.DeleteDocument(docID, workflowID); err != nil {
		s.observe("DELETE", "/workflows/:id/documents/:docID", "error", start)
		notFoundOr500(w, err, "Document")
		return
	}
	if err := s.vectors.DeleteDocumentChunks(r.Context(), workflowID, docID); err != nil {
		log.Printf("Failed to delete chunks for document %s: %v", docID, err)
	}
	if doc.FilePath != "" {
		os.Remove(doc.FilePath)
	}

	s.observe("DELETE", "/workflows/:id/documents/:docID", "success", start)
	w.WriteHeader(http.StatusNoContent)
}
