package api

import (
	"net/http"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]string{
		"status":   "healthy",
		"database": "connected",
		"vectors":  "connected",
		"redis":    "disconnected",
	}
	status := http.StatusOK

	if err := s.store.Ping(); err != nil {
		health["status"] = "unhealthy"
		health["database"] = "disconnected"
		status = http.StatusServiceUnavailable
	}
	if err := s.vectors.Ping(r.Context()); err != nil {
		health["status"] = "unhealthy"
		health["vectors"] = "disconnected"
		status = http.StatusServiceUnavailable
	}
	// Redis is optional; report but never fail on it.
	if s.redis != nil {
		if _, err := s.redis.Ping(r.Context()).Result(); err == nil {
			health["redis"] = "connected"
		}
	}

	writeJSON(w, status, health)
}
