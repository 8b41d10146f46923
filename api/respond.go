package api

import (
	"encoding/json"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Error messages shared by the router-level handlers.
const (
	msgEndpointNotFound = "Endpoint not found"
	msgMethodNotAllowed = "Method not allowed"
	msgInternalError    = "Internal server error"
	msgProductNotFound  = "Product not found"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, ErrorResponse{
		Success:   false,
		Error:     msg,
		RequestID: chimw.GetReqID(r.Context()),
		Timestamp: time.Now(),
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, msgEndpointNotFound)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}
