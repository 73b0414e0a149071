package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("api: json encode failed", slog.String("error", err.Error()))
	}
}

// ErrorResponse is the body of every non-2xx graph API reply.
type ErrorResponse struct {
	Error     string `json:"error"`
	Path      string `json:"path"`
	RequestID string `json:"request_id,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:     msg,
		Path:      r.URL.Path,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// internalError logs err against the request and hides it from the client.
func internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.Error("api: "+op+" failed",
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("error", err.Error()))
	writeError(w, r, http.StatusInternalServerError, "graph query failed")
}
