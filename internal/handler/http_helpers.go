package handler

import (
	"encoding/json"
	"net/http"

	"file-conversion-server/internal/domain"
	apperrors "file-conversion-server/pkg/errors"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeAppError maps err onto a status code and a client-safe message.
// Server-side failures are logged with their cause; the cause never reaches
// the client.
func writeAppError(w http.ResponseWriter, r *http.Request, logger domain.Logger, err error) {
	status := apperrors.GetStatusCode(err)
	message := apperrors.PublicMessage(err, "Internal server error")
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", err, "path", r.URL.Path, "request_id", RequestIDFromContext(r.Context()))
	}
	writeError(w, status, message)
}
