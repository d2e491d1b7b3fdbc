package api

import (
	"encoding/json"
	"net/http"

	"passvault/internal/apperr"
	"passvault/internal/logging"
)

type envelope map[string]any

// MessageResponse documents the common response shape.
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Login successful!"`
}

type TokenResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Login successful!"`
	Token   string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// respond writes a successful envelope with payload merged into it.
func respond(w http.ResponseWriter, status int, message string, payload envelope) {
	body := envelope{"success": true, "message": message}
	for k, v := range payload {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// respondError renders err with the status of its kind. Causes of server side
// failures are logged, never sent.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := kind.Status()
	if status >= http.StatusInternalServerError {
		logging.LogError(r.Context(), s.logger, "request failed", err)
	}
	writeJSON(w, status, envelope{
		"success": false,
		"message": apperr.MessageOf(err, "An unexpected error occurred."),
	})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("Invalid request body.")
	}
	return nil
}
