package server

import (
	"encoding/json"
	"net/http"
)

type errorResponse struct {
	Success     bool   `json:"success"`
	Error       string `json:"error"`
	RateLimited bool   `json:"rateLimited,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		w.Write([]byte(`{"success": false, "error": "internal server error"}`))
	}
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Success: false, Error: message})
}
