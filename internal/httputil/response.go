package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// SuccessResponse is the envelope for successful responses.
type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorResponse is the envelope for failed responses.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// RespondSuccess wraps data in {"success": true, "data": ...}.
func RespondSuccess(w http.ResponseWriter, data any, statusCode int) {
	RespondJSON(w, SuccessResponse{Success: true, Data: data}, statusCode)
}

// RespondError sends {"success": false, "error": message}.
func RespondError(w http.ResponseWriter, message string, statusCode int) {
	RespondJSON(w, ErrorResponse{Success: false, Error: message}, statusCode)
}

// RespondNoContent sends 204 with an empty body.
func RespondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
