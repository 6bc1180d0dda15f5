package response

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	VideoID string `json:"videoId,omitempty"`
}

// JSON writes v with status 200.
func JSON(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}

// Status writes v with the given status code.
func Status(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, data)
}

// Error writes {error, details?}. Empty details are omitted.
func Error(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, ErrorBody{Error: message, Details: details})
}

// ErrorFor writes a prepared ErrorBody.
func ErrorFor(w http.ResponseWriter, status int, body ErrorBody) {
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
