// Package response holds the JSON reply helpers shared by every
// handler, so success and error payloads look the same across the API.
package response

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the error envelope the API returns. Details carries
// field-level validation output or an underlying error string when one
// helps the caller.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// RespondJSON writes data as JSON with the given status. A nil data
// writes the status alone, which is what 204 replies want. Encoding
// failures are logged; the status line has already gone out by then.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("encoding response body: %v", err)
	}
}

// RespondError writes an ErrorResponse with the given status. Pass nil
// details when the message stands on its own.
func RespondError(w http.ResponseWriter, status int, message string, details interface{}) {
	RespondJSON(w, status, ErrorResponse{Error: message, Details: details})
}
