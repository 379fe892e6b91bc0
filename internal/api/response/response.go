// Package response holds the shared shapes for API responses, so every
// handler reports errors the same way.
package response

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the body of every non-2xx API response. Details is
// optional context for the caller, often the offending value.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// RespondJSON writes data as a JSON body with the given status. A nil data
// sends the status code alone, which suits 204 responses. Encoding failures
// are logged; the status line has already been written at that point.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("failed to encode JSON response: %v", err)
		}
	}
}

// RespondError writes a structured error body with the given status.
// The message should be readable by an API consumer; details may carry the
// rejected input or an underlying error string, or be nil.
//
// Example:
//
//	response.RespondError(w, http.StatusBadRequest, "invalid ISIN", isin)
func RespondError(w http.ResponseWriter, status int, message string, details interface{}) {
	response := ErrorResponse{
		Error:   message,
		Details: details,
	}
	RespondJSON(w, status, response)
}
