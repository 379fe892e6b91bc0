package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

// respondJSON writes data as a JSON body with the given status. A nil data
// sends the status code alone.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("failed to encode JSON response: %v", err)
		}
	}
}
