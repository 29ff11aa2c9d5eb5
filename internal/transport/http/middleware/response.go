package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSONError writes {"error": msg} with the JSON content type.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
