package interfaces

import (
	"encoding/json"
	"net/http"
)

// respondJSON and respondError mirror the server's envelope writers so handlers can be tested in isolation.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string, errors ...[]string) {
	body := map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	}
	if len(errors) > 0 && len(errors[0]) > 0 {
		body["errors"] = errors[0]
	}
	respondJSON(w, status, body)
}
