package handlers

import (
	"encoding/json"
	"net/http"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// respondData wraps a success payload in the {data, message} envelope.
func respondData(w http.ResponseWriter, status int, message string, data interface{}) {
	respondJSON(w, status, map[string]any{"data": data, "message": message})
}

// respondError emits the {error} envelope every failure path uses.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
