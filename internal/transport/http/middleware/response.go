package middleware

import (
	"encoding/json"
	"net/http"
)

// Kinds match the ones the handlers put in their error envelopes.
const (
	kindUnauthorized    = "unauthorized"
	kindTooManyRequests = "too_many_requests"
)

type errorEnvelope struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// writeJSONError writes the {error, kind} envelope used for every error response.
func writeJSONError(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Error: msg, Kind: kind})
}
