// Package httpjson holds the JSON request/response helpers shared by handlers
// and middleware.
package httpjson

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the uniform error response shape.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// Write serializes v as JSON with the given status code.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error body with the given status code.
func Error(w http.ResponseWriter, status int, detail string) {
	Write(w, status, ErrorBody{Detail: detail})
}

// Decode parses the request body into v. Returns false (and writes a 400) when
// the body is not valid JSON for v.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
