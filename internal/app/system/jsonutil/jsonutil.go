// Package jsonutil is the thin JSON boundary shared by every handler:
// decode a request body into a typed struct, write a typed response,
// or write the uniform {"message": ...} error body.
package jsonutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes caps JSON request bodies. Uploads go through multipart
// forms, so a small cap is plenty here.
const MaxBodyBytes = 1 << 20 // 1 MiB

// Decode reads the request body as JSON into dst. Unknown fields are
// tolerated (clients send extra UI state); malformed JSON is not.
func Decode(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty request body")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// Respond writes v as JSON with the given status code.
func Respond(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes the uniform error body clients pattern-match on.
func Error(w http.ResponseWriter, code int, msg string) {
	Respond(w, code, map[string]string{"message": msg})
}
