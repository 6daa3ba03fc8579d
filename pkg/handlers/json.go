// This file adds small helpers for decoding JSON requests with validation
// and for writing JSON responses.

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// decodeJSON attempts to decode the request body into the provided destination.
// The body is limited to 1MB. Unknown fields are ignored, as the relay has
// always accepted them from its clients.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	defer r.Body.Close()
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1MB
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return errors.New("empty body")
		}
		return err
	}
	if dec.More() {
		return errors.New("extra data in request body")
	}
	return nil
}

// respondJSON writes v as the JSON body with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("encode response")
	}
}
