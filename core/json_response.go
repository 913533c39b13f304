package core

import (
	"encoding/json"
	"errors"
	"net/http"
)

// RespondJSON writes v as a JSON response with the given status code.
// Encoding failures are silently dropped: headers are already written
// by the time Encode fails, so there is nothing useful left to do.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondError maps err to a JSON error response. Predefined core.Error
// values (possibly wrapped) render with their own status and code; any
// other error renders as a generic 500 so internal details never leak
// to clients.
func RespondError(w http.ResponseWriter, err error) {
	var httpErr Error
	if !errors.As(err, &httpErr) {
		httpErr = ErrInternal
	}
	RespondJSON(w, httpErr.Status, httpErr)
}

// DecodeJSON reads the request body into v, returning ErrBadRequest on
// malformed payloads. Unknown fields are rejected to surface client
// typos early.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return ErrBadRequest.WithMessage("malformed JSON body")
	}
	return nil
}
