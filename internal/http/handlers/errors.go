package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/hongminglow/fanclub/internal/fanclub"
	"github.com/hongminglow/fanclub/internal/http/respond"
	"github.com/hongminglow/fanclub/internal/storage"
)

const maxJSONBody = 1 << 20

// decodeJSON reads a bounded JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

// writeServiceError maps service and storage errors to HTTP statuses. Unknown
// errors are logged and reported with a generic message.
func writeServiceError(w http.ResponseWriter, err error, action string) {
	var verr *fanclub.ValidationError
	switch {
	case errors.As(err, &verr):
		respond.Error(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, fanclub.ErrInvalidCredentials):
		respond.Error(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, fanclub.ErrForbidden):
		respond.Error(w, http.StatusForbidden, "you are not allowed to do that")
	case errors.Is(err, fanclub.ErrEmailTaken),
		errors.Is(err, fanclub.ErrAlreadyMember),
		errors.Is(err, fanclub.ErrNotMember),
		errors.Is(err, fanclub.ErrOwnerCannotLeave):
		respond.Error(w, http.StatusConflict, err.Error())
	default:
		log.Printf("%s: %v", action, err)
		respond.Error(w, http.StatusInternalServerError, "failed to "+action)
	}
}
