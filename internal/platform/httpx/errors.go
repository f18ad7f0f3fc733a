// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrDuplicate     = errors.New("duplicate entry")
	ErrValidation    = errors.New("validation failed")
	ErrUnprocessable = errors.New("unprocessable request")
	ErrUnauthorized  = errors.New("unauthorized")
)

// Mapping associates a domain error with one of the sentinels above.
type Mapping struct {
	Err  error
	Kind error
}

// RespondError maps domain errors to HTTP responses using RFC7807.
// Domain specific errors are first translated through mappings.
func RespondError(w http.ResponseWriter, err error, mappings ...Mapping) {
	for _, m := range mappings {
		if errors.Is(err, m.Err) {
			respond(w, m.Kind, err.Error())
			return
		}
	}
	respond(w, err, err.Error())
}

func respond(w http.ResponseWriter, kind error, detail string) {
	switch {
	case errors.Is(kind, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", detail)
	case errors.Is(kind, ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", detail)
	case errors.Is(kind, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", detail)
	case errors.Is(kind, ErrUnprocessable):
		Problem(w, http.StatusUnprocessableEntity, "Unprocessable Entity", detail)
	case errors.Is(kind, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", detail)
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
