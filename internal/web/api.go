package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/evcraddock/pawstay/internal/apperr"
	"github.com/evcraddock/pawstay/internal/lifecycle"
)

// ActorHeader carries the staff member's name from the upstream proxy.
const ActorHeader = "X-Actor"

// defaultActor is used when a request carries no actor header.
const defaultActor = "staff"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg, code string, status int) {
	apiJSON(w, map[string]string{"error": msg, "code": code}, status)
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

// writeError maps lifecycle failures to HTTP status codes. Anything else is
// logged and reported as an internal error without its details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.Code(err)
	status := statusFor(code)
	if status == http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		apiError(w, "internal error", code, status)
		return
	}
	apiError(w, err.Error(), code, status)
}

func statusFor(code string) int {
	switch code {
	case "validation":
		return http.StatusBadRequest
	case "not_found":
		return http.StatusNotFound
	case "invalid_transition", "conflict", "already_closed", "not_checked_in":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v. An empty body leaves v untouched when
// allowEmpty is set.
func decode(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return &apperr.ValidationError{Message: "invalid JSON body"}
	}
	return nil
}

// actor returns the acting staff member for r.
func actor(r *http.Request) lifecycle.Actor {
	name := strings.TrimSpace(r.Header.Get(ActorHeader))
	if name == "" {
		name = defaultActor
	}
	return lifecycle.Actor{Name: name, Role: "staff"}
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &apperr.ValidationError{Field: "id", Message: "must be a UUID"}
	}
	return id, nil
}
