package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/fjhdream/truck-billing/internal/domain"
)

// errorKind maps a domain sentinel to its HTTP status and error code.
type errorKind struct {
	sentinel error
	status   int
	code     string
}

// errorKinds is checked in order; the first match wins.
var errorKinds = []errorKind{
	{domain.ErrInvalidIdentifier, http.StatusUnprocessableEntity, "invalid_identifier"},
	{domain.ErrValidation, http.StatusUnprocessableEntity, "validation_error"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrEmptyBilling, http.StatusNotFound, "empty_billing"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
	{domain.ErrBillingClosed, http.StatusConflict, "billing_closed"},
	{domain.ErrDuplicate, http.StatusConflict, "duplicate"},
}

// writeError maps err to a JSON error response. Unknown errors and store
// failures become 500 with a generic message; the cause is only logged.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, k := range errorKinds {
		if errors.Is(err, k.sentinel) {
			writeJSON(w, k.status, errorBody(k.code, unwrapMessage(err, k.sentinel)))
			return
		}
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("request_too_large", "request body too large"))
		return
	}
	s.log.ErrorContext(r.Context(), "request failed", "error", err, "method", r.Method, "path", r.URL.Path)
	writeJSON(w, http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
}

// unwrapMessage extracts the human-readable part that follows the sentinel
// in a wrapped error chain.
// e.g. "service.TeamService.Create: validation error: team name is required" → "team name is required"
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return sentinel.Error()
}

func errorBody(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// writeJSON writes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON decodes the request body into dst. With optional set an empty
// body leaves dst untouched.
func decodeJSON(r *http.Request, dst any, optional bool) error {
	if r.Body == nil {
		if optional {
			return nil
		}
		return fmt.Errorf("%w: request body is required", domain.ErrValidation)
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		if optional {
			return nil
		}
		return fmt.Errorf("%w: request body is required", domain.ErrValidation)
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return err
	}
	return fmt.Errorf("%w: malformed JSON body: %v", domain.ErrValidation, err)
}

// pathParam binds a simple-style path parameter the way generated oapi
// servers do, unescaping the raw chi value.
func pathParam(r *http.Request, name string) (string, error) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return "", fmt.Errorf("%w: invalid path parameter %s: %v", domain.ErrInvalidIdentifier, name, err)
	}
	return v, nil
}

func errMissingField(name string) error {
	return fmt.Errorf("%w: %s is required", domain.ErrValidation, name)
}
