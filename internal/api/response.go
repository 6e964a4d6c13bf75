package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/uphproperties/uphsite/internal/auth"
	"github.com/uphproperties/uphsite/internal/catalog"
	"github.com/uphproperties/uphsite/internal/inquiry"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("error encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

type fieldError struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

// writeError maps a service error to its HTTP response. Unexpected errors
// are logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		cve *catalog.ValidationError
		ive *inquiry.ValidationError
		nf  *catalog.NotFoundError
		se  *catalog.StorageError
		ce  *catalog.ConflictError
		ue  *inquiry.UnavailableError
	)

	switch {
	case errors.As(err, &cve):
		jsonResponse(w, http.StatusBadRequest, fieldError{Error: cve.Message, Fields: cve.Fields})
	case errors.As(err, &ive):
		jsonResponse(w, http.StatusBadRequest, fieldError{Error: ive.Error(), Fields: ive.Fields})
	case errors.As(err, &nf):
		jsonError(w, http.StatusNotFound, nf.Resource+" not found")
	case errors.As(err, &ce):
		jsonError(w, http.StatusConflict, ce.Message)
	case errors.As(err, &se):
		slog.Error("media upload failed", "method", r.Method, "path", r.URL.Path, "error", err)
		jsonError(w, http.StatusBadGateway, "failed to store media")
	case errors.As(err, &ue):
		slog.Error("downstream service failed", "method", r.Method, "path", r.URL.Path, "error", err)
		jsonError(w, http.StatusBadGateway, ue.Op+" failed")
	case errors.Is(err, auth.ErrNotConfigured):
		slog.Error("admin authentication is not configured", "path", r.URL.Path)
		jsonError(w, http.StatusInternalServerError, "server is not configured")
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
