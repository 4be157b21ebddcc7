package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/docmark/internal/highlight"
	"github.com/dgallion1/docmark/internal/workspace"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeError maps workspace and highlight errors to a status code and a
// machine-readable kind.
func writeError(w http.ResponseWriter, err error) {
	body := map[string]any{"error": err.Error()}
	code := http.StatusInternalServerError

	var dup *highlight.DuplicateError
	switch {
	case errors.As(err, &dup):
		code = http.StatusConflict
		body["kind"] = "duplicate_text"
		body["where"] = dup.Where.String()
	case errors.Is(err, highlight.ErrEmptySelection):
		code = http.StatusUnprocessableEntity
		body["kind"] = "empty_selection"
	case errors.Is(err, highlight.ErrOutOfBounds):
		code = http.StatusUnprocessableEntity
		body["kind"] = "out_of_bounds"
	case errors.Is(err, highlight.ErrOverlapRejected):
		code = http.StatusConflict
		body["kind"] = "overlap_rejected"
	case errors.Is(err, highlight.ErrNotFound):
		code = http.StatusNotFound
		body["kind"] = "not_found"
	case errors.Is(err, workspace.ErrUnknownDocument), errors.Is(err, workspace.ErrNoCurrentDocument):
		code = http.StatusNotFound
		body["kind"] = "unknown_document"
	case errors.Is(err, workspace.ErrDuplicateName):
		code = http.StatusConflict
		body["kind"] = "duplicate_name"
	}
	writeJSON(w, code, body)
}
