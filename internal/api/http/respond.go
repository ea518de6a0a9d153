package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coursekit/coursekit-lms/internal/attempt"
	"github.com/coursekit/coursekit-lms/internal/certificate"
	"github.com/coursekit/coursekit-lms/internal/testbank"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDenial renders an eligibility denial so the client can show which rule
// blocked the action.
func writeDenial(w http.ResponseWriter, d attempt.Decision) {
	writeJSON(w, http.StatusForbidden, map[string]any{
		"denied":  true,
		"reason":  d.Reason,
		"message": d.Message,
	})
}

// writeError maps the error taxonomy onto HTTP statuses. Unknown errors are
// 500s with no detail leaked.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, attempt.ErrNotFound),
		errors.Is(err, testbank.ErrNotFound),
		errors.Is(err, testbank.ErrCourseNotFound),
		errors.Is(err, certificate.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, attempt.ErrInvalidState):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, attempt.ErrNotOwner):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, certificate.ErrMissingCourseData),
		errors.Is(err, certificate.ErrIssuanceExhausted):
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
