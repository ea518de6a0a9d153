package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coursekit/coursekit-lms/internal/activity"
	auth "github.com/coursekit/coursekit-lms/internal/auth/middleware"
	"github.com/coursekit/coursekit-lms/internal/testbank"
)

// PutTestHandler is the author-side write path into the question bank.
// Authoring invariants (option counts, correct flags) are validated here;
// grading trusts them later.
func PutTestHandler(store testbank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var t testbank.Test
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := store.PutTest(r.Context(), t); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": t.ID})
	}
}

// GetTestHandler serves the learner-safe view: correctness flags stripped.
func GetTestHandler(store testbank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := store.GetTestForLearner(r.Context(), chi.URLParam(r, "testID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func PutCourseHandler(store testbank.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c testbank.Course
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if c.ID == "" || c.Name == "" {
			http.Error(w, "id and name required", http.StatusBadRequest)
			return
		}
		if err := store.PutCourse(r.Context(), c); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func MyActivityHandler(rec *activity.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := rec.ListByLearner(r.Context(), auth.SubjectFromContext(r.Context()), 0)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
