package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coursekit/coursekit-lms/internal/attempt"
	auth "github.com/coursekit/coursekit-lms/internal/auth/middleware"
	"github.com/coursekit/coursekit-lms/internal/rbac"
)

func StartAttemptHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learnerID := auth.SubjectFromContext(r.Context())
		testID := chi.URLParam(r, "testID")
		a, d, err := svc.Start(r.Context(), learnerID, testID)
		if err != nil {
			writeError(w, err)
			return
		}
		if !d.Allowed {
			writeDenial(w, d)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func QuestionsHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learnerID := auth.SubjectFromContext(r.Context())
		testID := chi.URLParam(r, "testID")
		qs, d, err := svc.Questions(r.Context(), learnerID, testID)
		if err != nil {
			writeError(w, err)
			return
		}
		if !d.Allowed {
			writeDenial(w, d)
			return
		}
		writeJSON(w, http.StatusOK, qs)
	}
}

func SaveAnswerHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learnerID := auth.SubjectFromContext(r.Context())
		attemptID := chi.URLParam(r, "attemptID")
		questionID := chi.URLParam(r, "questionID")
		var req struct {
			Selection string `json:"selection"` // option ID, or text for short answers
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		ans, err := svc.SaveAnswer(r.Context(), learnerID, attemptID, questionID, req.Selection)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ans)
	}
}

func FinalizeAttemptHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		learnerID := auth.SubjectFromContext(ctx)
		learnerName := auth.DisplayNameFromContext(ctx)
		attemptID := chi.URLParam(r, "attemptID")
		var req struct {
			Choices map[string]string `json:"choices"` // questionID -> selection; may be empty
		}
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad json", http.StatusBadRequest)
				return
			}
		}
		out, err := svc.Finalize(ctx, learnerID, learnerName, attemptID, req.Choices)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func GetAttemptHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		callerID := auth.SubjectFromContext(ctx)
		canViewAll := rbac.HasPermission(rbac.RoleFromContext(ctx), "attempt:view-all")
		a, err := svc.Get(ctx, callerID, canViewAll, chi.URLParam(r, "attemptID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func AbandonAttemptHandler(svc *attempt.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.Abandon(r.Context(), chi.URLParam(r, "attemptID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func ListMyAttemptsHandler(store attempt.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learnerID := auth.SubjectFromContext(r.Context())
		list, err := store.List(r.Context(), attempt.ListOpts{
			LearnerID: learnerID,
			TestID:    r.URL.Query().Get("test_id"),
			Status:    r.URL.Query().Get("status"),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// ListAttemptsHandler is the author/admin view with free filters.
func ListAttemptsHandler(store attempt.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		list, err := store.List(r.Context(), attempt.ListOpts{
			LearnerID: q.Get("learner_id"),
			TestID:    q.Get("test_id"),
			Status:    q.Get("status"),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
