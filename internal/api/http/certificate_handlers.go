package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	auth "github.com/coursekit/coursekit-lms/internal/auth/middleware"
	"github.com/coursekit/coursekit-lms/internal/certificate"
)

// VerifyCertificateHandler is public: no auth, low-information response.
func VerifyCertificateHandler(issuer *certificate.Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := issuer.Verify(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func MyCertificatesHandler(store certificate.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListByLearner(r.Context(), auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func RevokeCertificateHandler(issuer *certificate.Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := issuer.Revoke(r.Context(), chi.URLParam(r, "certID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func RenewCertificateHandler(issuer *certificate.Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := issuer.Renew(r.Context(), chi.URLParam(r, "certID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}
