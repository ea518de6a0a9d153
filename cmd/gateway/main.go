package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/coursekit/coursekit-lms/internal/activity"
	api "github.com/coursekit/coursekit-lms/internal/api/http"
	"github.com/coursekit/coursekit-lms/internal/attempt"
	auth "github.com/coursekit/coursekit-lms/internal/auth/middleware"
	"github.com/coursekit/coursekit-lms/internal/certificate"
	"github.com/coursekit/coursekit-lms/internal/config"
	"github.com/coursekit/coursekit-lms/internal/db"
	"github.com/coursekit/coursekit-lms/internal/enrollment"
	"github.com/coursekit/coursekit-lms/internal/logging"
	"github.com/coursekit/coursekit-lms/internal/rbac"
	"github.com/coursekit/coursekit-lms/internal/testbank"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logging.Init(cfg.LogLevel, cfg.LogFormat)
	log := logging.Get()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db open failed")
	}

	tests := testbank.NewSQLStore(dbh)
	enrollments := enrollment.NewSQLSource(dbh)
	attempts := attempt.NewSQLStore(dbh)
	certs := certificate.NewSQLStore(dbh)
	issuer := certificate.NewIssuer(certs)
	recorder := activity.NewRecorder(dbh, log)

	gate := &attempt.Gate{Tests: tests, Enrollments: enrollments, Attempts: attempts, Certs: certs}
	svc := &attempt.Service{
		Tests:    tests,
		Attempts: attempts,
		Gate:     gate,
		Issuer:   issuer,
		Activity: recorder,
		Log:      log,
	}

	authSvc := auth.NewAuthService(cfg.AuthSecret)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, auth.LocalCredentials{
		DB:            dbh,
		AdminUser:     cfg.AdminUser,
		AdminPassHash: cfg.AdminPassHash,
	}))

	// Public: anyone can verify a certificate by its code.
	r.Get("/certificates/verify/{code}", api.VerifyCertificateHandler(issuer))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, cfg.RoleClaimFallback))

		// Authoring
		pr.With(rbac.Require("course:write")).
			Post("/courses", api.PutCourseHandler(tests))
		pr.With(rbac.Require("test:write")).
			Post("/tests", api.PutTestHandler(tests))

		// Learner flow
		pr.With(rbac.Require("test:view")).
			Get("/tests/{testID}", api.GetTestHandler(tests))
		pr.With(rbac.Require("test:view")).
			Get("/tests/{testID}/questions", api.QuestionsHandler(svc))
		pr.With(rbac.Require("attempt:create")).
			Post("/tests/{testID}/attempts", api.StartAttemptHandler(svc))
		pr.With(rbac.Require("attempt:save")).
			Put("/attempts/{attemptID}/answers/{questionID}", api.SaveAnswerHandler(svc))
		pr.With(rbac.Require("attempt:submit")).
			Post("/attempts/{attemptID}/finalize", api.FinalizeAttemptHandler(svc))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts/{attemptID}", api.GetAttemptHandler(svc))
		pr.With(rbac.Require("attempt:view-own")).
			Get("/my/attempts", api.ListMyAttemptsHandler(attempts))
		pr.With(rbac.Require("certificate:view-own")).
			Get("/my/certificates", api.MyCertificatesHandler(certs))
		pr.With(rbac.Require("activity:view-own")).
			Get("/my/activity", api.MyActivityHandler(recorder))

		// Admin / author
		pr.With(rbac.Require("attempt:view-all")).
			Get("/attempts", api.ListAttemptsHandler(attempts))
		pr.With(rbac.Require("attempt:abandon")).
			Post("/attempts/{attemptID}/abandon", api.AbandonAttemptHandler(svc))
		pr.With(rbac.Require("certificate:revoke")).
			Post("/certificates/{certID}/revoke", api.RevokeCertificateHandler(issuer))
		pr.With(rbac.Require("certificate:revoke")).
			Post("/certificates/{certID}/renew", api.RenewCertificateHandler(issuer))
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info().Str("addr", cfg.HTTPAddr).Str("db", cfg.DBDriver).Msg("gateway listening")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
