package app

import (
	"log/slog"
	"net/http"

	"lms-service/internal/admin"
	"lms-service/internal/auth"
	"lms-service/internal/course"
	"lms-service/internal/health"
	"lms-service/internal/home"
	"lms-service/internal/httputil"
	"lms-service/internal/metrics"
	"lms-service/internal/middleware"
	"lms-service/internal/user"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Deps is everything the HTTP surface needs. Tests build it from in-memory
// fakes; New builds it from postgres and the configured broker.
type Deps struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Sessions  *auth.SessionManager
	Users     user.Repository
	Courses   course.Repository
	Publisher course.EventPublisher
	DB        health.Pinger
}

func NewRouter(d Deps) chi.Router {
	userService := user.NewService(d.Users)
	courseService := course.NewService(d.Courses, userService, d.Publisher, d.Logger)
	authService := auth.NewService(d.Users, d.Logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chimiddleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondWithError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	// Health endpoints (no session)
	health.NewHandler(d.DB, d.Logger).RegisterRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(auth.Session(d.Sessions, userService, d.Logger))

		home.NewHandler().RegisterRoutes(r)
		auth.NewHandler(authService, d.Sessions, d.Logger, d.Metrics).RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireLogin)
			course.NewHandler(courseService, d.Logger, d.Metrics).RegisterRoutes(r)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireLogin, auth.RequireAdmin)
			admin.NewHandler(userService, courseService, d.Logger, d.Metrics).RegisterRoutes(r)
		})
	})

	return r
}
