package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"lms-service/internal/httputil"
	"lms-service/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const dashboardPath = "/dashboard"

type Handler struct {
	service   *Service
	sessions  *SessionManager
	logger    *slog.Logger
	metrics   *metrics.Metrics
	validator *validator.Validate
}

func NewHandler(service *Service, sessions *SessionManager, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service:   service,
		sessions:  sessions,
		logger:    logger,
		metrics:   m,
		validator: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/register", h.RegisterForm)
	router.Post("/register", h.Register)
	router.Get("/login", h.LoginForm)
	router.Post("/login", h.Login)
	router.With(RequireLogin).Get("/logout", h.Logout)
}

func (h *Handler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	httputil.Render(w, r, "register", nil)
}

// Register creates a new account and sends the user to the login page
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid form")
		return
	}

	req := RegisterRequest{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	if err := h.validator.Struct(req); err != nil {
		h.logger.WarnContext(r.Context(), "registration validation failed", "error", err)
		httputil.FlashRedirect(w, r, "/register", "Please provide a username, a valid email and a password")
		return
	}

	created, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameExists):
			httputil.FlashRedirect(w, r, "/register", "Username already exists")
		case errors.Is(err, ErrEmailExists):
			httputil.FlashRedirect(w, r, "/register", "Email already registered")
		case errors.Is(err, ErrConflict):
			httputil.FlashRedirect(w, r, "/register", "Username or email already taken")
		case errors.Is(err, ErrPasswordTooLong):
			httputil.FlashRedirect(w, r, "/register", "Password must be at most 72 bytes")
		default:
			h.logger.ErrorContext(r.Context(), "registration failed", "error", err)
			httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.metrics.RecordRegistration(r.Context())
	h.logger.InfoContext(r.Context(), "registration completed", "user_id", created.ID)

	httputil.FlashRedirect(w, r, loginPath, "Registration successful! Please login.")
}

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	httputil.Render(w, r, "login", map[string]string{"next": safeNext(r.URL.Query().Get("next"))})
}

// Login starts a session for valid credentials
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid form")
		return
	}

	next := safeNext(r.FormValue("next"))
	retry := loginPath
	if next != "" {
		retry += "?next=" + url.QueryEscape(next)
	}

	req := LoginRequest{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	if err := h.validator.Struct(req); err != nil {
		h.metrics.RecordLogin(r.Context(), false)
		httputil.FlashRedirect(w, r, retry, "Invalid username or password")
		return
	}

	u, err := h.service.Authenticate(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.logger.InfoContext(r.Context(), "login rejected", "username", req.Username)
			h.metrics.RecordLogin(r.Context(), false)
			httputil.FlashRedirect(w, r, retry, "Invalid username or password")
			return
		}
		h.logger.ErrorContext(r.Context(), "login failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.sessions.Issue(w, u.ID); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to issue session", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.metrics.RecordLogin(r.Context(), true)
	h.logger.InfoContext(r.Context(), "user logged in", "user_id", u.ID)

	if next == "" {
		next = dashboardPath
	}
	httputil.Redirect(w, r, next)
}

// Logout ends the session
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if u, ok := CurrentUser(r.Context()); ok {
		h.logger.InfoContext(r.Context(), "user logged out", "user_id", u.ID)
	}
	h.sessions.Clear(w)
	httputil.Redirect(w, r, homePath)
}

// safeNext only allows local paths so the login form cannot be used as an
// open redirect.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	parsed, err := url.Parse(next)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" {
		return ""
	}
	return next
}
