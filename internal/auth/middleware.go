package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"lms-service/internal/httputil"
	"lms-service/internal/user"
)

type contextKey string

// UserKey is the context key for the authenticated *user.User
const UserKey contextKey = "user"

const (
	loginPath    = "/login"
	homePath     = "/"
	loginMessage = "Please log in to access this page."
	adminMessage = "You need to be an admin to access this page."
)

// UserLoader loads the user a session points at.
type UserLoader interface {
	GetUser(ctx context.Context, id int) (*user.User, error)
}

// Session resolves the session cookie into the current user. Requests with no
// valid session continue as anonymous; a session whose user no longer exists
// is cleared.
func Session(sessions *SessionManager, users UserLoader, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := sessions.UserID(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			u, err := users.GetUser(r.Context(), userID)
			if err != nil {
				if errors.Is(err, user.ErrUserNotFound) {
					sessions.Clear(w)
					next.ServeHTTP(w, r)
					return
				}
				logger.ErrorContext(r.Context(), "failed to load session user", "user_id", userID, "error", err)
				httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// RequireLogin redirects anonymous requests to the login page.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r.Context()); !ok {
			target := loginPath
			if r.Method == http.MethodGet {
				target += "?next=" + url.QueryEscape(r.URL.RequestURI())
			}
			httputil.FlashRedirect(w, r, target, loginMessage)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin redirects everyone but admins to the home page. Mount it after
// RequireLogin so anonymous users are sent to log in first.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r.Context())
		if !ok || !u.IsAdmin {
			httputil.FlashRedirect(w, r, homePath, adminMessage)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CurrentUser returns the authenticated user, or false for anonymous requests.
func CurrentUser(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(UserKey).(*user.User)
	return u, ok && u != nil
}

// WithUser binds u to ctx
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, UserKey, u)
}
