package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lms-service/internal/auth"
	"lms-service/internal/config"
	"lms-service/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessions(t *testing.T, secret string) *auth.SessionManager {
	t.Helper()
	sessions, err := auth.NewSessionManager(config.SessionConfig{Secret: secret, TTLMinutes: 60}, logger.NewDiscard())
	require.NoError(t, err)
	return sessions
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestSessionManager(t *testing.T) {
	sessions := newSessions(t, "test-secret")

	t.Run("Issue and read back", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, sessions.Issue(rec, 42))

		cookie := sessionCookie(t, rec)
		require.NotNil(t, cookie)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
		assert.Equal(t, 3600, cookie.MaxAge)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)
		id, err := sessions.UserID(req)
		require.NoError(t, err)
		assert.Equal(t, 42, id)
	})

	t.Run("Missing cookie", func(t *testing.T) {
		_, err := sessions.UserID(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.ErrorIs(t, err, auth.ErrInvalidSession)
	})

	t.Run("Tampered cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, sessions.Issue(rec, 1))
		cookie := sessionCookie(t, rec)
		cookie.Value += "x"

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)
		_, err := sessions.UserID(req)
		assert.ErrorIs(t, err, auth.ErrInvalidSession)
	})

	t.Run("Cookie signed with another secret", func(t *testing.T) {
		rec := httptest.NewRecorder()
		require.NoError(t, newSessions(t, "other-secret").Issue(rec, 1))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(sessionCookie(t, rec))
		_, err := sessions.UserID(req)
		assert.ErrorIs(t, err, auth.ErrInvalidSession)
	})

	t.Run("Expired session", func(t *testing.T) {
		claims := auth.SessionClaims{
			UserID: 7,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "lms-service",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
		_, err = sessions.UserID(req)
		assert.ErrorIs(t, err, auth.ErrInvalidSession)
	})

	t.Run("Clear expires the cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		sessions.Clear(rec)

		cookie := sessionCookie(t, rec)
		require.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
		assert.Less(t, cookie.MaxAge, 0)
	})

	t.Run("Ephemeral secret still round-trips", func(t *testing.T) {
		ephemeral := newSessions(t, "")
		rec := httptest.NewRecorder()
		require.NoError(t, ephemeral.Issue(rec, 3))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(sessionCookie(t, rec))
		id, err := ephemeral.UserID(req)
		require.NoError(t, err)
		assert.Equal(t, 3, id)
	})
}
