package flash_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"lms-service/internal/flash"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cookieFrom(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == flash.CookieName {
			return c
		}
	}
	return nil
}

func TestAddThenPop(t *testing.T) {
	w := httptest.NewRecorder()
	flash.Add(w, httptest.NewRequest(http.MethodPost, "/register", nil), "Registration successful! Please login.")

	c := cookieFrom(t, w)
	require.NotNil(t, c)

	// next request carries the cookie
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(c)
	w2 := httptest.NewRecorder()

	messages := flash.Pop(w2, req)
	assert.Equal(t, []string{"Registration successful! Please login."}, messages)

	expired := cookieFrom(t, w2)
	require.NotNil(t, expired)
	assert.True(t, expired.MaxAge < 0)
}

func TestAddKeepsPendingMessages(t *testing.T) {
	w := httptest.NewRecorder()
	flash.Add(w, httptest.NewRequest(http.MethodGet, "/", nil), "first")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookieFrom(t, w))
	w2 := httptest.NewRecorder()
	flash.Add(w2, req, "second")

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookieFrom(t, w2))
	assert.Equal(t, []string{"first", "second"}, flash.Pop(httptest.NewRecorder(), req2))
}

func TestPop_NoCookie(t *testing.T) {
	w := httptest.NewRecorder()
	assert.Nil(t, flash.Pop(w, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Nil(t, cookieFrom(t, w))
}

func TestPop_GarbageCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flash.CookieName, Value: "%%%not-base64"})

	assert.Nil(t, flash.Pop(httptest.NewRecorder(), req))
}
