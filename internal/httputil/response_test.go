package httputil_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lms-service/internal/flash"
	"lms-service/internal/httputil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedirect_StatusByMethod(t *testing.T) {
	w := httptest.NewRecorder()
	httputil.Redirect(w, httptest.NewRequest(http.MethodPost, "/login", nil), "/dashboard")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	httputil.Redirect(w, httptest.NewRequest(http.MethodGet, "/logout", nil), "/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestFlashRedirect_ThenRender(t *testing.T) {
	w := httptest.NewRecorder()
	httputil.FlashRedirect(w, httptest.NewRequest(http.MethodGet, "/admin", nil), "/", "You need to be an admin to access this page.")
	require.Equal(t, http.StatusFound, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	w2 := httptest.NewRecorder()
	httputil.Render(w2, req, "home", map[string]string{"greeting": "hi"})

	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, "application/json", w2.Header().Get("Content-Type"))

	var view struct {
		Name    string            `json:"view"`
		Flashes []string          `json:"flashes"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w2.Body).Decode(&view))
	assert.Equal(t, "home", view.Name)
	assert.Equal(t, []string{"You need to be an admin to access this page."}, view.Flashes)
	assert.Equal(t, "hi", view.Data["greeting"])

	var cleared bool
	for _, c := range w2.Result().Cookies() {
		if c.Name == flash.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "flash cookie should be expired after render")
}

func TestRespondWithError(t *testing.T) {
	w := httptest.NewRecorder()
	httputil.RespondWithError(w, http.StatusNotFound, "course not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"course not found"}`, w.Body.String())
}
