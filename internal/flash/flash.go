// Package flash keeps one-time notifications in a cookie so they survive a
// redirect and are shown on the next rendered view.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const CookieName = "flash"

// Add queues msg behind any messages the request already carried.
func Add(w http.ResponseWriter, r *http.Request, msg string) {
	messages := append(read(r), msg)

	payload, err := json.Marshal(messages)
	if err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the pending messages and expires the cookie.
func Pop(w http.ResponseWriter, r *http.Request) []string {
	messages := read(r)
	if len(messages) == 0 {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	return messages
}

func read(r *http.Request) []string {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var messages []string
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil
	}
	return messages
}
