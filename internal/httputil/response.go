package httputil

import (
	"encoding/json"
	"net/http"

	"lms-service/internal/flash"
)

// View is the document written for every rendered page.
type View struct {
	Name    string      `json:"view"`
	Flashes []string    `json:"flashes,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// RespondWithError writes an error response in JSON format
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

// RespondWithJSON writes a JSON response
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Render writes the named view together with any pending flash messages.
func Render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	RespondWithJSON(w, http.StatusOK, View{
		Name:    name,
		Flashes: flash.Pop(w, r),
		Data:    data,
	})
}

// Redirect uses 303 after a POST so the browser follows up with a GET.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	code := http.StatusFound
	if r.Method == http.MethodPost {
		code = http.StatusSeeOther
	}
	http.Redirect(w, r, url, code)
}

// FlashRedirect queues msg and redirects to url.
func FlashRedirect(w http.ResponseWriter, r *http.Request, url, msg string) {
	flash.Add(w, r, msg)
	Redirect(w, r, url)
}
