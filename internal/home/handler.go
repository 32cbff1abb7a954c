package home

import (
	"net/http"

	"lms-service/internal/auth"
	"lms-service/internal/httputil"

	"github.com/go-chi/chi/v5"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", h.Index)
}

// Index is the landing page. Anonymous visitors get an empty view.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	var data interface{}
	if u, ok := auth.CurrentUser(r.Context()); ok {
		data = map[string]interface{}{
			"username": u.Username,
			"isAdmin":  u.IsAdmin,
		}
	}
	httputil.Render(w, r, "home", data)
}
