package course

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"lms-service/internal/auth"
	"lms-service/internal/httputil"
	"lms-service/internal/metrics"

	"github.com/go-chi/chi/v5"
)

const (
	maxUploadMemory = 32 << 20
	// DefaultMaxUploadSize caps the whole submission request body.
	DefaultMaxUploadSize = 64 << 20
)

type Handler struct {
	service       Service
	logger        *slog.Logger
	metrics       *metrics.Metrics
	maxUploadSize int64
}

func NewHandler(service Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service:       service,
		logger:        logger,
		metrics:       m,
		maxUploadSize: DefaultMaxUploadSize,
	}
}

// WithMaxUploadSize overrides the request body cap for submissions.
func (h *Handler) WithMaxUploadSize(n int64) *Handler {
	h.maxUploadSize = n
	return h
}

// RegisterRoutes mounts the browsing routes. The caller is expected to wrap
// the router with auth.RequireLogin.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/dashboard", h.Dashboard)
	router.Get("/course/{id}", h.ViewCourse)
	router.Post("/submit_assignment/{id}", h.SubmitAssignment)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.ListCourses(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordCoursesListViewed(r.Context())
	httputil.Render(w, r, "dashboard", map[string]interface{}{
		"courses": courses,
	})
}

func (h *Handler) ViewCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusNotFound, "course not found")
		return
	}

	c, assignments, err := h.service.ViewCourse(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordCourseViewed(r.Context())
	httputil.Render(w, r, "course", map[string]interface{}{
		"course":      c,
		"assignments": assignments,
	})
}

// SubmitAssignment accepts a multipart upload in the "file" field and always
// redirects back to the assignment's course.
func (h *Handler) SubmitAssignment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusNotFound, "assignment not found")
		return
	}

	sub := Submission{AssignmentID: id}
	if u, ok := auth.CurrentUser(r.Context()); ok {
		sub.UserID = u.ID
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	var tooLarge *http.MaxBytesError
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.logger.WarnContext(r.Context(), "failed to parse submission", "assignment_id", id, "error", err)
		sub.TooLarge = errors.As(err, &tooLarge)
	}
	var file multipart.File
	var header *multipart.FileHeader
	if !sub.TooLarge {
		file, header, err = r.FormFile("file")
	}
	switch {
	case sub.TooLarge:
	case err == nil:
		file.Close()
		sub.HasFile = true
		sub.Filename = header.Filename
		sub.Size = header.Size
	case r.MultipartForm != nil && len(r.MultipartForm.Value["file"]) > 0:
		// a file input submitted with nothing chosen arrives without a filename
		sub.HasFile = true
	}

	a, err := h.service.SubmitAssignment(r.Context(), sub)
	if a == nil {
		h.handleServiceError(w, r, err)
		return
	}

	target := fmt.Sprintf("/course/%d", a.CourseID)
	switch {
	case errors.Is(err, ErrNoFileSubmitted):
		httputil.FlashRedirect(w, r, target, "No file submitted")
	case errors.Is(err, ErrNoFileSelected):
		httputil.FlashRedirect(w, r, target, "No file selected")
	case errors.Is(err, ErrFileTooLarge):
		httputil.FlashRedirect(w, r, target, "File is too large")
	case err != nil:
		h.handleServiceError(w, r, err)
	default:
		h.metrics.RecordSubmission(r.Context())
		h.logger.InfoContext(r.Context(), "assignment submitted",
			"assignment_id", a.ID, "user_id", sub.UserID, "filename", sub.Filename, "size", sub.Size)
		httputil.FlashRedirect(w, r, target, "Assignment submitted successfully")
	}
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrCourseNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "course not found")
	case errors.Is(err, ErrAssignmentNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "assignment not found")
	default:
		h.logger.ErrorContext(r.Context(), "course request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
