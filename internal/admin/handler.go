// Package admin serves the administration panel. Every route expects to be
// mounted behind auth.RequireLogin and auth.RequireAdmin.
package admin

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"lms-service/internal/auth"
	"lms-service/internal/course"
	"lms-service/internal/httputil"
	"lms-service/internal/metrics"
	"lms-service/internal/user"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const (
	dashboardPath = "/admin"
	usersPath     = "/admin/users"
)

type Handler struct {
	users     user.Service
	courses   course.Service
	logger    *slog.Logger
	metrics   *metrics.Metrics
	validator *validator.Validate
}

func NewHandler(users user.Service, courses course.Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		users:     users,
		courses:   courses,
		logger:    logger,
		metrics:   m,
		validator: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", h.Dashboard)

	router.Get("/course/add", h.AddCourseForm)
	router.Post("/course/add", h.AddCourse)
	router.Get("/course/{id}/edit", h.EditCourseForm)
	router.Post("/course/{id}/edit", h.EditCourse)
	router.Get("/course/{id}/delete", h.DeleteCourse)

	router.Get("/assignment/add", h.AddAssignmentForm)
	router.Post("/assignment/add", h.AddAssignment)

	router.Get("/users", h.Users)
	router.Get("/user/{id}/toggle-admin", h.ToggleAdmin)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	courses, err := h.courses.ListCourses(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	assignments, err := h.courses.ListAssignments(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Render(w, r, "admin/dashboard", map[string]interface{}{
		"users":       users,
		"courses":     courses,
		"assignments": assignments,
	})
}

func (h *Handler) AddCourseForm(w http.ResponseWriter, r *http.Request) {
	httputil.Render(w, r, "admin/add_course", nil)
}

func (h *Handler) AddCourse(w http.ResponseWriter, r *http.Request) {
	in, ok := h.courseInput(w, r, "/admin/course/add")
	if !ok {
		return
	}

	c, err := h.courses.AddCourse(r.Context(), in)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordAdminAction(r.Context(), "course_add")
	h.logger.InfoContext(r.Context(), "course added", "course_id", c.ID)
	httputil.FlashRedirect(w, r, dashboardPath, "Course added successfully!")
}

func (h *Handler) EditCourseForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	c, err := h.courses.GetCourse(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.Render(w, r, "admin/edit_course", map[string]interface{}{"course": c})
}

func (h *Handler) EditCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	// a missing course is a 404 even when the form is invalid
	if _, err := h.courses.GetCourse(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	in, ok := h.courseInput(w, r, fmt.Sprintf("/admin/course/%d/edit", id))
	if !ok {
		return
	}

	if _, err := h.courses.EditCourse(r.Context(), id, in); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordAdminAction(r.Context(), "course_edit")
	h.logger.InfoContext(r.Context(), "course updated", "course_id", id)
	httputil.FlashRedirect(w, r, dashboardPath, "Course updated successfully!")
}

func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.courses.DeleteCourse(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordAdminAction(r.Context(), "course_delete")
	h.logger.InfoContext(r.Context(), "course deleted", "course_id", id)
	httputil.FlashRedirect(w, r, dashboardPath, "Course deleted successfully!")
}

func (h *Handler) AddAssignmentForm(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.ListCourses(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.Render(w, r, "admin/add_assignment", map[string]interface{}{
		"courses": courses,
		"users":   users,
	})
}

func (h *Handler) AddAssignment(w http.ResponseWriter, r *http.Request) {
	const formPath = "/admin/assignment/add"

	if err := r.ParseForm(); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid form")
		return
	}

	in := course.AssignmentInput{
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		Description: r.PostFormValue("description"),
		DueDate:     strings.TrimSpace(r.PostFormValue("due_date")),
	}
	courseID, err := optionalInt(r.PostFormValue("course_id"))
	if err != nil {
		httputil.FlashRedirect(w, r, formPath, "Selected course does not exist")
		return
	}
	in.CourseID = courseID
	userID, err := optionalInt(r.PostFormValue("user_id"))
	if err != nil {
		httputil.FlashRedirect(w, r, formPath, "Selected user does not exist")
		return
	}
	in.UserID = userID

	if err := h.validator.Struct(in); err != nil {
		httputil.FlashRedirect(w, r, formPath, "Please provide a title, a due date and a course")
		return
	}

	acting, _ := auth.CurrentUser(r.Context())
	a, err := h.courses.AddAssignment(r.Context(), acting.ID, in)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			httputil.FlashRedirect(w, r, formPath, msg)
			return
		}
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordAdminAction(r.Context(), "assignment_add")
	h.logger.InfoContext(r.Context(), "assignment added", "assignment_id", a.ID, "course_id", a.CourseID, "user_id", a.UserID)
	httputil.FlashRedirect(w, r, dashboardPath, "Assignment added successfully!")
}

func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.Render(w, r, "admin/users", map[string]interface{}{"users": users})
}

func (h *Handler) ToggleAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	acting, _ := auth.CurrentUser(r.Context())
	target, err := h.users.ToggleAdmin(r.Context(), acting.ID, id)
	switch {
	case errors.Is(err, user.ErrSelfToggle):
		httputil.FlashRedirect(w, r, usersPath, "You cannot modify your own admin status!")
	case err != nil:
		h.handleServiceError(w, r, err)
	default:
		h.metrics.RecordAdminAction(r.Context(), "toggle_admin")
		h.logger.InfoContext(r.Context(), "admin status changed",
			"user_id", target.ID, "is_admin", target.IsAdmin, "by", acting.ID)
		httputil.FlashRedirect(w, r, usersPath, "Admin status updated for "+target.Username)
	}
}

// courseInput reads and validates the course form; on failure it has
// already redirected back to formPath.
func (h *Handler) courseInput(w http.ResponseWriter, r *http.Request, formPath string) (course.CourseInput, bool) {
	if err := r.ParseForm(); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid form")
		return course.CourseInput{}, false
	}

	in := course.CourseInput{
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		Description: r.PostFormValue("description"),
		LectureLink: strings.TrimSpace(r.PostFormValue("lecture_link")),
	}
	if err := h.validator.Struct(in); err != nil {
		h.logger.WarnContext(r.Context(), "course validation failed", "error", err)
		httputil.FlashRedirect(w, r, formPath, "Please provide a title of at most 100 characters")
		return course.CourseInput{}, false
	}
	return in, true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, course.ErrCourseNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "course not found")
	case errors.Is(err, user.ErrUserNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, "user not found")
	default:
		h.logger.ErrorContext(r.Context(), "admin request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

func validationMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, course.ErrInvalidDueDate):
		return "Due date must use the format YYYY-MM-DDTHH:MM", true
	case errors.Is(err, course.ErrUnknownCourse):
		return "Selected course does not exist", true
	case errors.Is(err, course.ErrUnknownUser):
		return "Selected user does not exist", true
	case errors.Is(err, course.ErrInvalidInput):
		return "Invalid assignment", true
	}
	return "", false
}

// pathID parses {id}; anything that is not a positive integer is a 404.
func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		httputil.RespondWithError(w, http.StatusNotFound, "not found")
		return 0, false
	}
	return id, true
}

func optionalInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
