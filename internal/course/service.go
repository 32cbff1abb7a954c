package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lms-service/internal/user"
)

var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrAssignmentNotFound = errors.New("assignment not found")

	// ErrInvalidInput is wrapped by every validation failure below.
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidDueDate  = fmt.Errorf("%w: due date must use the format YYYY-MM-DDTHH:MM", ErrInvalidInput)
	ErrUnknownCourse   = fmt.Errorf("%w: selected course does not exist", ErrInvalidInput)
	ErrUnknownUser     = fmt.Errorf("%w: selected user does not exist", ErrInvalidInput)
	ErrNoFileSubmitted = fmt.Errorf("%w: no file submitted", ErrInvalidInput)
	ErrNoFileSelected  = fmt.Errorf("%w: no file selected", ErrInvalidInput)
	ErrFileTooLarge    = fmt.Errorf("%w: file too large", ErrInvalidInput)
)

// UserLookup resolves assignees for new assignments.
type UserLookup interface {
	GetUser(ctx context.Context, id int) (*user.User, error)
}

// EventPublisher delivers domain events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

type Service interface {
	ListCourses(ctx context.Context) ([]Course, error)
	GetCourse(ctx context.Context, id int) (*Course, error)
	ViewCourse(ctx context.Context, id int) (*Course, []Assignment, error)
	ListAssignments(ctx context.Context) ([]Assignment, error)
	SubmitAssignment(ctx context.Context, sub Submission) (*Assignment, error)

	AddCourse(ctx context.Context, in CourseInput) (*Course, error)
	EditCourse(ctx context.Context, id int, in CourseInput) (*Course, error)
	DeleteCourse(ctx context.Context, id int) error
	AddAssignment(ctx context.Context, actingUserID int, in AssignmentInput) (*Assignment, error)
}

type service struct {
	repo      Repository
	users     UserLookup
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, users UserLookup, publisher EventPublisher, logger *slog.Logger) Service {
	return &service{
		repo:      repo,
		users:     users,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *service) ListCourses(ctx context.Context) ([]Course, error) {
	courses, err := s.repo.GetAllCourses(ctx)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []Course{}
	}
	return courses, nil
}

func (s *service) GetCourse(ctx context.Context, id int) (*Course, error) {
	if id <= 0 {
		return nil, ErrCourseNotFound
	}
	return s.repo.GetCourseByID(ctx, id)
}

func (s *service) ViewCourse(ctx context.Context, id int) (*Course, []Assignment, error) {
	c, err := s.GetCourse(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	assignments, err := s.repo.GetAssignmentsByCourse(ctx, c.ID)
	if err != nil {
		return nil, nil, err
	}
	if assignments == nil {
		assignments = []Assignment{}
	}
	return c, assignments, nil
}

func (s *service) ListAssignments(ctx context.Context) ([]Assignment, error) {
	assignments, err := s.repo.GetAllAssignments(ctx)
	if err != nil {
		return nil, err
	}
	if assignments == nil {
		assignments = []Assignment{}
	}
	return assignments, nil
}

// SubmitAssignment validates an upload for an existing assignment. The file
// itself is not stored and the submission column is left untouched; accepted
// uploads only produce a SubmissionEvent. The assignment is returned with
// validation errors so callers can redirect back to its course.
func (s *service) SubmitAssignment(ctx context.Context, sub Submission) (*Assignment, error) {
	if sub.AssignmentID <= 0 {
		return nil, ErrAssignmentNotFound
	}
	a, err := s.repo.GetAssignmentByID(ctx, sub.AssignmentID)
	if err != nil {
		return nil, err
	}

	if sub.TooLarge {
		return a, ErrFileTooLarge
	}
	if !sub.HasFile {
		return a, ErrNoFileSubmitted
	}
	if sub.Filename == "" {
		return a, ErrNoFileSelected
	}

	event := SubmissionEvent{
		AssignmentID: a.ID,
		CourseID:     a.CourseID,
		UserID:       sub.UserID,
		Filename:     sub.Filename,
		Size:         sub.Size,
		SubmittedAt:  s.now().UTC(),
	}
	if s.publisher != nil {
		key := fmt.Sprintf("assignment-%d", a.ID)
		if err := s.publisher.Publish(ctx, key, event); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish submission event", "assignment_id", a.ID, "error", err)
		}
	}

	return a, nil
}

func (s *service) AddCourse(ctx context.Context, in CourseInput) (*Course, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	return s.repo.CreateCourse(ctx, &Course{
		Title:       in.Title,
		Description: in.Description,
		LectureLink: in.LectureLink,
	})
}

// EditCourse overwrites every editable field; there are no partial updates.
func (s *service) EditCourse(ctx context.Context, id int, in CourseInput) (*Course, error) {
	c, err := s.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	c.Title = in.Title
	c.Description = in.Description
	c.LectureLink = in.LectureLink

	if err := s.repo.UpdateCourse(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) DeleteCourse(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrCourseNotFound
	}
	return s.repo.DeleteCourse(ctx, id)
}

func (s *service) AddAssignment(ctx context.Context, actingUserID int, in AssignmentInput) (*Assignment, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	dueDate, err := time.Parse(DueDateLayout, in.DueDate)
	if err != nil {
		return nil, ErrInvalidDueDate
	}

	if _, err := s.GetCourse(ctx, in.CourseID); err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return nil, ErrUnknownCourse
		}
		return nil, err
	}

	assignee := in.UserID
	if assignee == 0 {
		assignee = actingUserID
	}
	if _, err := s.users.GetUser(ctx, assignee); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	return s.repo.CreateAssignment(ctx, &Assignment{
		Title:       in.Title,
		Description: in.Description,
		DueDate:     dueDate,
		CourseID:    in.CourseID,
		UserID:      assignee,
	})
}
