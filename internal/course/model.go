package course

import (
	"time"

	"github.com/uptrace/bun"
)

// DueDateLayout is the format of the due_date form field (an HTML datetime-local input).
const DueDateLayout = "2006-01-02T15:04"

type Course struct {
	bun.BaseModel `bun:"table:courses,alias:c"`

	ID          int    `bun:"id,pk,autoincrement" json:"id"`
	Title       string `bun:"title,notnull" json:"title"`
	Description string `bun:"description,type:text" json:"description"`
	LectureLink string `bun:"lecture_link" json:"lectureLink"`
}

type Assignment struct {
	bun.BaseModel `bun:"table:assignments,alias:a"`

	ID          int       `bun:"id,pk,autoincrement" json:"id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description string    `bun:"description,type:text" json:"description"`
	DueDate     time.Time `bun:"due_date,notnull" json:"dueDate"`
	Submission  *string   `bun:"submission" json:"submission,omitempty"`
	CourseID    int       `bun:"course_id,notnull" json:"courseId"`
	UserID      int       `bun:"user_id,notnull" json:"userId"`
}

// CourseInput carries the editable course fields from the admin forms.
type CourseInput struct {
	Title       string `validate:"required,max=100"`
	Description string
	LectureLink string `validate:"omitempty,max=200"`
}

// AssignmentInput is the admin "add assignment" form. DueDate is still text
// here and is parsed with DueDateLayout by the service. A zero UserID means
// the acting admin.
type AssignmentInput struct {
	Title       string `validate:"required,max=100"`
	Description string
	DueDate     string `validate:"required"`
	CourseID    int    `validate:"required"`
	UserID      int
}

// Submission describes one upload attempt. HasFile is false when the request
// had no "file" part at all. TooLarge is set when the body exceeded the cap.
type Submission struct {
	UserID       int
	AssignmentID int
	HasFile      bool
	Filename     string
	Size         int64
	TooLarge     bool
}

// SubmissionEvent is published for every accepted submission.
type SubmissionEvent struct {
	AssignmentID int       `json:"assignmentId"`
	CourseID     int       `json:"courseId"`
	UserID       int       `json:"userId"`
	Filename     string    `json:"filename"`
	Size         int64     `json:"size"`
	SubmittedAt  time.Time `json:"submittedAt"`
}
