package course

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"lms-service/internal/metrics"

	"github.com/uptrace/bun"
)

type Repository interface {
	CreateCourse(ctx context.Context, c *Course) (*Course, error)
	GetAllCourses(ctx context.Context) ([]Course, error)
	GetCourseByID(ctx context.Context, id int) (*Course, error)
	UpdateCourse(ctx context.Context, c *Course) error
	DeleteCourse(ctx context.Context, id int) error

	CreateAssignment(ctx context.Context, a *Assignment) (*Assignment, error)
	GetAllAssignments(ctx context.Context) ([]Assignment, error)
	GetAssignmentByID(ctx context.Context, id int) (*Assignment, error)
	GetAssignmentsByCourse(ctx context.Context, courseID int) ([]Assignment, error)
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

// record reports a query to the database metrics. A missing row is not a failure.
func (r *repository) record(ctx context.Context, op, table string, start time.Time, err error) {
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, ErrCourseNotFound) {
		err = nil
	}
	if r.metrics != nil {
		r.metrics.Database.RecordQuery(ctx, op, table, time.Since(start), err)
	}
}

func (r *repository) CreateCourse(ctx context.Context, c *Course) (*Course, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(c).Returning("*").Exec(ctx)
	r.record(ctx, "insert", "courses", start, err)

	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repository) GetAllCourses(ctx context.Context) ([]Course, error) {
	start := time.Now()
	var courses []Course
	err := r.db.NewSelect().Model(&courses).Order("id ASC").Scan(ctx)
	r.record(ctx, "select", "courses", start, err)

	return courses, err
}

func (r *repository) GetCourseByID(ctx context.Context, id int) (*Course, error) {
	start := time.Now()
	c := new(Course)
	err := r.db.NewSelect().Model(c).Where("id = ?", id).Scan(ctx)
	r.record(ctx, "select", "courses", start, err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *repository) UpdateCourse(ctx context.Context, c *Course) error {
	start := time.Now()
	result, err := r.db.NewUpdate().
		Model(c).
		Column("title", "description", "lecture_link").
		WherePK().
		Exec(ctx)
	r.record(ctx, "update", "courses", start, err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

// DeleteCourse removes the course and its assignments in one transaction.
func (r *repository) DeleteCourse(ctx context.Context, id int) error {
	start := time.Now()
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*Assignment)(nil)).
			Where("course_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		result, err := tx.NewDelete().
			Model((*Course)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return ErrCourseNotFound
		}
		return nil
	})
	r.record(ctx, "delete", "courses", start, err)

	return err
}

func (r *repository) CreateAssignment(ctx context.Context, a *Assignment) (*Assignment, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(a).Returning("*").Exec(ctx)
	r.record(ctx, "insert", "assignments", start, err)

	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *repository) GetAllAssignments(ctx context.Context) ([]Assignment, error) {
	start := time.Now()
	var assignments []Assignment
	err := r.db.NewSelect().Model(&assignments).Order("id ASC").Scan(ctx)
	r.record(ctx, "select", "assignments", start, err)

	return assignments, err
}

func (r *repository) GetAssignmentByID(ctx context.Context, id int) (*Assignment, error) {
	start := time.Now()
	a := new(Assignment)
	err := r.db.NewSelect().Model(a).Where("id = ?", id).Scan(ctx)
	r.record(ctx, "select", "assignments", start, err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *repository) GetAssignmentsByCourse(ctx context.Context, courseID int) ([]Assignment, error) {
	start := time.Now()
	var assignments []Assignment
	err := r.db.NewSelect().
		Model(&assignments).
		Where("course_id = ?", courseID).
		Order("id ASC").
		Scan(ctx)
	r.record(ctx, "select", "assignments", start, err)

	return assignments, err
}
