package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"lms-service/internal/metrics"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetAll(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id int) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
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
func (r *repository) record(ctx context.Context, op string, start time.Time, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
	}
	if r.metrics != nil {
		r.metrics.Database.RecordQuery(ctx, op, "users", time.Since(start), err)
	}
}

func (r *repository) Create(ctx context.Context, u *User) (*User, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(u).Returning("*").Exec(ctx)
	r.record(ctx, "insert", start, err)

	if err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}
	return u, nil
}

func (r *repository) GetAll(ctx context.Context) ([]User, error) {
	start := time.Now()
	var users []User
	err := r.db.NewSelect().Model(&users).Order("id ASC").Scan(ctx)
	r.record(ctx, "select", start, err)

	return users, err
}

func (r *repository) GetByID(ctx context.Context, id int) (*User, error) {
	return r.getBy(ctx, "id = ?", id)
}

func (r *repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getBy(ctx, "username = ?", username)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getBy(ctx, "email = ?", email)
}

func (r *repository) getBy(ctx context.Context, where string, arg interface{}) (*User, error) {
	start := time.Now()
	u := new(User)
	err := r.db.NewSelect().Model(u).Where(where, arg).Limit(1).Scan(ctx)
	r.record(ctx, "select", start, err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *repository) Update(ctx context.Context, u *User) error {
	start := time.Now()
	result, err := r.db.NewUpdate().Model(u).WherePK().Exec(ctx)
	r.record(ctx, "update", start, err)

	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
