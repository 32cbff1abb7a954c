package user

import (
	"context"
	"errors"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("username or email already taken")
	ErrSelfToggle    = errors.New("cannot modify own admin status")
)

type Service interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int) (*User, error)
	ToggleAdmin(ctx context.Context, actingID, targetID int) (*User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

func (s *service) GetUser(ctx context.Context, id int) (*User, error) {
	if id <= 0 {
		return nil, ErrUserNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// ToggleAdmin flips the admin flag of targetID. An admin can never change
// their own flag; the target is looked up first so a missing id wins.
func (s *service) ToggleAdmin(ctx context.Context, actingID, targetID int) (*User, error) {
	target, err := s.GetUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.ID == actingID {
		return target, ErrSelfToggle
	}

	target.IsAdmin = !target.IsAdmin
	if err := s.repo.Update(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}
