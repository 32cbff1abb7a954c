package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lms-service/internal/user"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrConflict           = errors.New("conflict")
	ErrUsernameExists     = fmt.Errorf("%w: username already exists", ErrConflict)
	ErrEmailExists        = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
)

type Service struct {
	users  user.Repository
	logger *slog.Logger
}

func NewService(users user.Repository, logger *slog.Logger) *Service {
	return &Service{
		users:  users,
		logger: logger,
	}
}

// Register creates a non-admin account. It does not log the user in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*user.User, error) {
	if err := s.ensureAbsent(ctx, s.users.GetByUsername, req.Username, ErrUsernameExists); err != nil {
		return nil, err
	}
	if err := s.ensureAbsent(ctx, s.users.GetByEmail, req.Email, ErrEmailExists); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.users.Create(ctx, &user.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
	})
	if err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, user.ErrDuplicateUser) {
			return nil, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", created.ID, "username", created.Username)
	return created, nil
}

func (s *Service) ensureAbsent(ctx context.Context, lookup func(context.Context, string) (*user.User, error), value string, conflict error) error {
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		return conflict
	case errors.Is(err, user.ErrUserNotFound):
		return nil
	default:
		return err
	}
}

// Authenticate checks the username/password pair. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, req LoginRequest) (*user.User, error) {
	u, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}
