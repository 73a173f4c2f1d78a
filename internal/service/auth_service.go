package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexedwards/argon2id"
	"github.com/venuetix/bookings/internal/domain"
	"github.com/venuetix/bookings/internal/repo/postgres"
	"github.com/venuetix/bookings/internal/session"
)

// ErrInvalidCredentials covers both unknown usernames and wrong passwords so
// the login page does not reveal which one failed.
var ErrInvalidCredentials = errors.New("invalid username or password")

type AuthService interface {
	// Login verifies the credentials and sets the session's authenticated
	// identity marker.
	Login(ctx context.Context, sess *session.Session, req *domain.LoginRequest) (*domain.User, error)
	// Logout clears all session state.
	Logout(ctx context.Context, sess *session.Session) error
}

type authService struct {
	users postgres.UsersRepo
}

func NewAuthService(users postgres.UsersRepo) AuthService {
	return &authService{users: users}
}

func (s *authService) Login(ctx context.Context, sess *session.Session, req *domain.LoginRequest) (*domain.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}

	if err := sess.SetUserID(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to mark session authenticated: %w", err)
	}

	return user, nil
}

func (s *authService) Logout(ctx context.Context, sess *session.Session) error {
	return sess.Clear(ctx)
}
