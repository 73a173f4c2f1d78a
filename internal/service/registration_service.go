package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/venuetix/bookings/internal/domain"
	"github.com/venuetix/bookings/internal/registration"
	"github.com/venuetix/bookings/internal/repo/postgres"
	"github.com/venuetix/bookings/internal/session"
	"github.com/venuetix/bookings/internal/sms"
	"github.com/venuetix/bookings/pkg/events"
	"github.com/venuetix/bookings/pkg/logger"
)

var (
	// ErrDispatchFailed reports that the verification SMS could not be sent.
	// The staged pending registration is intentionally left in place: the
	// visitor may still verify with the generated code, or resubmit the form
	// to restage with a fresh one. Invalidating on dispatch failure is a
	// pending product decision.
	ErrDispatchFailed = errors.New("failed to send verification code")

	// ErrCodeMismatch reports a wrong verification code. Staging is retained
	// and the visitor may retry.
	ErrCodeMismatch = errors.New("invalid verification code")

	// ErrNothingPending reports a verification attempt with no staged
	// registration in the session.
	ErrNothingPending = errors.New("no registration in progress")
)

type RegistrationService interface {
	// Begin stages the registration in the session, generates the code, and
	// dispatches it to the visitor's normalized mobile number.
	Begin(ctx context.Context, sess *session.Session, req *domain.RegisterRequest) error
	// Verify checks the submitted code against the staged one and, on match,
	// commits the user and clears the staging.
	Verify(ctx context.Context, sess *session.Session, code string) (*domain.User, error)
}

type registrationService struct {
	users              postgres.UsersRepo
	sender             sms.Sender
	bus                events.Publisher
	defaultCountryCode string
}

func NewRegistrationService(
	users postgres.UsersRepo,
	sender sms.Sender,
	bus events.Publisher,
	defaultCountryCode string,
) RegistrationService {
	return &registrationService{
		users:              users,
		sender:             sender,
		bus:                bus,
		defaultCountryCode: defaultCountryCode,
	}
}

func (s *registrationService) Begin(ctx context.Context, sess *session.Session, req *domain.RegisterRequest) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	code, err := registration.GenerateCode()
	if err != nil {
		return err
	}

	pending, dispatch := registration.Begin(registration.Form{
		Username: req.Username,
		Password: req.Password,
		Mobile:   req.Mobile,
	}, code, s.defaultCountryCode)

	// Stage before dispatching: a failed send must not lose the pending
	// registration.
	if err := stagePending(ctx, sess, pending); err != nil {
		return fmt.Errorf("failed to stage registration: %w", err)
	}

	if err := s.sender.Send(ctx, dispatch.To, dispatch.Body); err != nil {
		logger.ErrorContext(ctx, "OTP dispatch failed", "error", err, "to", dispatch.To)
		return ErrDispatchFailed
	}

	return nil
}

func (s *registrationService) Verify(ctx context.Context, sess *session.Session, code string) (*domain.User, error) {
	pending, err := loadPending(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("failed to load staged registration: %w", err)
	}
	if !pending.Staged() {
		return nil, ErrNothingPending
	}
	if !pending.Matches(code) {
		return nil, ErrCodeMismatch
	}

	passwordHash, err := argon2id.CreateHash(pending.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, pending.Username, passwordHash, pending.Mobile)
	if err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := clearPending(ctx, sess); err != nil {
		logger.ErrorContext(ctx, "Failed to clear staged registration", "error", err, "user_id", user.ID)
	}

	if err := s.bus.Publish(ctx, events.UserRegistered, events.UserRegisteredEvent{
		UserID:       user.ID,
		Username:     user.Username,
		Mobile:       user.Mobile,
		RegisteredAt: time.Now(),
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish user.registered", "error", err)
	}

	return user, nil
}

func stagePending(ctx context.Context, sess *session.Session, p registration.Pending) error {
	return sess.SetAll(ctx, map[string]string{
		session.KeyOTP:      p.Code,
		session.KeyUsername: p.Username,
		session.KeyPassword: p.Password,
		session.KeyMobile:   p.Mobile,
	})
}

func loadPending(ctx context.Context, sess *session.Session) (registration.Pending, error) {
	var p registration.Pending
	var err error
	if p.Code, err = sess.Get(ctx, session.KeyOTP); err != nil {
		return p, err
	}
	if p.Username, err = sess.Get(ctx, session.KeyUsername); err != nil {
		return p, err
	}
	if p.Password, err = sess.Get(ctx, session.KeyPassword); err != nil {
		return p, err
	}
	p.Mobile, err = sess.Get(ctx, session.KeyMobile)
	return p, err
}

func clearPending(ctx context.Context, sess *session.Session) error {
	return sess.Delete(ctx,
		session.KeyOTP,
		session.KeyUsername,
		session.KeyPassword,
		session.KeyMobile,
	)
}
