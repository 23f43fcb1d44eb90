package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/school-portal/internal/auth"
	"github.com/spec-kit/school-portal/internal/config"
	"github.com/spec-kit/school-portal/internal/domain"
	"github.com/spec-kit/school-portal/internal/events"
	"github.com/spec-kit/school-portal/internal/ratelimit"
	"github.com/spec-kit/school-portal/internal/repository"
	apperrors "github.com/spec-kit/school-portal/pkg/util"
)

// ErrInvalidCredentials covers both unknown usernames and wrong
// passwords. The wording is deliberately shared so failed logins do not
// reveal which half was wrong.
var ErrInvalidCredentials = errors.New("Invalid username or password")

// AuthService coordinates login and account lifecycle flows. It is
// stateless: issuing a token creates no server-side session record.
type AuthService struct {
	users      repository.UserRepository
	codec      *auth.Codec
	limiter    *ratelimit.LoginLimiter
	dispatcher events.Dispatcher
	bcryptCost int
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Codec      *auth.Codec
	Limiter    *ratelimit.LoginLimiter
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		codec:      deps.Codec,
		limiter:    deps.Limiter,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.BcryptCost,
	}
}

// Login authenticates a username/password pair and issues a fresh
// token with the configured validity window.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, time.Time, error) {
	if !s.limiter.Allow(ctx, username) {
		return nil, "", time.Time{}, apperrors.NewTooManyRequests("Too many login attempts")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, ErrInvalidCredentials
		}
		return nil, "", time.Time{}, err
	}
	if !user.Active {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.codec.Issue(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	s.limiter.Reset(ctx, username)
	return user, token, expiresAt, nil
}

// Logout is a no-op server-side: tokens expire purely by time. The
// handler clears the client cookie.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

// Register creates a new portal account. Route-level gating restricts
// this to admins.
func (s *AuthService) Register(ctx context.Context, actor *auth.Identity, username, fullName, email, password string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.NewConflict("username already taken", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventUserRegistered,
			Actor:     events.Actor{SubjectID: actor.SubjectID, Role: actor.Role},
			Timestamp: time.Now(),
			Payload: events.UserRegisteredPayload{
				UserID:   user.ID,
				Username: user.Username,
				Role:     user.Role,
			},
		})
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new
// hash.
func (s *AuthService) ChangePassword(ctx context.Context, subjectID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, subjectID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}
