package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// IdentityService coordinates registration, login and self-service account flows.
type IdentityService struct {
	users      repository.UserRepository
	sessions   auth.SessionStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.AuthConfig
}

// IdentityDependencies encapsulates requirements for the identity service.
type IdentityDependencies struct {
	UserRepo   repository.UserRepository
	Sessions   auth.SessionStore
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewIdentityService builds the service.
func NewIdentityService(cfg config.AuthConfig, deps IdentityDependencies) *IdentityService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{
		users:      deps.UserRepo,
		sessions:   deps.Sessions,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func passwordTooLong() error {
	return apperrors.NewValidationError("password is too long",
		map[string]any{"max_bytes": auth.MaxPasswordBytes})
}

// Register creates a client account.
func (s *IdentityService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, apperrors.NewValidationError("name, email and password are required", nil)
	}
	if auth.PasswordTooLong(password) {
		return nil, passwordTooLong()
	}

	hash, err := auth.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleClient,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewDuplicateEmail(email)
		}
		return nil, apperrors.NewInternalError(err)
	}

	publish(ctx, s.dispatcher, s.logger, events.New(events.EventUserRegistered, user, 0,
		events.UserRegisteredPayload{Email: user.Email, Name: user.Name}))
	return user, nil
}

// Authenticate verifies credentials and replaces priorSessionID with a fresh session.
// Unknown email and wrong password yield the same error.
func (s *IdentityService) Authenticate(ctx context.Context, priorSessionID, email, password string) (*domain.User, domain.Session, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.Session{}, apperrors.NewInvalidCredentials()
		}
		return nil, domain.Session{}, apperrors.NewInternalError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, domain.Session{}, apperrors.NewInvalidCredentials()
	}

	if priorSessionID != "" {
		if err := s.sessions.Delete(ctx, priorSessionID); err != nil {
			return nil, domain.Session{}, apperrors.NewInternalError(err)
		}
	}
	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, domain.Session{}, apperrors.NewInternalError(err)
	}
	return user, session, nil
}

// CurrentUser resolves the user behind a session. A missing, unknown or expired session,
// or a session whose user is gone, yields nil without error.
func (s *IdentityService) CurrentUser(ctx context.Context, sessionID string) (*domain.User, error) {
	if sessionID == "" {
		return nil, nil
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewInternalError(err)
	}
	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

func (s *IdentityService) requireUser(ctx context.Context, sessionID string) (*domain.User, error) {
	user, err := s.CurrentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewUnauthorized("login required")
	}
	return user, nil
}

// ChangeName updates the display name of the session's user.
func (s *IdentityService) ChangeName(ctx context.Context, sessionID, newName string) (*domain.User, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	user, err := s.requireUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateName(ctx, user.ID, newName); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user.Name = newName
	return user, nil
}

// ChangePassword replaces the password hash after verifying the current password.
func (s *IdentityService) ChangePassword(ctx context.Context, sessionID, current, newPassword, confirm string) error {
	if newPassword == "" {
		return apperrors.NewValidationError("new password is required", nil)
	}
	if auth.PasswordTooLong(newPassword) {
		return passwordTooLong()
	}
	if newPassword != confirm {
		return apperrors.NewMismatch("password confirmation does not match")
	}
	user, err := s.requireUser(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, current); err != nil {
		return apperrors.NewInvalidCredentials()
	}

	hash, err := auth.HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// Logout deletes the session. Empty or unknown sessions are not an error.
func (s *IdentityService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// EnsureSeedAdmin inserts the configured administrator when no account uses the seed email.
// It reports whether a user was created.
func (s *IdentityService) EnsureSeedAdmin(ctx context.Context) (bool, error) {
	email := normalizeEmail(s.cfg.SeedAdminEmail)
	if email == "" {
		return false, nil
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return false, s.rehashSeedAdmin(ctx, existing)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}

	hash, err := auth.HashPassword(s.cfg.SeedAdminPassword, s.cfg.BcryptCost)
	if err != nil {
		return false, err
	}
	admin := &domain.User{
		Name:         s.cfg.SeedAdminName,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		// Another instance may have seeded concurrently.
		if errors.Is(err, repository.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	s.logger.Info("seeded admin user", zap.String("email", email), zap.Int64("user_id", admin.ID))
	return true, nil
}

// rehashSeedAdmin resets the seed account's password when its stored hash cannot be verified,
// as with accounts imported from databases written by older releases.
func (s *IdentityService) rehashSeedAdmin(ctx context.Context, admin *domain.User) error {
	if auth.IsSupportedHash(admin.PasswordHash) {
		return nil
	}
	hash, err := auth.HashPassword(s.cfg.SeedAdminPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, admin.ID, hash); err != nil {
		return err
	}
	s.logger.Warn("reset seed admin password with unsupported hash",
		zap.String("email", admin.Email), zap.Int64("user_id", admin.ID))
	return nil
}
