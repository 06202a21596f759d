package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/config"
	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/events"
	"github.com/spec-kit/identity-service/internal/repository"
)

const (
	auditPasswordChanged      = "Password changed"
	auditPasswordResetByToken = "Password changed using token"
)

// ResetIssue is the outcome of a reset-token request: the opaque token and
// its expiry, handed to the notification channel outside this service.
type ResetIssue struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// CredentialService manages password rotation: token-based reset and
// authenticated password change.
type CredentialService struct {
	users      repository.UserRepository
	hasher     *auth.Hasher
	dispatcher events.Dispatcher
	logger     *zap.Logger

	resetTTL time.Duration
	now      func() time.Time
}

// NewCredentialService builds the service.
func NewCredentialService(cfg config.AuthConfig, users repository.UserRepository, hasher *auth.Hasher, dispatcher events.Dispatcher, logger *zap.Logger) *CredentialService {
	return &CredentialService{
		users:      users,
		hasher:     hasher,
		dispatcher: dispatcher,
		logger:     logger,
		resetTTL:   cfg.ResetTokenTTL(),
		now:        time.Now,
	}
}

// RequestPasswordReset issues a single-use reset token with the configured
// TTL and stores it on the user record. An unknown username yields a nil
// issue with no error, so callers cannot probe for accounts.
func (s *CredentialService) RequestPasswordReset(ctx context.Context, username string) (*ResetIssue, error) {
	user, err := s.users.GetByUsername(ctx, username, false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: lookup user: %v", domain.ErrPersistenceFailure, err)
	}

	token := uuid.NewString()
	expiry := s.now().Add(s.resetTTL)
	if err := s.users.SetResetToken(ctx, user.ID, token, expiry); err != nil {
		return nil, fmt.Errorf("%w: store reset token: %v", domain.ErrPersistenceFailure, err)
	}

	s.publish(ctx, events.EventPasswordResetRequested, user)
	return &ResetIssue{UserID: user.ID, Token: token, ExpiresAt: expiry}, nil
}

// ResetPasswordWithToken validates the presented token against the stored
// token and expiry, then rotates the password. A missing user id is a caller
// error (ErrUserNotFound), distinct from a failed validation
// (ErrTokenExpiredOrInvalid). Validation failures mutate nothing.
func (s *CredentialService) ResetPasswordWithToken(ctx context.Context, userID, token, newSecret string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("%w: lookup user: %v", domain.ErrPersistenceFailure, err)
	}

	if user.ResetToken == nil || user.ResetTokenExpiry == nil ||
		*user.ResetToken != token || user.ResetTokenExpiry.Before(s.now()) {
		return domain.ErrTokenExpiredOrInvalid
	}

	if err := s.rotate(ctx, user, newSecret, auditPasswordResetByToken); err != nil {
		return err
	}
	s.publish(ctx, events.EventPasswordResetCompleted, user)
	return nil
}

// ChangePassword verifies the current secret against the stored hash and
// salt, then rotates to the new secret. A wrong current secret mutates
// nothing and returns ErrAuthenticationFailed.
func (s *CredentialService) ChangePassword(ctx context.Context, userID, currentSecret, newSecret string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("%w: lookup user: %v", domain.ErrPersistenceFailure, err)
	}

	if !s.hasher.Verify(currentSecret, user.PasswordHash, user.PasswordSalt) {
		return domain.ErrAuthenticationFailed
	}

	if err := s.rotate(ctx, user, newSecret, auditPasswordChanged); err != nil {
		return err
	}
	s.publish(ctx, events.EventPasswordChanged, user)
	return nil
}

// rotate hashes the new secret and persists hash, salt, cleared reset state,
// and a zeroed counter as one atomic write, then appends the audit entry.
func (s *CredentialService) rotate(ctx context.Context, user *domain.User, newSecret, auditDescription string) error {
	hash, salt, err := s.hasher.Hash(newSecret)
	if err != nil {
		return fmt.Errorf("hash new secret: %w", err)
	}
	if err := s.users.RotateCredentials(ctx, user.ID, hash, salt); err != nil {
		return fmt.Errorf("%w: rotate credentials: %v", domain.ErrPersistenceFailure, err)
	}
	if err := s.users.AppendAuditEntry(ctx, user.ID, auditDescription); err != nil {
		return fmt.Errorf("%w: append audit entry: %v", domain.ErrPersistenceFailure, err)
	}
	return nil
}

func (s *CredentialService) publish(ctx context.Context, eventType events.EventType, user *domain.User) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    user.ID,
		Username:  user.Username,
		Timestamp: s.now(),
	})
}
