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

const auditFailedLogon = "Failed Logon attempt"

// LogonService coordinates credential verification and lockout enforcement
// for logon attempts.
type LogonService struct {
	users      repository.UserRepository
	hasher     *auth.Hasher
	dispatcher events.Dispatcher
	logger     *zap.Logger

	checkFailedAttempts bool
	maxFailedAttempts   int
	now                 func() time.Time
}

// NewLogonService builds the service. Lockout thresholds come from resolved
// configuration, never from ambient state.
func NewLogonService(cfg config.AuthConfig, users repository.UserRepository, hasher *auth.Hasher, dispatcher events.Dispatcher, logger *zap.Logger) *LogonService {
	return &LogonService{
		users:               users,
		hasher:              hasher,
		dispatcher:          dispatcher,
		logger:              logger,
		checkFailedAttempts: cfg.CheckFailedAttempts,
		maxFailedAttempts:   cfg.MaxFailedAttempts,
		now:                 time.Now,
	}
}

// AttemptLogon decides whether the caller may authenticate as username.
//
// An unknown or ineligible account yields a bare failure result carrying no
// attempt count, so callers cannot enumerate accounts. A locked account
// yields the same bare failure without invoking the verifier or mutating
// any state. Otherwise a failed verification increments the counter by one
// and appends an audit entry; a successful one resets the counter to zero.
func (s *LogonService) AttemptLogon(ctx context.Context, username, secret string) (*domain.LogonResult, error) {
	user, err := s.users.GetByUsername(ctx, username, true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.LogonResult{}, nil
		}
		return nil, fmt.Errorf("%w: lookup user: %v", domain.ErrPersistenceFailure, err)
	}

	if !auth.MayAttempt(user.FailedLogonAttempts, s.checkFailedAttempts, s.maxFailedAttempts) {
		s.logger.Info("logon attempt against locked account", zap.String("user_id", user.ID))
		return &domain.LogonResult{}, nil
	}

	if s.hasher.Verify(secret, user.PasswordHash, user.PasswordSalt) {
		if err := s.users.ResetFailedAttempts(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("%w: reset failed attempts: %v", domain.ErrPersistenceFailure, err)
		}
		s.publish(ctx, events.EventLogonSucceeded, user, nil)
		return &domain.LogonResult{Success: true, Username: user.Username}, nil
	}

	count, err := s.users.IncrementFailedAttempts(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: increment failed attempts: %v", domain.ErrPersistenceFailure, err)
	}
	if err := s.users.AppendAuditEntry(ctx, user.ID, auditFailedLogon); err != nil {
		return nil, fmt.Errorf("%w: append audit entry: %v", domain.ErrPersistenceFailure, err)
	}

	s.publish(ctx, events.EventLogonFailed, user, events.LogonFailedPayload{FailedLogonAttempts: count})
	if s.checkFailedAttempts && count >= s.maxFailedAttempts {
		s.publish(ctx, events.EventAccountLockedOut, user, events.AccountLockedOutPayload{MaxFailedAttempts: s.maxFailedAttempts})
	}

	return &domain.LogonResult{FailedLogonAttempts: count}, nil
}

func (s *LogonService) publish(ctx context.Context, eventType events.EventType, user *domain.User, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    user.ID,
		Username:  user.Username,
		Timestamp: s.now(),
		Payload:   payload,
	})
}
