package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/events"
)

func newCredentialService(repo *fakeUserRepo, dispatcher *recordingDispatcher) *CredentialService {
	svc := NewCredentialService(testAuthConfig(), repo, newTestHasher(), dispatcher, zap.NewNop())
	svc.now = func() time.Time { return testClock }
	return svc
}

func TestRequestPasswordResetIssuesToken(t *testing.T) {
	user := eligibleUser(t, "user-1", "alice", "old-password")
	repo := newFakeUserRepo(user)
	dispatcher := &recordingDispatcher{}
	svc := newCredentialService(repo, dispatcher)

	issue, err := svc.RequestPasswordReset(context.Background(), "ALICE")
	require.NoError(t, err)
	require.NotNil(t, issue)
	assert.Equal(t, "user-1", issue.UserID)
	assert.NotEmpty(t, issue.Token)
	assert.Equal(t, testClock.Add(30*time.Minute), issue.ExpiresAt)

	stored := repo.stored(t, "user-1")
	require.NotNil(t, stored.ResetToken)
	require.NotNil(t, stored.ResetTokenExpiry)
	assert.Equal(t, issue.Token, *stored.ResetToken)
	assert.Equal(t, []events.EventType{events.EventPasswordResetRequested}, dispatcher.types())
}

func TestRequestPasswordResetUnknownUsernameLeaksNothing(t *testing.T) {
	svc := newCredentialService(newFakeUserRepo(), &recordingDispatcher{})

	issue, err := svc.RequestPasswordReset(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, issue)
}

func TestResetPasswordWithTokenRoundTrip(t *testing.T) {
	user := eligibleUser(t, "user-1", "alice", "old-password")
	user.FailedLogonAttempts = 2
	repo := newFakeUserRepo(user)
	dispatcher := &recordingDispatcher{}
	svc := newCredentialService(repo, dispatcher)

	issue, err := svc.RequestPasswordReset(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, issue)

	err = svc.ResetPasswordWithToken(context.Background(), "user-1", issue.Token, "new-password")
	require.NoError(t, err)

	stored := repo.stored(t, "user-1")
	assert.Nil(t, stored.ResetToken, "token is single use")
	assert.Nil(t, stored.ResetTokenExpiry)
	assert.Equal(t, 0, stored.FailedLogonAttempts)
	assert.Equal(t, []string{"Password changed using token"}, repo.auditTrail("user-1"))

	hasher := newTestHasher()
	assert.True(t, hasher.Verify("new-password", stored.PasswordHash, stored.PasswordSalt))
	assert.False(t, hasher.Verify("old-password", stored.PasswordHash, stored.PasswordSalt))

	// The consumed token cannot be replayed.
	err = svc.ResetPasswordWithToken(context.Background(), "user-1", issue.Token, "another-password")
	assert.ErrorIs(t, err, domain.ErrTokenExpiredOrInvalid)
}

func TestResetPasswordWithExpiredTokenMutatesNothing(t *testing.T) {
	user := eligibleUser(t, "user-1", "alice", "old-password")
	user.FailedLogonAttempts = 2
	token := "expired-token"
	expiry := testClock.Add(-time.Second)
	user.ResetToken = &token
	user.ResetTokenExpiry = &expiry

	repo := newFakeUserRepo(user)
	svc := newCredentialService(repo, &recordingDispatcher{})

	err := svc.ResetPasswordWithToken(context.Background(), "user-1", token, "new-password")
	assert.ErrorIs(t, err, domain.ErrTokenExpiredOrInvalid)

	stored := repo.stored(t, "user-1")
	assert.Equal(t, user.PasswordHash, stored.PasswordHash)
	assert.Equal(t, user.PasswordSalt, stored.PasswordSalt)
	require.NotNil(t, stored.ResetToken)
	assert.Equal(t, token, *stored.ResetToken)
	require.NotNil(t, stored.ResetTokenExpiry)
	assert.Equal(t, expiry, *stored.ResetTokenExpiry)
	assert.Equal(t, 2, stored.FailedLogonAttempts)
	assert.Empty(t, repo.auditTrail("user-1"))
}

func TestResetPasswordWithWrongToken(t *testing.T) {
	user := eligibleUser(t, "user-1", "alice", "old-password")
	token := "valid-token"
	expiry := testClock.Add(time.Hour)
	user.ResetToken = &token
	user.ResetTokenExpiry = &expiry

	repo := newFakeUserRepo(user)
	svc := newCredentialService(repo, &recordingDispatcher{})

	err := svc.ResetPasswordWithToken(context.Background(), "user-1", "other-token", "new-password")
	assert.ErrorIs(t, err, domain.ErrTokenExpiredOrInvalid)
}

func TestResetPasswordWithoutStoredToken(t *testing.T) {
	user := eligibleUser(t, "user-1", "alice", "old-password")
	repo := newFakeUserRepo(user)
	svc := newCredentialService(repo, &recordingDispatcher{})

	err := svc.ResetPasswordWithToken(context.Background(), "user-1", "any-token", "new-password")
	assert.ErrorIs(t, err, domain.ErrTokenExpiredOrInvalid)
}

func TestResetPasswordUnknownUserIsDistinctError(t *testing.T) {
	svc := newCredentialService(newFakeUserRepo(), &recordingDispatcher{})

	err := svc.ResetPasswordWithToken(context.Background(), "missing", "token", "new-password")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.NotErrorIs(t, err, domain.ErrTokenExpiredOrInvalid)
}

func TestChangePasswordVerifiesStoredCredential(t *testing.T) {
	// The current secret is checked against the stored hash and salt, not
	// against material derived from the submitted secret itself.
	user := eligibleUser(t, "user-1", "alice", "old-password")
	user.FailedLogonAttempts = 1
	repo := newFakeUserRepo(user)
	dispatcher := &recordingDispatcher{}
	svc := newCredentialService(repo, dispatcher)

	err := svc.ChangePassword(context.Background(), "user-1", "wrong-current", "new-password")
	assert.ErrorIs(t, err, domain.ErrAuthenticationFailed)

	stored := repo.stored(t, "user-1")
	assert.Equal(t, user.PasswordHash, stored.PasswordHash, "failed change must not mutate")
	assert.Equal(t, 1, stored.FailedLogonAttempts)
	assert.Empty(t, repo.auditTrail("user-1"))

	err = svc.ChangePassword(context.Background(), "user-1", "old-password", "new-password")
	require.NoError(t, err)

	stored = repo.stored(t, "user-1")
	assert.Equal(t, 0, stored.FailedLogonAttempts)
	assert.Equal(t, []string{"Password changed"}, repo.auditTrail("user-1"))
	assert.Equal(t, []events.EventType{events.EventPasswordChanged}, dispatcher.types())

	hasher := newTestHasher()
	assert.True(t, hasher.Verify("new-password", stored.PasswordHash, stored.PasswordSalt))
	assert.False(t, hasher.Verify("old-password", stored.PasswordHash, stored.PasswordSalt))
}

func TestChangePasswordUnknownUser(t *testing.T) {
	svc := newCredentialService(newFakeUserRepo(), &recordingDispatcher{})

	err := svc.ChangePassword(context.Background(), "missing", "current", "new")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
