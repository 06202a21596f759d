package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/identity-service/internal/domain"
)

func buildClaimSet() *domain.ClaimSet {
	cs := &domain.ClaimSet{}
	cs.Add(domain.ClaimTypeName, "alice")
	cs.Add(domain.ClaimTypeID, "user-1")
	cs.Add(domain.ClaimTypeAuthMethod, domain.AuthMethodPassword)
	cs.Add(domain.ClaimTypeRole, "Administrators")
	cs.Add(domain.ClaimTypeRole, "Editors")
	return cs
}

func TestTokenManagerRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	token, expiresAt, err := tm.IssueToken(buildClaimSet())
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "alice", claims.Name)
	assert.Equal(t, domain.AuthMethodPassword, claims.AuthMethod)
	assert.Equal(t, []string{"Administrators", "Editors"}, claims.Roles)
}

func TestTokenManagerRequiresIdentifierClaim(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)

	cs := &domain.ClaimSet{}
	cs.Add(domain.ClaimTypeName, "alice")

	_, _, err := tm.IssueToken(cs)
	assert.Error(t, err)
}

func TestTokenManagerRejectsForeignSignature(t *testing.T) {
	tm := NewTokenManager("test-secret", 60)
	other := NewTokenManager("other-secret", 60)

	token, _, err := tm.IssueToken(buildClaimSet())
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.Error(t, err)
}
