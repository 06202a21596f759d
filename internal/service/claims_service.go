package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/repository"
)

// ClaimsService assembles the claim set for an authenticated principal.
type ClaimsService struct {
	users repository.UserRepository
}

// NewClaimsService builds the service.
func NewClaimsService(users repository.UserRepository) *ClaimsService {
	return &ClaimsService{users: users}
}

// BuildClaims re-resolves the user by username and emits claims for the
// username, unique id, supplied authentication method, and one role claim
// per association, in that order. The re-fetch guards against acting on a
// stale record; a user that is no longer resolvable yields (nil, nil).
func (s *ClaimsService) BuildClaims(ctx context.Context, username, authMethod string) (*domain.ClaimSet, error) {
	user, err := s.users.GetByUsername(ctx, username, true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: lookup user: %v", domain.ErrPersistenceFailure, err)
	}

	cs := &domain.ClaimSet{}
	cs.Add(domain.ClaimTypeName, user.Username)
	cs.Add(domain.ClaimTypeID, user.ID)
	cs.Add(domain.ClaimTypeAuthMethod, authMethod)
	for _, role := range user.Roles {
		cs.Add(domain.ClaimTypeRole, role.Description)
	}
	return cs, nil
}
