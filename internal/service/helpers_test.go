package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/config"
	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/events"
)

// --- helpers ---

const testIterations = 1000

var testClock = time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

func newTestHasher() *auth.Hasher {
	return auth.NewHasher(testIterations)
}

func hashSecret(t *testing.T, h *auth.Hasher, secret string) (string, string) {
	t.Helper()
	hash, salt, err := h.Hash(secret)
	if err != nil {
		t.Fatalf("hash secret: %v", err)
	}
	return hash, salt
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		PBKDF2Iterations:        testIterations,
		CheckFailedAttempts:     true,
		MaxFailedAttempts:       3,
		PasswordResetTTLMinutes: 30,
	}
}

// fakeUserRepo is an in-memory UserRepository. It mirrors the real
// implementation's contract: case-insensitive username lookup, eligibility
// filtering inside the lookup, serialized counter mutations, and atomic
// credential rotation.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	audit map[string][]string
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{
		users: make(map[string]*domain.User),
		audit: make(map[string][]string),
	}
	for _, u := range users {
		repo.users[u.ID] = cloneUser(u)
	}
	return repo
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	if u.ResetToken != nil {
		token := *u.ResetToken
		clone.ResetToken = &token
	}
	if u.ResetTokenExpiry != nil {
		expiry := *u.ResetTokenExpiry
		clone.ResetTokenExpiry = &expiry
	}
	clone.Roles = append([]domain.Role(nil), u.Roles...)
	return &clone
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneUser(user), nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string, eligibleOnly bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if !strings.EqualFold(user.Username, username) {
			continue
		}
		if eligibleOnly && !user.LogonEligible() {
			return nil, pgx.ErrNoRows
		}
		return cloneUser(user), nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) IncrementFailedAttempts(ctx context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	user.FailedLogonAttempts++
	return user.FailedLogonAttempts, nil
}

func (r *fakeUserRepo) ResetFailedAttempts(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.FailedLogonAttempts = 0
	return nil
}

func (r *fakeUserRepo) SetResetToken(ctx context.Context, id, token string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.ResetToken = &token
	user.ResetTokenExpiry = &expiry
	return nil
}

func (r *fakeUserRepo) RotateCredentials(ctx context.Context, id, hash, salt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = hash
	user.PasswordSalt = salt
	user.ResetToken = nil
	user.ResetTokenExpiry = nil
	user.FailedLogonAttempts = 0
	return nil
}

func (r *fakeUserRepo) AppendAuditEntry(ctx context.Context, id, description string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	r.audit[id] = append(r.audit[id], description)
	return nil
}

func (r *fakeUserRepo) stored(t *testing.T, id string) *domain.User {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		t.Fatalf("user %s not stored", id)
	}
	return cloneUser(user)
}

func (r *fakeUserRepo) auditTrail(id string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.audit[id]...)
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.EventType
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}
