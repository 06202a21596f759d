package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/identity-service/internal/domain"
)

// UserRepository is the storage collaborator for the credential flows. All
// counter and credential mutations happen in single statements so concurrent
// attempts against the same row serialize on the row lock and rotations are
// all-or-nothing.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByUsername matches the username case-insensitively. With
	// eligibleOnly set, accounts that are not enabled, approved, and
	// email-verified are excluded from the lookup itself.
	GetByUsername(ctx context.Context, username string, eligibleOnly bool) (*domain.User, error)
	// IncrementFailedAttempts adds exactly 1 to the failed-logon counter and
	// returns the post-increment value.
	IncrementFailedAttempts(ctx context.Context, id string) (int, error)
	ResetFailedAttempts(ctx context.Context, id string) error
	SetResetToken(ctx context.Context, id, token string, expiry time.Time) error
	// RotateCredentials stores the new hash and salt, clears the reset token
	// and expiry, and zeroes the failed-attempt counter in one statement.
	RotateCredentials(ctx context.Context, id, hash, salt string) error
	AppendAuditEntry(ctx context.Context, id, description string) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `
        id, username, password_hash, password_salt, failed_logon_attempts,
        reset_token, reset_token_expiry, enabled, approved, email_verified,
        created_at, updated_at`

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
        SELECT` + userColumns + `
        FROM users WHERE id=$1`

	return r.scanUser(ctx, r.pool.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string, eligibleOnly bool) (*domain.User, error) {
	query := `
        SELECT` + userColumns + `
        FROM users WHERE LOWER(username)=LOWER($1)`
	if eligibleOnly {
		query += ` AND enabled AND approved AND email_verified`
	}

	return r.scanUser(ctx, r.pool.QueryRow(ctx, query, username))
}

func (r *userRepository) scanUser(ctx context.Context, row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.PasswordSalt,
		&user.FailedLogonAttempts,
		&user.ResetToken,
		&user.ResetTokenExpiry,
		&user.Enabled,
		&user.Approved,
		&user.EmailVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}

	roles, err := r.loadRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	return &user, nil
}

func (r *userRepository) loadRoles(ctx context.Context, userID string) ([]domain.Role, error) {
	const query = `
        SELECT r.id, r.name, r.description
        FROM roles r
        JOIN user_roles ur ON ur.role_id = r.id
        WHERE ur.user_id=$1
        ORDER BY r.name`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *userRepository) IncrementFailedAttempts(ctx context.Context, id string) (int, error) {
	const query = `
        UPDATE users
        SET failed_logon_attempts = failed_logon_attempts + 1, updated_at=NOW()
        WHERE id=$1
        RETURNING failed_logon_attempts`

	var count int
	if err := r.pool.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *userRepository) ResetFailedAttempts(ctx context.Context, id string) error {
	const query = `
        UPDATE users SET failed_logon_attempts=0, updated_at=NOW()
        WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) SetResetToken(ctx context.Context, id, token string, expiry time.Time) error {
	const query = `
        UPDATE users SET reset_token=$1, reset_token_expiry=$2, updated_at=NOW()
        WHERE id=$3`

	cmd, err := r.pool.Exec(ctx, query, token, expiry, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) RotateCredentials(ctx context.Context, id, hash, salt string) error {
	const query = `
        UPDATE users
        SET password_hash=$1, password_salt=$2, reset_token=NULL,
            reset_token_expiry=NULL, failed_logon_attempts=0, updated_at=NOW()
        WHERE id=$3`

	cmd, err := r.pool.Exec(ctx, query, hash, salt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) AppendAuditEntry(ctx context.Context, id, description string) error {
	const query = `
        INSERT INTO user_audit_log (user_id, description)
        VALUES ($1, $2)`

	_, err := r.pool.Exec(ctx, query, id, description)
	return err
}
