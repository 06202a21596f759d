package domain

import "time"

// Role is a role association granted to a user. Description doubles as the
// claim value emitted for the role.
type Role struct {
	ID          string
	Name        string
	Description string
}

// User is the account aggregate protected by this service. Credential
// material, lockout state, and reset state are the only fields the services
// mutate; account creation and deletion belong to collaborators outside
// this core.
type User struct {
	ID                  string
	Username            string
	PasswordHash        string
	PasswordSalt        string
	FailedLogonAttempts int
	ResetToken          *string
	ResetTokenExpiry    *time.Time
	Enabled             bool
	Approved            bool
	EmailVerified       bool
	Roles               []Role
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// LogonEligible reports whether the account may be considered for logon.
func (u *User) LogonEligible() bool {
	return u.Enabled && u.Approved && u.EmailVerified
}

// AuditEntry is a single append-only audit trail record for a user.
type AuditEntry struct {
	ID          string
	UserID      string
	Description string
	CreatedAt   time.Time
}
