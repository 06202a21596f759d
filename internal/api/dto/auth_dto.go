package dto

import "time"

// LogonRequest payload for logon attempts.
type LogonRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse carries an issued session token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LogonResponse reports a logon outcome. FailedLogonAttempts is present only
// on failures that still expose a counter.
type LogonResponse struct {
	Success             bool          `json:"success"`
	Username            string        `json:"username,omitempty"`
	FailedLogonAttempts int           `json:"failed_logon_attempts,omitempty"`
	Auth                *AuthResponse `json:"auth,omitempty"`
}

// PasswordResetRequest payload for requesting a reset token.
type PasswordResetRequest struct {
	Username string `json:"username"`
}

// PasswordResetConfirmRequest payload for consuming a reset token.
type PasswordResetConfirmRequest struct {
	UserID      string `json:"user_id"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ChangePasswordRequest payload for authenticated password changes.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
