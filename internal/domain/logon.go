package domain

// LogonResult reports the outcome of a logon attempt. Username is echoed
// back only on success; FailedLogonAttempts carries the post-increment count
// only on a failed attempt so callers can render remaining-attempts UI. A
// locked or unknown account produces the zero value, leaking nothing.
type LogonResult struct {
	Success             bool
	Username            string
	FailedLogonAttempts int
}
