package auth

// MayAttempt reports whether an account with the given failed-attempt count
// may be presented to the credential verifier. When checking is disabled the
// policy always allows the attempt. Thresholds are passed in by the caller;
// this function reads no configuration of its own.
func MayAttempt(failedAttempts int, checkEnabled bool, maxAttempts int) bool {
	if !checkEnabled {
		return true
	}
	return failedAttempts < maxAttempts
}
