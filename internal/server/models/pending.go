package models

// PendingRegistration is a registration waiting for its OTP. It lives only in
// process memory, keyed by username.
type PendingRegistration struct {
	Password string
	Email    string
	Code     string
}

func (p PendingRegistration) ChallengeCode() string { return p.Code }

// PendingReset is an outstanding password-reset code, keyed by email.
type PendingReset struct {
	Code string
}

func (p PendingReset) ChallengeCode() string { return p.Code }
