package domain

import "time"

// OTPRecord is the single active verification code for an email.
// CodeHash holds bcrypt(code); the plain code only leaves the gatekeeper for delivery.
type OTPRecord struct {
	Email     string    `json:"email"`
	CodeHash  string    `json:"code_hash"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the record is no longer usable at now.
func (r *OTPRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
