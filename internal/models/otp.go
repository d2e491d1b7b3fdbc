package models

import "time"

type OTP struct {
	Email     string    `json:"email" db:"email"`
	Code      string    `json:"-" db:"otp_code"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Expired reports whether the code can no longer be used at now.
func (o *OTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
