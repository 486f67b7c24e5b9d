package domain

import "time"

// OTP is the single live verification code for an email address.
// PK: email. ExpiresAt is a Unix timestamp used as DynamoDB TTL; it is
// omitted when codes do not expire.
type OTP struct {
	OTPID     string    `json:"id" dynamodbav:"otp_id"`
	Email     string    `json:"email" dynamodbav:"email"`
	Code      string    `json:"-" dynamodbav:"code"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	ExpiresAt int64     `json:"expires_at,omitempty" dynamodbav:"expires_at,omitempty"`
}

// Expired reports whether the code is past its expiry at now.
func (o *OTP) Expired(now time.Time) bool {
	return o.ExpiresAt != 0 && now.Unix() >= o.ExpiresAt
}
