package domain

import "time"

// OneTimeCode is the live passcode for an email address.
// PK: email (lowercased). A new issuance overwrites the item, so at most one code exists per email.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type OneTimeCode struct {
	Email     string    `json:"email" dynamodbav:"email"`
	CodeID    string    `json:"-" dynamodbav:"code_id"`
	CodeHash  string    `json:"-" dynamodbav:"code_hash"`
	Attempts  int       `json:"attempts" dynamodbav:"attempts"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}

// Expired reports whether now is past the code's expiry.
func (c *OneTimeCode) Expired(now time.Time) bool {
	return now.After(time.Unix(c.ExpiresAt, 0))
}
