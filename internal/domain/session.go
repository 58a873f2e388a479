package domain

import "time"

// SessionClaims are the facts the route gate acts on. They travel inside the
// signed token and are only as fresh as the last issue or refresh.
type SessionClaims struct {
	UFEmailVerified  bool `json:"ufEmailVerified" dynamodbav:"uf_email_verified"`
	ProfileCompleted bool `json:"profileCompleted" dynamodbav:"profile_completed"`
}

type Session struct {
	SessionID string        `json:"id" dynamodbav:"session_id"`
	UserID    string        `json:"user_id" dynamodbav:"user_id"`
	Claims    SessionClaims `json:"claims" dynamodbav:"claims"`
	Enable    bool          `json:"enable" dynamodbav:"enable"`
	ExpiresAt int64         `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
	CreatedAt time.Time     `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time     `json:"updated" dynamodbav:"updated_at"`
	User      *User         `json:"user,omitempty" dynamodbav:"-"`
}
