package domain

import "time"

// User is the subset of the marketplace account the auth core owns.
type User struct {
	UserID           string    `json:"id" dynamodbav:"user_id"`
	Email            string    `json:"email" dynamodbav:"email"`
	FirstName        string    `json:"first_name" dynamodbav:"first_name"`
	LastName         string    `json:"last_name" dynamodbav:"last_name"`
	Phone            *string   `json:"phone" dynamodbav:"phone"`
	UFEmailVerified  bool      `json:"uf_email_verified" dynamodbav:"uf_email_verified"`
	ProfileCompleted bool      `json:"profile_completed" dynamodbav:"profile_completed"`
	AuthProvider     string    `json:"auth_provider,omitempty" dynamodbav:"auth_provider"` // "otp" | "google"
	GoogleSub        string    `json:"-" dynamodbav:"google_sub"`
	CreatedAt        time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time `json:"updated" dynamodbav:"updated_at"`
}

// Claims derives the gate claims from the stored account.
func (u *User) Claims() SessionClaims {
	return SessionClaims{UFEmailVerified: u.UFEmailVerified, ProfileCompleted: u.ProfileCompleted}
}

type CompleteProfileRequest struct {
	FirstName string  `json:"first_name" validate:"required,max=64"`
	LastName  string  `json:"last_name" validate:"required,max=64"`
	Phone     *string `json:"phone" validate:"omitempty,e164"`
}
