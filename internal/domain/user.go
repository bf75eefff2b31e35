package domain

import "time"

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusPending   UserStatus = "PENDING_VERIFICATION"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the domain model for a storefront account. Customers and back-office
// operators share the same record; Role decides what they can reach.
type User struct {
	ID            string
	FirstName     string
	LastName      string
	Email         string
	PasswordHash  string
	Phone         string
	Avatar        string
	Role          Role
	Status        UserStatus
	EmailVerified bool
	OAuthProvider string
	OAuthID       string
	RefreshToken  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Profile is the minimal projection handed to clients and serialized into the
// `user` cookie. Never carries the password hash or the stored refresh token.
type Profile struct {
	ID        string `json:"id"`
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	Avatar    string `json:"avatar,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// ProfileOf projects a user onto its client-visible fields.
func ProfileOf(u *User) Profile {
	return Profile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		Avatar:    u.Avatar,
		Phone:     u.Phone,
	}
}
