package dto

import (
	"time"

	"github.com/spec-kit/storefront-auth/internal/domain"
)

// ChangeRoleRequest rewrites a user's role.
type ChangeRoleRequest struct {
	Role domain.Role `json:"role"`
}

// UserSummary is the back-office listing projection.
type UserSummary struct {
	ID            string            `json:"id"`
	FirstName     string            `json:"fname"`
	LastName      string            `json:"lname"`
	Email         string            `json:"email"`
	Role          domain.Role       `json:"role"`
	Status        domain.UserStatus `json:"status"`
	EmailVerified bool              `json:"emailVerified"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// SummaryOf maps a user onto its listing projection.
func SummaryOf(u *domain.User) UserSummary {
	return UserSummary{
		ID:            u.ID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		Role:          u.Role,
		Status:        u.Status,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}
