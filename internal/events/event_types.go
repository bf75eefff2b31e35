package events

import (
	"time"

	"github.com/spec-kit/storefront-auth/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered   EventType = "user_registered"
	EventUserLoggedIn     EventType = "user_logged_in"
	EventSessionRefreshed EventType = "session_refreshed"
	EventSessionRevoked   EventType = "session_revoked"
	EventOTPRequested     EventType = "otp_requested"
	EventOAuthLinked      EventType = "oauth_linked"
	EventRoleChanged      EventType = "role_changed"
)

// Event represents an auth event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Email     string      `json:"email,omitempty"`
	Role      domain.Role `json:"role,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// OTPRequestedPayload payload.
type OTPRequestedPayload struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// OAuthLinkedPayload payload.
type OAuthLinkedPayload struct {
	Provider string `json:"provider"`
	NewUser  bool   `json:"new_user"`
}

// RoleChangedPayload payload.
type RoleChangedPayload struct {
	OldRole domain.Role `json:"old_role"`
	NewRole domain.Role `json:"new_role"`
	ActorID string      `json:"actor_id"`
}
