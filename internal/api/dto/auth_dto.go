package dto

import (
	"time"

	"github.com/spec-kit/storefront-auth/internal/domain"
)

// SignUpRequest payload for new accounts.
type SignUpRequest struct {
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// SignInRequest payload for login.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OTPRequest asks for a verification code.
type OTPRequest struct {
	Email string `json:"email"`
}

// OTPVerifyRequest redeems a verification code.
type OTPVerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// OAuthLinkRequest carries a provider-verified identity.
type OAuthLinkRequest struct {
	Provider   string `json:"provider"`
	ProviderID string `json:"providerId"`
	Email      string `json:"email"`
	FirstName  string `json:"fname"`
	LastName   string `json:"lname"`
	Avatar     string `json:"avatar"`
}

// RefreshRequest carries the refresh token for clients that do not use the
// cookie transport.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// SessionResponse is the standard body for every issuing endpoint. Tokens are
// also set as cookies; the body serves header-based API clients.
type SessionResponse struct {
	User domain.Profile        `json:"user"`
	Auth domain.CredentialPair `json:"auth"`
}

// RefreshResponse returns the freshly minted access token.
type RefreshResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
