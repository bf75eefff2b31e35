package client

import (
	"sync"

	"github.com/spec-kit/storefront-auth/internal/domain"
)

// Session is the client-side copy of an issued credential pair. It is built
// once after sign-in, passed explicitly to whatever needs it, and closed on
// sign-out. No package-level state.
type Session struct {
	mu      sync.RWMutex
	pair    domain.CredentialPair
	profile domain.Profile
	closed  bool
}

// NewSession constructs the session from an issuance response.
func NewSession(pair domain.CredentialPair, profile domain.Profile) *Session {
	return &Session{pair: pair, profile: profile}
}

// AccessToken returns the current access token.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair.AccessToken
}

// RefreshToken returns the refresh token. Stable across refresh exchanges.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair.RefreshToken
}

// Profile returns the signed-in profile.
func (s *Session) Profile() domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// SetAccessToken swaps in a freshly exchanged access token.
func (s *Session) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pair.AccessToken = token
}

// Closed reports whether the session has been torn down.
func (s *Session) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Close wipes the tokens. Called on sign-out; a closed session never
// resurrects.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.pair = domain.CredentialPair{}
	s.profile = domain.Profile{}
}
