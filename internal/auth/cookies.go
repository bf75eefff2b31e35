package auth

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-auth/internal/config"
	"github.com/spec-kit/storefront-auth/internal/domain"
)

// CookieWriter is the single place session cookies are written or cleared.
// Invariant: accessToken, refreshToken and the plaintext user cookie always
// change together, so the role the gate reads can never drift from the role
// inside the signed token.
type CookieWriter struct {
	maxAge time.Duration
	secure bool
}

// NewCookieWriter builds the writer from cookie configuration.
func NewCookieWriter(cfg config.CookieConfig) *CookieWriter {
	return &CookieWriter{maxAge: cfg.MaxAge(), secure: cfg.Secure}
}

// SetSession writes the full session cookie set for an issued pair.
func (w *CookieWriter) SetSession(c *fiber.Ctx, pair *domain.CredentialPair, profile domain.Profile) error {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	expires := time.Now().Add(w.maxAge)
	c.Cookie(w.cookie(CookieAccessToken, pair.AccessToken, expires))
	c.Cookie(w.cookie(CookieRefreshToken, pair.RefreshToken, expires))
	c.Cookie(w.cookie(CookieUser, string(profileJSON), expires))
	return nil
}

// SetAccessToken replaces only the access token cookie after a refresh
// exchange. The refresh token is not rotated, and the profile is unchanged.
func (w *CookieWriter) SetAccessToken(c *fiber.Ctx, token string) {
	c.Cookie(w.cookie(CookieAccessToken, token, time.Now().Add(w.maxAge)))
}

// Clear removes the full session cookie set.
func (w *CookieWriter) Clear(c *fiber.Ctx) {
	expired := time.Now().Add(-time.Hour)
	for _, name := range []string{CookieAccessToken, CookieRefreshToken, CookieUser} {
		c.Cookie(w.cookie(name, "", expired))
	}
}

func (w *CookieWriter) cookie(name, value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   w.secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
}
