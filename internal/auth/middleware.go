package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-auth/internal/domain"
)

// Cookie names used by the session transport. The `user` cookie carries the
// plaintext profile the edge gate routes on; the signed tokens are what the
// guards actually trust.
const (
	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"
	CookieUser         = "user"
)

const claimsKey = "auth_claims"

// Authenticator resolves the caller's identity from a request. It prefers the
// same-site accessToken cookie and falls back to the Authorization header.
type Authenticator struct {
	codec *Codec
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(codec *Codec) *Authenticator {
	return &Authenticator{codec: codec}
}

// Authenticate returns the verified claims for the request, or nil when no
// usable credential is present. It never returns an error: missing token, bad
// signature, expiry and malformed claims all collapse to "no identity".
func (a *Authenticator) Authenticate(c *fiber.Ctx) *domain.Claims {
	token := c.Cookies(CookieAccessToken)
	if token == "" {
		token = bearerToken(c.Get(fiber.HeaderAuthorization))
	}
	if token == "" {
		return nil
	}

	claims, err := a.codec.Verify(token, KeyAccess)
	if err != nil {
		return nil
	}
	return claims
}

// Handle is the middleware form of Authenticate. It stashes claims in locals
// when present and always continues; route handlers decide whether anonymous
// access is acceptable.
func (a *Authenticator) Handle(c *fiber.Ctx) error {
	if claims := a.Authenticate(c); claims != nil {
		c.Locals(claimsKey, claims)
	}
	return c.Next()
}

// ClaimsFromContext retrieves the authenticated identity, if any.
func ClaimsFromContext(c *fiber.Ctx) (*domain.Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*domain.Claims)
	return claims, ok
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
