package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront-auth/internal/domain"
	apperrors "github.com/spec-kit/storefront-auth/pkg/util"
)

// Guard internal causes. All of them map to the same generic Unauthorized
// response; they exist so logs can tell a missing header from a role mismatch.
var (
	errNoAuthHeader     = errors.New("missing authorization header")
	errInsufficientRole = errors.New("insufficient role")
)

// Guard enforces role membership on privileged routes. Unlike the
// Authenticator it accepts ONLY the Authorization header, never cookies, and
// it fails hard: every rejection is a thrown Unauthorized for the error
// middleware to map to 401.
type Guard struct {
	codec  *Codec
	logger *zap.Logger
}

// NewGuard constructs a Guard.
func NewGuard(codec *Codec, logger *zap.Logger) *Guard {
	return &Guard{codec: codec, logger: logger}
}

// EnsureAdmin verifies the bearer credential and requires ADMIN or SUPER_ADMIN.
func (g *Guard) EnsureAdmin(c *fiber.Ctx) (*domain.Claims, error) {
	return g.ensure(c, domain.RoleAdmin, domain.RoleSuperAdmin)
}

// EnsureSuperAdmin verifies the bearer credential and requires SUPER_ADMIN.
func (g *Guard) EnsureSuperAdmin(c *fiber.Ctx) (*domain.Claims, error) {
	return g.ensure(c, domain.RoleSuperAdmin)
}

// CurrentAdmin resolves the calling administrator for self-scoped operations.
// SUPER_ADMIN implies ADMIN here, so both roles pass.
func (g *Guard) CurrentAdmin(c *fiber.Ctx) (*domain.Claims, error) {
	return g.ensure(c, domain.RoleAdmin, domain.RoleSuperAdmin)
}

func (g *Guard) ensure(c *fiber.Ctx, allowed ...domain.Role) (*domain.Claims, error) {
	token := bearerToken(c.Get(fiber.HeaderAuthorization))
	if token == "" {
		return nil, g.reject(c, errNoAuthHeader)
	}

	claims, err := g.codec.Verify(token, KeyAccess)
	if err != nil {
		return nil, g.reject(c, err)
	}

	for _, role := range allowed {
		if claims.Role == role {
			return claims, nil
		}
	}
	return nil, g.reject(c, errInsufficientRole)
}

func (g *Guard) reject(c *fiber.Ctx, cause error) error {
	if g.logger != nil {
		g.logger.Warn("admin guard rejected request",
			zap.String("path", c.Path()),
			zap.String("method", c.Method()),
			zap.Error(cause),
		)
	}
	return apperrors.NewUnauthorized(cause)
}
