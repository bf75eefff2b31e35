package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-auth/internal/auth"
	"github.com/spec-kit/storefront-auth/internal/domain"
	"github.com/spec-kit/storefront-auth/internal/repository"
	apperrors "github.com/spec-kit/storefront-auth/pkg/util"
)

// ProfileHandler serves the signed-in customer's own profile. It runs behind
// the Authenticator middleware, which never rejects a request itself; absent
// identity is handled here with the {"success":false} body shape.
type ProfileHandler struct {
	users repository.UserRepository
}

// NewProfileHandler constructs handler.
func NewProfileHandler(users repository.UserRepository) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// Me handles GET /api/profile.
func (h *ProfileHandler) Me(c *fiber.Ctx) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized",
		})
	}

	user, err := h.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"success": true, "data": domain.ProfileOf(user)})
}
