package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-auth/internal/api/dto"
	"github.com/spec-kit/storefront-auth/internal/auth"
	"github.com/spec-kit/storefront-auth/internal/domain"
	"github.com/spec-kit/storefront-auth/internal/repository"
	"github.com/spec-kit/storefront-auth/internal/service"
	apperrors "github.com/spec-kit/storefront-auth/pkg/util"
)

// AdminHandler exposes back-office endpoints. Every handler re-verifies the
// bearer credential through the Guard; the edge gate's routing decisions are
// never trusted here.
type AdminHandler struct {
	guard *auth.Guard
	users repository.UserRepository
	auth  *service.AuthService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(guard *auth.Guard, users repository.UserRepository, authService *service.AuthService) *AdminHandler {
	return &AdminHandler{guard: guard, users: users, auth: authService}
}

// ListUsers handles GET /api/admin/users. ADMIN or SUPER_ADMIN.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	if _, err := h.guard.EnsureAdmin(c); err != nil {
		return err
	}

	users, err := h.users.ListByRoles(c.UserContext(), domain.RoleUser)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": summaries(users)})
}

// ListAdmins handles GET /api/admin/all-admins. SUPER_ADMIN only.
func (h *AdminHandler) ListAdmins(c *fiber.Ctx) error {
	if _, err := h.guard.EnsureSuperAdmin(c); err != nil {
		return err
	}

	admins, err := h.users.ListByRoles(c.UserContext(), domain.RoleAdmin, domain.RoleSuperAdmin)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": summaries(admins)})
}

// Me handles GET /api/admin/me: the calling administrator's own record.
func (h *AdminHandler) Me(c *fiber.Ctx) error {
	claims, err := h.guard.CurrentAdmin(c)
	if err != nil {
		return err
	}

	user, err := h.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.SummaryOf(user)})
}

// ChangeRole handles PATCH /api/admin/users/:id/role. SUPER_ADMIN only.
func (h *AdminHandler) ChangeRole(c *fiber.Ctx) error {
	claims, err := h.guard.EnsureSuperAdmin(c)
	if err != nil {
		return err
	}

	var req dto.ChangeRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !req.Role.Valid() {
		return apperrors.NewValidationError("unknown role", map[string]any{"role": req.Role})
	}

	user, err := h.auth.ChangeRole(c.UserContext(), claims.UserID, c.Params("id"), req.Role)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.SummaryOf(user)})
}

func summaries(users []*domain.User) []dto.UserSummary {
	out := make([]dto.UserSummary, 0, len(users))
	for _, user := range users {
		out = append(out, dto.SummaryOf(user))
	}
	return out
}
