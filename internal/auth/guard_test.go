package auth_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront-auth/internal/auth"
	"github.com/spec-kit/storefront-auth/internal/domain"
	apperrors "github.com/spec-kit/storefront-auth/pkg/util"
)

// guardApp mounts the guard check behind a route and maps rejections to the
// 401 body the API contract promises.
func guardApp(check func(*fiber.Ctx) (*domain.Claims, error)) *fiber.App {
	app := fiber.New()
	app.Get("/guarded", func(c *fiber.Ctx) error {
		claims, err := check(c)
		if err != nil {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": domainErr.Message})
		}
		return c.JSON(fiber.Map{"role": claims.Role})
	})
	return app
}

func signAccess(t *testing.T, codec *auth.Codec, role domain.Role) string {
	t.Helper()
	token, _, err := codec.SignAccess("user-1", "jane@shop.test", role)
	require.NoError(t, err)
	return token
}

func TestEnsureAdminAcceptsAdminRoles(t *testing.T) {
	codec := newTestCodec()
	guard := auth.NewGuard(codec, zap.NewNop())
	app := guardApp(guard.EnsureAdmin)

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin} {
		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		req.Header.Set("Authorization", "Bearer "+signAccess(t, codec, role))

		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode, "role %s", role)
	}
}

func TestEnsureAdminRejectsUser(t *testing.T) {
	codec := newTestCodec()
	guard := auth.NewGuard(codec, zap.NewNop())
	app := guardApp(guard.EnsureAdmin)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+signAccess(t, codec, domain.RoleUser))

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	require.JSONEq(t, `{"error":"Unauthorized"}`, string(body))
}

func TestEnsureAdminIgnoresCookies(t *testing.T) {
	codec := newTestCodec()
	guard := auth.NewGuard(codec, zap.NewNop())
	app := guardApp(guard.EnsureAdmin)

	// A perfectly valid admin token in the cookie is not enough: the guard
	// accepts the Authorization header only.
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: signAccess(t, codec, domain.RoleAdmin)})

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEnsureAdminRejectsMissingAndMalformedHeaders(t *testing.T) {
	codec := newTestCodec()
	guard := auth.NewGuard(codec, zap.NewNop())
	app := guardApp(guard.EnsureAdmin)

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer not-a-token"} {
		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "header %q", header)
	}
}

func TestEnsureAdminRejectsExpiredToken(t *testing.T) {
	expiredCodec := auth.NewCodec(testAccessSecret, testRefreshSecret, -time.Minute, time.Hour)
	guard := auth.NewGuard(newTestCodec(), zap.NewNop())
	app := guardApp(guard.EnsureAdmin)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+signAccess(t, expiredCodec, domain.RoleAdmin))

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEnsureSuperAdminRejectsAdmin(t *testing.T) {
	codec := newTestCodec()
	guard := auth.NewGuard(codec, zap.NewNop())
	app := guardApp(guard.EnsureSuperAdmin)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+signAccess(t, codec, domain.RoleAdmin))

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCurrentAdminAcceptsSuperAdmin(t *testing.T) {
	// SUPER_ADMIN implies ADMIN for self-scoped admin operations.
	codec := newTestCodec()
	guard := auth.NewGuard(codec, zap.NewNop())
	app := guardApp(guard.CurrentAdmin)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set("Authorization", "Bearer "+signAccess(t, codec, domain.RoleSuperAdmin))

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
