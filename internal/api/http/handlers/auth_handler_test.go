package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/storefront-auth/internal/api/http"
	"github.com/spec-kit/storefront-auth/internal/api/http/handlers"
	"github.com/spec-kit/storefront-auth/internal/auth"
	"github.com/spec-kit/storefront-auth/internal/config"
	"github.com/spec-kit/storefront-auth/internal/domain"
	"github.com/spec-kit/storefront-auth/internal/events"
	"github.com/spec-kit/storefront-auth/internal/observability"
	"github.com/spec-kit/storefront-auth/internal/repository"
	"github.com/spec-kit/storefront-auth/internal/repository/repofake"
	"github.com/spec-kit/storefront-auth/internal/service"
)

type noopOTPRepo struct{}

func (noopOTPRepo) Put(context.Context, string, string, time.Duration) error { return nil }
func (noopOTPRepo) Consume(context.Context, string) (string, error) {
	return "", repository.ErrOTPNotFound
}

type fixture struct {
	app   *fiber.App
	users *repofake.FakeUserRepo
	codec *auth.Codec
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := config.Config{}
	cfg.Auth.AccessSecret = "access-secret"
	cfg.Auth.RefreshSecret = "refresh-secret"
	cfg.Auth.AccessTokenTTLHours = 1
	cfg.Auth.RefreshTokenTTLDays = 7
	cfg.Auth.OTPTTLMinutes = 10
	cfg.Auth.BcryptCost = 4
	cfg.Cookie.MaxAgeDays = 7

	users := repofake.NewFakeUserRepo()
	dispatcher := events.NewInMemoryDispatcher()
	codec := auth.NewCodec(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret, cfg.Auth.AccessTTL(), cfg.Auth.RefreshTTL())
	sessions := service.NewSessionService(users, codec, dispatcher, zap.NewNop())
	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:   users,
		OTPRepo:    noopOTPRepo{},
		Sessions:   sessions,
		Dispatcher: dispatcher,
	})

	cookies := auth.NewCookieWriter(cfg.Cookie)
	authenticator := auth.NewAuthenticator(codec)
	guard := auth.NewGuard(codec, zap.NewNop())

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler(nil, nil),
		Auth:          handlers.NewAuthHandler(authService, sessions, cookies, authenticator),
		Admin:         handlers.NewAdminHandler(guard, users, authService),
		Profile:       handlers.NewProfileHandler(users),
		Gate:          auth.NewGate(cookies, zap.NewNop()),
		Authenticator: authenticator,
	})

	return &fixture{app: app, users: users, codec: codec}
}

func (f *fixture) seedWithRole(t *testing.T, email string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword("s3cret-pass", 4)
	require.NoError(t, err)
	return f.users.Seed(&domain.User{
		FirstName:    "Seeded",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.UserStatusActive,
	})
}

func (f *fixture) bearerFor(t *testing.T, user *domain.User) string {
	t.Helper()
	token, _, err := f.codec.SignAccess(user.ID, user.Email, user.Role)
	require.NoError(t, err)
	return "Bearer " + token
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any, mutate ...func(*http.Request)) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, m := range mutate {
		m(req)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func cookieByName(resp *http.Response, name string) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestSignUpSetsConsistentCookies(t *testing.T) {
	f := newFixture(t)

	resp := postJSON(t, f.app, "/api/auth/sign-up", map[string]string{
		"fname": "Jane", "lname": "Doe", "email": "jane@shop.test", "password": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	accessCookie := cookieByName(resp, "accessToken")
	refreshCookie := cookieByName(resp, "refreshToken")
	userCookie := cookieByName(resp, "user")
	require.NotNil(t, accessCookie)
	require.NotNil(t, refreshCookie)
	require.NotNil(t, userCookie)
	require.True(t, accessCookie.HttpOnly)

	// The plaintext user cookie's role matches the role inside the signed
	// access token.
	claims, err := f.codec.Verify(accessCookie.Value, auth.KeyAccess)
	require.NoError(t, err)

	var profile domain.Profile
	require.NoError(t, json.Unmarshal([]byte(userCookie.Value), &profile))
	require.Equal(t, claims.Role, profile.Role)
	require.Equal(t, claims.UserID, profile.ID)
}

func TestSignInWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.seedWithRole(t, "jane@shop.test", domain.RoleUser)

	resp := postJSON(t, f.app, "/api/auth/sign-in", map[string]string{
		"email": "jane@shop.test", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	require.JSONEq(t, `{"error":"Unauthorized"}`, string(body))
}

func TestRefreshRenewsAccessTokenOnly(t *testing.T) {
	f := newFixture(t)
	f.seedWithRole(t, "jane@shop.test", domain.RoleUser)

	login := postJSON(t, f.app, "/api/auth/sign-in", map[string]string{
		"email": "jane@shop.test", "password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, login.StatusCode)
	refreshCookie := cookieByName(login, "refreshToken")
	require.NotNil(t, refreshCookie)

	resp := postJSON(t, f.app, "/api/auth/refresh", map[string]string{}, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "refreshToken", Value: refreshCookie.Value})
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))

	claims, err := f.codec.Verify(out.AccessToken, auth.KeyAccess)
	require.NoError(t, err)
	require.Equal(t, "jane@shop.test", claims.Email)

	// Only the access token cookie is rewritten.
	require.NotNil(t, cookieByName(resp, "accessToken"))
	require.Nil(t, cookieByName(resp, "refreshToken"))
}

func TestRefreshRejectsSupersededToken(t *testing.T) {
	f := newFixture(t)
	f.seedWithRole(t, "jane@shop.test", domain.RoleUser)

	signIn := func() string {
		resp := postJSON(t, f.app, "/api/auth/sign-in", map[string]string{
			"email": "jane@shop.test", "password": "s3cret-pass",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		cookie := cookieByName(resp, "refreshToken")
		require.NotNil(t, cookie)
		return cookie.Value
	}

	oldRefresh := signIn()
	newRefresh := signIn() // second login supersedes the first session

	resp := postJSON(t, f.app, "/api/auth/refresh", map[string]string{"refreshToken": oldRefresh})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, f.app, "/api/auth/refresh", map[string]string{"refreshToken": newRefresh})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSignOutClearsSession(t *testing.T) {
	f := newFixture(t)
	f.seedWithRole(t, "jane@shop.test", domain.RoleUser)

	login := postJSON(t, f.app, "/api/auth/sign-in", map[string]string{
		"email": "jane@shop.test", "password": "s3cret-pass",
	})
	accessCookie := cookieByName(login, "accessToken")
	refreshCookie := cookieByName(login, "refreshToken")

	resp := postJSON(t, f.app, "/api/auth/sign-out", map[string]string{}, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "accessToken", Value: accessCookie.Value})
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The stored refresh token is gone, so the exchange fails.
	refresh := postJSON(t, f.app, "/api/auth/refresh", map[string]string{"refreshToken": refreshCookie.Value})
	require.Equal(t, http.StatusUnauthorized, refresh.StatusCode)
}

func TestProfileUnauthorizedBodyShape(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	require.JSONEq(t, `{"success":false,"message":"Unauthorized"}`, string(body))
}

func TestProfileWithCookie(t *testing.T) {
	f := newFixture(t)
	user := f.seedWithRole(t, "jane@shop.test", domain.RoleUser)

	token, _, err := f.codec.SignAccess(user.ID, user.Email, user.Role)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
