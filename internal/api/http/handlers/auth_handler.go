package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-auth/internal/api/dto"
	"github.com/spec-kit/storefront-auth/internal/auth"
	"github.com/spec-kit/storefront-auth/internal/domain"
	"github.com/spec-kit/storefront-auth/internal/service"
	apperrors "github.com/spec-kit/storefront-auth/pkg/util"
)

// AuthHandler exposes the session endpoints: sign-up, sign-in, OTP, OAuth
// linkage, refresh and sign-out. Every issuing endpoint writes the session
// cookie set and returns the same body for header-based clients.
type AuthHandler struct {
	auth          *service.AuthService
	sessions      *service.SessionService
	cookies       *auth.CookieWriter
	authenticator *auth.Authenticator
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, sessions *service.SessionService, cookies *auth.CookieWriter, authenticator *auth.Authenticator) *AuthHandler {
	return &AuthHandler{auth: authService, sessions: sessions, cookies: cookies, authenticator: authenticator}
}

// SignUp handles POST /api/auth/sign-up.
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" || req.FirstName == "" {
		return apperrors.NewValidationError("fname, email, password required", nil)
	}

	_, pair, profile, err := h.auth.Register(c.UserContext(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return apperrors.NewConflict(err.Error(), nil)
		}
		return err
	}

	return h.respondSession(c, http.StatusCreated, pair, profile)
}

// SignIn handles POST /api/auth/sign-in.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	_, pair, profile, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return apperrors.NewUnauthorized(err)
		}
		return err
	}

	return h.respondSession(c, http.StatusOK, pair, profile)
}

// RequestOTP handles POST /api/auth/otp/request. The response is the same
// whether or not the email exists, to avoid account enumeration.
func (h *AuthHandler) RequestOTP(c *fiber.Ctx) error {
	var req dto.OTPRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return apperrors.NewValidationError("email required", nil)
	}

	_ = h.auth.RequestOTP(c.UserContext(), req.Email)
	return c.JSON(fiber.Map{"success": true})
}

// VerifyOTP handles POST /api/auth/otp/verify.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req dto.OTPVerifyRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" || req.Code == "" {
		return apperrors.NewValidationError("email and code required", nil)
	}

	_, pair, profile, err := h.auth.VerifyOTP(c.UserContext(), req.Email, req.Code)
	if err != nil {
		if errors.Is(err, service.ErrOTPMismatch) {
			return apperrors.NewUnauthorized(err)
		}
		return err
	}

	return h.respondSession(c, http.StatusOK, pair, profile)
}

// LinkOAuth handles POST /api/auth/oauth/link. The provider round trip is the
// caller's job; this endpoint trusts the verified identity it receives.
func (h *AuthHandler) LinkOAuth(c *fiber.Ctx) error {
	var req dto.OAuthLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Provider == "" || req.ProviderID == "" || req.Email == "" {
		return apperrors.NewValidationError("provider, providerId, email required", nil)
	}

	_, pair, profile, err := h.auth.LinkOAuth(c.UserContext(), req.Provider, req.ProviderID, req.Email, req.FirstName, req.LastName, req.Avatar)
	if err != nil {
		return err
	}

	return h.respondSession(c, http.StatusOK, pair, profile)
}

// Refresh handles POST /api/auth/refresh. The refresh token comes from the
// cookie when present, otherwise the body. Only the access token is renewed.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	refreshToken := c.Cookies(auth.CookieRefreshToken)
	if refreshToken == "" {
		var req dto.RefreshRequest
		if err := c.BodyParser(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}
	if refreshToken == "" {
		return apperrors.NewUnauthorized(errors.New("no refresh token"))
	}

	accessToken, exp, _, err := h.sessions.Refresh(c.UserContext(), refreshToken)
	if err != nil {
		if errors.Is(err, service.ErrRefreshRejected) {
			return apperrors.NewUnauthorized(err)
		}
		return err
	}

	h.cookies.SetAccessToken(c, accessToken)
	return c.JSON(dto.RefreshResponse{AccessToken: accessToken, ExpiresAt: exp})
}

// SignOut handles POST /api/auth/sign-out. Clears the stored refresh token
// when the caller can be identified, and always clears the cookies.
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	if claims := h.authenticator.Authenticate(c); claims != nil {
		if err := h.sessions.Logout(c.UserContext(), claims.UserID); err != nil {
			return err
		}
	}
	h.cookies.Clear(c)
	return c.JSON(fiber.Map{"success": true})
}

func (h *AuthHandler) respondSession(c *fiber.Ctx, status int, pair *domain.CredentialPair, profile domain.Profile) error {
	if err := h.cookies.SetSession(c, pair, profile); err != nil {
		return err
	}
	return c.Status(status).JSON(fiber.Map{"data": dto.SessionResponse{User: profile, Auth: *pair}})
}
