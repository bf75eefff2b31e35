package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/storefront-auth/internal/domain"
)

// KeyKind selects which secret a token is signed and verified with.
type KeyKind int

const (
	KeyAccess KeyKind = iota
	KeyRefresh
)

// Sentinel verification outcomes. Guards collapse both into the same
// client-facing failure; callers that need to decide whether a refresh is
// worth attempting may still tell them apart.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Codec signs and verifies the access and refresh JWTs. Pure: secret, payload
// and clock fully determine the output.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewCodec builds a codec with independent secrets per key kind.
func NewCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Codec {
	if accessTTL <= 0 {
		accessTTL = 8760 * time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// Claims describes the JWT payload.
type Claims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// SignAccess mints an access token for the user.
func (c *Codec) SignAccess(userID, email string, role domain.Role) (string, time.Time, error) {
	return c.sign(userID, email, role, c.accessSecret, c.accessTTL)
}

// SignRefresh mints a refresh token for the user.
func (c *Codec) SignRefresh(userID, email string, role domain.Role) (string, time.Time, error) {
	return c.sign(userID, email, role, c.refreshSecret, c.refreshTTL)
}

func (c *Codec) sign(userID, email string, role domain.Role, secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			// jti keeps tokens minted within the same second distinct, so
			// re-login always supersedes the stored refresh token.
			ID:        uuid.NewString(),
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Verify validates a token against the secret for kind and returns its claims.
// Fails closed: wrong signature, malformed payload and expiry all reject.
func (c *Codec) Verify(tokenStr string, kind KeyKind) (*domain.Claims, error) {
	secret := c.accessSecret
	if kind == KeyRefresh {
		secret = c.refreshSecret
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	decoded := &domain.Claims{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	}
	if claims.IssuedAt != nil {
		decoded.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		decoded.ExpiresAt = claims.ExpiresAt.Time
	}
	return decoded, nil
}

// PeekExpiry reads a token's exp claim without verifying the signature. Meant
// for the client-side keepalive inspecting its own local copy; never use the
// result for authorization.
func PeekExpiry(tokenStr string) (time.Time, error) {
	parser := jwt.NewParser()
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return time.Time{}, ErrTokenInvalid
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrTokenInvalid
	}
	return claims.ExpiresAt.Time, nil
}
