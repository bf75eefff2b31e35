package auth

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront-auth/internal/domain"
)

// Route targets the gate redirects to.
const (
	signInPath = "/auth/sign-in"
	adminHome  = "/admin"
	siteRoot   = "/"
)

// gateExemptPrefixes are passed through with no identity check at all:
// API routes carry their own guards, static assets and the auth pages must
// stay reachable for everyone.
var gateExemptPrefixes = []string{
	"/api",
	"/static",
	"/auth/sign-in",
	"/auth/sign-up",
	"/verify-email",
}

// CookieView is the slice of the request's cookies the gate reads. The gate
// never verifies signatures; it routes on the plaintext user cookie and only
// checks the access token for presence.
type CookieView struct {
	AccessToken string
	UserJSON    string
}

// Outcome describes what the gate decided for a request.
type Outcome int

const (
	OutcomeAllow Outcome = iota
	OutcomeRedirect
	OutcomeClearAndRedirect
)

// Decision is the gate's verdict: pass the request on, redirect it, or clear
// the session cookies and redirect.
type Decision struct {
	Outcome Outcome
	Target  string
}

var (
	allow = Decision{Outcome: OutcomeAllow}
)

func redirect(target string) Decision {
	return Decision{Outcome: OutcomeRedirect, Target: target}
}

func clearAndRedirect(target string) Decision {
	return Decision{Outcome: OutcomeClearAndRedirect, Target: target}
}

// Decide classifies a request path against the session cookies. Rules apply
// in strict order, first match wins. This is a routing convenience layer over
// unverified cookies; the Guard at the API boundary is the enforcement point.
func Decide(path string, cookies CookieView) Decision {
	if path == "/favicon.ico" {
		return allow
	}
	for _, prefix := range gateExemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return allow
		}
	}

	var profile domain.Profile
	haveProfile := false
	if cookies.UserJSON != "" {
		if err := json.Unmarshal([]byte(cookies.UserJSON), &profile); err != nil {
			// A user cookie that will not parse is inconsistent session
			// state, worse than absence: wipe it and start over.
			return clearAndRedirect(signInPath)
		}
		haveProfile = true
	}

	if cookies.AccessToken == "" || !haveProfile || profile.Role == "" {
		return decideGuest(path)
	}

	switch profile.Role {
	case domain.RoleSuperAdmin:
		if !strings.HasPrefix(path, adminHome) {
			return redirect(adminHome)
		}
		return allow
	case domain.RoleAdmin:
		if path == "/admin/all-admins" {
			return redirect(adminHome)
		}
		if !strings.HasPrefix(path, adminHome) {
			return redirect(adminHome)
		}
		return allow
	case domain.RoleUser:
		if strings.HasPrefix(path, adminHome) {
			return redirect(siteRoot)
		}
		return allow
	default:
		// Unknown role string: deny. A corrupted or stale role must not
		// fall through to public browsing with session cookies intact.
		return clearAndRedirect(signInPath)
	}
}

func decideGuest(path string) Decision {
	for _, prefix := range []string{"/admin", "/profile", "/orders"} {
		if strings.HasPrefix(path, prefix) {
			return redirect(signInPath)
		}
	}
	return allow
}

// Gate is the edge middleware applying Decide to every request.
type Gate struct {
	cookies *CookieWriter
	logger  *zap.Logger
}

// NewGate constructs the gate middleware. The CookieWriter is shared with the
// session handlers so cookie attributes stay in one place.
func NewGate(cookies *CookieWriter, logger *zap.Logger) *Gate {
	return &Gate{cookies: cookies, logger: logger}
}

// Handle evaluates the gate for the request and applies the decision.
func (g *Gate) Handle(c *fiber.Ctx) error {
	decision := Decide(c.Path(), CookieView{
		AccessToken: c.Cookies(CookieAccessToken),
		UserJSON:    c.Cookies(CookieUser),
	})

	switch decision.Outcome {
	case OutcomeRedirect:
		return c.Redirect(decision.Target, fiber.StatusFound)
	case OutcomeClearAndRedirect:
		if g.logger != nil {
			g.logger.Warn("clearing corrupted session cookies", zap.String("path", c.Path()))
		}
		if g.cookies != nil {
			g.cookies.Clear(c)
		}
		return c.Redirect(decision.Target, fiber.StatusFound)
	default:
		return c.Next()
	}
}
