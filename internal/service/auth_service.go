package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/storefront-auth/internal/auth"
	"github.com/spec-kit/storefront-auth/internal/config"
	"github.com/spec-kit/storefront-auth/internal/domain"
	"github.com/spec-kit/storefront-auth/internal/events"
	"github.com/spec-kit/storefront-auth/internal/repository"
)

var (
	// ErrInvalidCredentials is returned for any login failure: unknown email,
	// wrong password, or a suspended account. One message for all of them.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken means the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrOTPMismatch means the submitted code is wrong, expired, or consumed.
	ErrOTPMismatch = errors.New("verification code invalid or expired")
)

// AuthService coordinates registration, login, OTP verification and OAuth
// linkage. Every successful flow ends in a SessionService issuance.
type AuthService struct {
	users      repository.UserRepository
	otps       repository.OTPRepository
	sessions   *SessionService
	dispatcher events.Dispatcher
	bcryptCost int
	otpTTL     time.Duration
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	OTPRepo    repository.OTPRepository
	Sessions   *SessionService
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		otps:       deps.OTPRepo,
		sessions:   deps.Sessions,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
		otpTTL:     cfg.Auth.OTPTTL(),
	}
}

// Register creates a new customer account and issues a session. New accounts
// always start as USER; admin roles are granted by a super-admin afterwards.
func (s *AuthService) Register(ctx context.Context, fname, lname, email, password string) (*domain.User, *domain.CredentialPair, domain.Profile, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, domain.Profile{}, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, domain.Profile{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, nil, domain.Profile{}, err
	}

	user := &domain.User{
		FirstName:    fname,
		LastName:     lname,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Status:       domain.UserStatusPending,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, domain.Profile{}, err
	}

	pair, profile, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return nil, nil, domain.Profile{}, err
	}

	s.publish(ctx, events.EventUserRegistered, user, nil)
	return user, pair, profile, nil
}

// Login authenticates an email/password pair and issues a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *domain.CredentialPair, domain.Profile, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, domain.Profile{}, ErrInvalidCredentials
		}
		return nil, nil, domain.Profile{}, err
	}
	if user.Status == domain.UserStatusSuspended {
		return nil, nil, domain.Profile{}, ErrInvalidCredentials
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, domain.Profile{}, ErrInvalidCredentials
	}

	pair, profile, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return nil, nil, domain.Profile{}, err
	}

	s.publish(ctx, events.EventUserLoggedIn, user, nil)
	return user, pair, profile, nil
}

// RequestOTP stores a fresh verification code for the email. Delivery is a
// collaborator's job; the emitted event is what a mailer would consume.
func (s *AuthService) RequestOTP(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.otps.Put(ctx, email, code, s.otpTTL); err != nil {
		return err
	}

	s.publish(ctx, events.EventOTPRequested, user, events.OTPRequestedPayload{
		ExpiresAt: time.Now().Add(s.otpTTL),
	})
	return nil
}

// VerifyOTP redeems a verification code, marks the account verified, and
// issues a session.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*domain.User, *domain.CredentialPair, domain.Profile, error) {
	stored, err := s.otps.Consume(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrOTPNotFound) {
			return nil, nil, domain.Profile{}, ErrOTPMismatch
		}
		return nil, nil, domain.Profile{}, err
	}
	if stored != code {
		return nil, nil, domain.Profile{}, ErrOTPMismatch
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, domain.Profile{}, err
	}
	if !user.EmailVerified {
		user.EmailVerified = true
		if user.Status == domain.UserStatusPending {
			user.Status = domain.UserStatusActive
		}
		if err := s.users.Update(ctx, user); err != nil {
			return nil, nil, domain.Profile{}, err
		}
	}

	pair, profile, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return nil, nil, domain.Profile{}, err
	}
	return user, pair, profile, nil
}

// LinkOAuth takes an identity already verified by an external provider and
// finds or creates the matching account, then issues a session. The provider
// round trip happens upstream; by the time this runs the email is trusted.
func (s *AuthService) LinkOAuth(ctx context.Context, provider, providerID, email, fname, lname, avatar string) (*domain.User, *domain.CredentialPair, domain.Profile, error) {
	newUser := false
	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if user.OAuthProvider == "" {
			user.OAuthProvider = provider
			user.OAuthID = providerID
			if err := s.users.Update(ctx, user); err != nil {
				return nil, nil, domain.Profile{}, err
			}
		}
	case errors.Is(err, pgx.ErrNoRows):
		newUser = true
		user = &domain.User{
			FirstName:     fname,
			LastName:      lname,
			Email:         email,
			Avatar:        avatar,
			Role:          domain.RoleUser,
			Status:        domain.UserStatusActive,
			EmailVerified: true,
			OAuthProvider: provider,
			OAuthID:       providerID,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, nil, domain.Profile{}, err
		}
	default:
		return nil, nil, domain.Profile{}, err
	}

	pair, profile, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return nil, nil, domain.Profile{}, err
	}

	s.publish(ctx, events.EventOAuthLinked, user, events.OAuthLinkedPayload{
		Provider: provider,
		NewUser:  newUser,
	})
	return user, pair, profile, nil
}

// ChangeRole rewrites a user's role. Caller is a verified super-admin. The
// victim keeps whatever cookies they hold; the gate will route them wrong
// until refresh, which is exactly why the guards re-verify the signed token.
func (s *AuthService) ChangeRole(ctx context.Context, actorID, userID string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	oldRole := user.Role
	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}
	user.Role = role

	s.publish(ctx, events.EventRoleChanged, user, events.RoleChangedPayload{
		OldRole: oldRole,
		NewRole: role,
		ActorID: actorID,
	})
	return user, nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, user *domain.User, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
