package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront-auth/internal/auth"
	"github.com/spec-kit/storefront-auth/internal/domain"
	"github.com/spec-kit/storefront-auth/internal/events"
	"github.com/spec-kit/storefront-auth/internal/repository"
)

// ErrRefreshRejected covers every way a refresh exchange can fail: bad
// signature, expiry, no such user, or a token superseded by a newer login.
var ErrRefreshRejected = errors.New("refresh token rejected")

// SessionService owns the token lifecycle: issuing credential pairs,
// exchanging refresh tokens, and revoking sessions.
type SessionService struct {
	users      repository.UserRepository
	codec      *auth.Codec
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewSessionService builds the service.
func NewSessionService(users repository.UserRepository, codec *auth.Codec, dispatcher events.Dispatcher, logger *zap.Logger) *SessionService {
	return &SessionService{users: users, codec: codec, dispatcher: dispatcher, logger: logger}
}

// Issue mints a fresh access+refresh pair for the user and persists the
// refresh token onto the user record, overwriting any prior value. That write
// is the single-active-session invalidation point: the previous refresh token
// stops working the moment this one lands. If the write fails the whole
// issuance fails; tokens must never reach a client without durable session
// state behind them.
func (s *SessionService) Issue(ctx context.Context, user *domain.User) (*domain.CredentialPair, domain.Profile, error) {
	accessToken, accessExp, err := s.codec.SignAccess(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, domain.Profile{}, err
	}
	refreshToken, refreshExp, err := s.codec.SignRefresh(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, domain.Profile{}, err
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, domain.Profile{}, err
	}

	pair := &domain.CredentialPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}
	return pair, domain.ProfileOf(user), nil
}

// Refresh exchanges a valid refresh token for a new access token. The token
// must verify against the refresh secret AND match the value currently stored
// on the user record, which defeats replay of a superseded token. The refresh
// token itself is not rotated, so concurrent exchanges with the same stored
// token all succeed.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (string, time.Time, *domain.Claims, error) {
	claims, err := s.codec.Verify(refreshToken, auth.KeyRefresh)
	if err != nil {
		s.logRefreshFailure("verify", err)
		return "", time.Time{}, nil, ErrRefreshRejected
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		s.logRefreshFailure("lookup", err)
		return "", time.Time{}, nil, ErrRefreshRejected
	}
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		s.logRefreshFailure("superseded", nil)
		return "", time.Time{}, nil, ErrRefreshRejected
	}

	accessToken, accessExp, err := s.codec.SignAccess(user.ID, user.Email, user.Role)
	if err != nil {
		return "", time.Time{}, nil, err
	}

	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSessionRefreshed,
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		Timestamp: time.Now(),
	})

	return accessToken, accessExp, &domain.Claims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		ExpiresAt: accessExp,
	}, nil
}

// Logout clears the stored refresh token, ending the single active session.
func (s *SessionService) Logout(ctx context.Context, userID string) error {
	if err := s.users.ClearRefreshToken(ctx, userID); err != nil {
		return err
	}
	s.publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSessionRevoked,
		UserID:    userID,
		Timestamp: time.Now(),
	})
	return nil
}

// Codec exposes the token codec for middleware wiring.
func (s *SessionService) Codec() *auth.Codec {
	return s.codec
}

func (s *SessionService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func (s *SessionService) logRefreshFailure(stage string, err error) {
	if s.logger == nil {
		return
	}
	s.logger.Info("refresh exchange rejected", zap.String("stage", stage), zap.Error(err))
}
