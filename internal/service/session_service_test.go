package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront-auth/internal/auth"
	"github.com/spec-kit/storefront-auth/internal/domain"
	"github.com/spec-kit/storefront-auth/internal/events"
	"github.com/spec-kit/storefront-auth/internal/repository/repofake"
	"github.com/spec-kit/storefront-auth/internal/service"
)

func newSessionFixture(t *testing.T) (*service.SessionService, *repofake.FakeUserRepo, *domain.User) {
	t.Helper()
	repo := repofake.NewFakeUserRepo()
	user := repo.Seed(&domain.User{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@shop.test",
		Role:      domain.RoleUser,
		Status:    domain.UserStatusActive,
	})
	codec := auth.NewCodec("access-secret", "refresh-secret", time.Hour, 7*24*time.Hour)
	return service.NewSessionService(repo, codec, events.NewInMemoryDispatcher(), zap.NewNop()), repo, user
}

func TestIssueProducesConsistentPair(t *testing.T) {
	sessions, repo, user := newSessionFixture(t)

	pair, profile, err := sessions.Issue(context.Background(), user)
	require.NoError(t, err)

	accessClaims, err := sessions.Codec().Verify(pair.AccessToken, auth.KeyAccess)
	require.NoError(t, err)
	refreshClaims, err := sessions.Codec().Verify(pair.RefreshToken, auth.KeyRefresh)
	require.NoError(t, err)

	// Both tokens carry the same subject; the profile role matches the claim.
	require.Equal(t, user.ID, accessClaims.UserID)
	require.Equal(t, accessClaims.UserID, refreshClaims.UserID)
	require.Equal(t, accessClaims.Role, profile.Role)

	stored, err := repo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, pair.RefreshToken, stored.RefreshToken)
}

func TestIssueInvalidatesPreviousSession(t *testing.T) {
	sessions, _, user := newSessionFixture(t)
	ctx := context.Background()

	first, _, err := sessions.Issue(ctx, user)
	require.NoError(t, err)

	// A second login supersedes the first session.
	second, _, err := sessions.Issue(ctx, user)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, _, _, err = sessions.Refresh(ctx, first.RefreshToken)
	require.ErrorIs(t, err, service.ErrRefreshRejected)

	_, _, _, err = sessions.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
}

func TestIssueFailsWhenPersistenceFails(t *testing.T) {
	sessions, repo, user := newSessionFixture(t)
	repo.FailSetRefreshToken = true

	pair, _, err := sessions.Issue(context.Background(), user)
	require.Error(t, err)
	require.Nil(t, pair)
}

func TestRefreshDoesNotRotate(t *testing.T) {
	sessions, repo, user := newSessionFixture(t)
	ctx := context.Background()

	pair, _, err := sessions.Issue(ctx, user)
	require.NoError(t, err)

	// Two rapid exchanges with the same refresh token both succeed; the
	// stored token never changes.
	for i := 0; i < 2; i++ {
		accessToken, exp, claims, err := sessions.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err, "exchange %d", i)
		require.True(t, exp.After(time.Now()))
		require.Equal(t, user.ID, claims.UserID)

		verified, err := sessions.Codec().Verify(accessToken, auth.KeyAccess)
		require.NoError(t, err)
		require.Equal(t, user.ID, verified.UserID)
	}

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, pair.RefreshToken, stored.RefreshToken)
}

func TestRefreshRejectsForgedToken(t *testing.T) {
	sessions, _, user := newSessionFixture(t)
	ctx := context.Background()

	_, _, err := sessions.Issue(ctx, user)
	require.NoError(t, err)

	forger := auth.NewCodec("access-secret", "wrong-refresh-secret", time.Hour, time.Hour)
	forged, _, err := forger.SignRefresh(user.ID, user.Email, user.Role)
	require.NoError(t, err)

	_, _, _, err = sessions.Refresh(ctx, forged)
	require.ErrorIs(t, err, service.ErrRefreshRejected)
}

func TestRefreshRejectsAfterLogout(t *testing.T) {
	sessions, _, user := newSessionFixture(t)
	ctx := context.Background()

	pair, _, err := sessions.Issue(ctx, user)
	require.NoError(t, err)

	require.NoError(t, sessions.Logout(ctx, user.ID))

	_, _, _, err = sessions.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrRefreshRejected)
}

func TestRefreshRejectsExpiredRefreshToken(t *testing.T) {
	repo := repofake.NewFakeUserRepo()
	user := repo.Seed(&domain.User{Email: "old@shop.test", Role: domain.RoleUser, Status: domain.UserStatusActive})
	codec := auth.NewCodec("access-secret", "refresh-secret", time.Hour, -time.Minute)
	sessions := service.NewSessionService(repo, codec, nil, zap.NewNop())
	ctx := context.Background()

	pair, _, err := sessions.Issue(ctx, user)
	require.NoError(t, err)

	_, _, _, err = sessions.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrRefreshRejected)
}
