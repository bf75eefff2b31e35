package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront-auth/internal/auth"
	"github.com/spec-kit/storefront-auth/internal/client"
	"github.com/spec-kit/storefront-auth/internal/domain"
)

func newRefreshServer(t *testing.T, codec *auth.Codec, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/refresh", r.URL.Path)
		calls.Add(1)

		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		claims, err := codec.Verify(req.RefreshToken, auth.KeyRefresh)
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
			return
		}

		accessToken, _, err := codec.SignAccess(claims.UserID, claims.Email, claims.Role)
		require.NoError(t, err)
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": accessToken})
	}))
}

func sessionWithTTL(t *testing.T, codec *auth.Codec, accessTTL time.Duration) *client.Session {
	t.Helper()
	short := auth.NewCodec("access-secret", "refresh-secret", accessTTL, time.Hour)
	accessToken, _, err := short.SignAccess("user-1", "jane@shop.test", domain.RoleUser)
	require.NoError(t, err)
	refreshToken, _, err := codec.SignRefresh("user-1", "jane@shop.test", domain.RoleUser)
	require.NoError(t, err)

	return client.NewSession(domain.CredentialPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, domain.Profile{ID: "user-1", Role: domain.RoleUser})
}

func TestExchangeSwapsAccessToken(t *testing.T) {
	codec := auth.NewCodec("access-secret", "refresh-secret", time.Hour, time.Hour)
	var calls atomic.Int32
	server := newRefreshServer(t, codec, &calls)
	defer server.Close()

	session := sessionWithTTL(t, codec, time.Hour)
	before := session.AccessToken()

	refresher := client.NewRefresher(session, server.URL, server.Client(), zap.NewNop())
	require.NoError(t, refresher.Exchange(context.Background()))

	require.NotEqual(t, before, session.AccessToken())
	claims, err := codec.Verify(session.AccessToken(), auth.KeyAccess)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)

	// The refresh token is stable across exchanges.
	require.NotEmpty(t, session.RefreshToken())
}

func TestMaybeRefreshHonorsThreshold(t *testing.T) {
	codec := auth.NewCodec("access-secret", "refresh-secret", time.Hour, time.Hour)
	var calls atomic.Int32
	server := newRefreshServer(t, codec, &calls)
	defer server.Close()

	// Plenty of lifetime left: no exchange.
	session := sessionWithTTL(t, codec, time.Hour)
	refresher := client.NewRefresher(session, server.URL, server.Client(), zap.NewNop()).
		WithTimings(time.Minute, 10*time.Minute)
	require.NoError(t, refresher.MaybeRefresh(context.Background()))
	require.Equal(t, int32(0), calls.Load())

	// Inside the threshold: exchange fires.
	session = sessionWithTTL(t, codec, 5*time.Minute)
	refresher = client.NewRefresher(session, server.URL, server.Client(), zap.NewNop()).
		WithTimings(time.Minute, 10*time.Minute)
	require.NoError(t, refresher.MaybeRefresh(context.Background()))
	require.Equal(t, int32(1), calls.Load())
}

func TestExchangeFailureLeavesSessionIntact(t *testing.T) {
	codec := auth.NewCodec("access-secret", "refresh-secret", time.Hour, time.Hour)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	session := sessionWithTTL(t, codec, time.Hour)
	before := session.AccessToken()

	refresher := client.NewRefresher(session, server.URL, server.Client(), zap.NewNop())
	require.Error(t, refresher.Exchange(context.Background()))
	require.Equal(t, before, session.AccessToken())
}

func TestClosedSessionDropsState(t *testing.T) {
	codec := auth.NewCodec("access-secret", "refresh-secret", time.Hour, time.Hour)
	session := sessionWithTTL(t, codec, time.Hour)

	session.Close()
	require.True(t, session.Closed())
	require.Empty(t, session.AccessToken())
	require.Empty(t, session.RefreshToken())

	// A closed session never accepts a new token.
	session.SetAccessToken("resurrected")
	require.Empty(t, session.AccessToken())
}
