package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront-auth/internal/auth"
)

const (
	defaultInterval  = 10 * time.Minute
	defaultThreshold = 10 * time.Minute
)

// Refresher keeps a Session's access token alive. Two triggers: MaybeRefresh
// exchanges when the token's remaining lifetime drops below the threshold, and
// Run exchanges unconditionally on a fixed interval as a safety net. Exchange
// failures are logged and swallowed; the next guarded request fails on its own
// and the server rejects it there.
type Refresher struct {
	session   *Session
	baseURL   string
	client    *http.Client
	interval  time.Duration
	threshold time.Duration
	logger    *zap.Logger
}

// NewRefresher builds a refresher for the session against the auth base URL.
func NewRefresher(session *Session, baseURL string, httpClient *http.Client, logger *zap.Logger) *Refresher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Refresher{
		session:   session,
		baseURL:   baseURL,
		client:    httpClient,
		interval:  defaultInterval,
		threshold: defaultThreshold,
		logger:    logger,
	}
}

// WithTimings overrides the tick interval and expiry threshold.
func (r *Refresher) WithTimings(interval, threshold time.Duration) *Refresher {
	if interval > 0 {
		r.interval = interval
	}
	if threshold > 0 {
		r.threshold = threshold
	}
	return r
}

// Run drives the periodic refresh pass until ctx is cancelled or the session
// is closed.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if r.session.Closed() {
				return
			}
			if err := r.Exchange(ctx); err != nil {
				r.logFailure(err)
			}
		}
	}
}

// MaybeRefresh exchanges only when the local access token expires within the
// threshold. Reads exp without a signature check: this is our own local copy,
// and nothing is authorized off of it.
func (r *Refresher) MaybeRefresh(ctx context.Context) error {
	token := r.session.AccessToken()
	if token == "" {
		return nil
	}
	exp, err := auth.PeekExpiry(token)
	if err != nil {
		// Unreadable local token: attempt the exchange anyway.
		return r.exchangeLogged(ctx)
	}
	if time.Until(exp) > r.threshold {
		return nil
	}
	return r.exchangeLogged(ctx)
}

// Exchange posts the refresh token and swaps the new access token into the
// session.
func (r *Refresher) Exchange(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{"refreshToken": r.session.RefreshToken()})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/auth/refresh", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("refresh exchange: status %d", resp.StatusCode)
	}

	var out struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	if out.AccessToken == "" {
		return fmt.Errorf("refresh exchange: empty access token")
	}

	r.session.SetAccessToken(out.AccessToken)
	return nil
}

func (r *Refresher) exchangeLogged(ctx context.Context) error {
	if err := r.Exchange(ctx); err != nil {
		r.logFailure(err)
		return err
	}
	return nil
}

func (r *Refresher) logFailure(err error) {
	if r.logger == nil {
		return
	}
	r.logger.Warn("token refresh failed", zap.Error(err))
}
