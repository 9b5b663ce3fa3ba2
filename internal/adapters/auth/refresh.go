package auth

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/bnema/robinhood-cli/internal/adapters/transport"
	"github.com/bnema/robinhood-cli/internal/api"
	"github.com/bnema/robinhood-cli/internal/domain"
	"github.com/bnema/robinhood-cli/internal/ports"
)

const (
	// Access tokens are refreshed after 30 minutes, refresh tokens
	// after 60 days.
	authWindow    = 30 * time.Minute
	refreshWindow = 60 * 24 * time.Hour
)

// RefreshFlow is the session-persistence variant with explicit expiry
// bookkeeping: instead of probing the API, it compares the stored
// timestamps against fixed validity windows and proactively exchanges
// the refresh token before the access token would be rejected.
type RefreshFlow struct {
	mu       sync.Mutex
	pipeline *transport.Pipeline
	cache    ports.SealedCredentialCache
	secrets  ports.SecretStore
	clock    ports.Clock
}

func NewRefreshFlow(pipeline *transport.Pipeline, cache ports.SealedCredentialCache, secrets ports.SecretStore, clock ports.Clock) *RefreshFlow {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &RefreshFlow{pipeline: pipeline, cache: cache, secrets: secrets, clock: clock}
}

// PasscodeKey is where the sealed-cache passcode lives in the secret
// store for a given profile.
func PasscodeKey(profile string) string {
	return "robinhood/passcode" + profile
}

// FirstTimeSetup seals the initial token bundle and stores the passcode
// in the secret store. It must run once before Login can succeed.
func (f *RefreshFlow) FirstTimeSetup(ctx context.Context, profile string, passcode string, clientID string, accessToken string, refreshToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.clock.Now()
	creds := domain.Credentials{
		TokenType:        "Bearer",
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ClientID:         clientID,
		AuthTimestamp:    now,
		RefreshTimestamp: now,
	}

	if err := f.cache.Save(profile, passcode, creds); err != nil {
		return fmt.Errorf("seal credential cache: %w", err)
	}

	if err := f.secrets.Put(ctx, PasscodeKey(profile), passcode); err != nil {
		return fmt.Errorf("store passcode: %w", err)
	}

	return nil
}

// Login loads the sealed bundle, refreshes whichever token has aged out
// of its window, re-persists the updated bundle, and arms the session
// headers. The returned value is the Authorization header that was set.
func (f *RefreshFlow) Login(ctx context.Context, profile string, passcode string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	creds, err := f.cache.Load(profile, passcode)
	if err != nil {
		return "", err
	}

	now := f.clock.Now()
	switch {
	case now.Sub(creds.RefreshTimestamp) > refreshWindow:
		payload := url.Values{
			"grant_type":    {"refresh_token"},
			"access_type":   {"offline"},
			"refresh_token": {creds.RefreshToken},
			"client_id":     {creds.ClientID},
		}
		body, err := f.refreshGrant(ctx, payload)
		if err != nil {
			return "", err
		}

		accessToken, _ := body["access_token"].(string)
		refreshToken, _ := body["refresh_token"].(string)
		if accessToken == "" || refreshToken == "" {
			return "", fmt.Errorf("%w: refresh token is no longer valid, run first-time setup again", domain.ErrAuthRejected)
		}

		creds.AccessToken = accessToken
		creds.RefreshToken = refreshToken
		creds.AuthTimestamp = now
		creds.RefreshTimestamp = now
		if err := f.cache.Save(profile, passcode, creds); err != nil {
			return "", fmt.Errorf("reseal credential cache: %w", err)
		}

	case now.Sub(creds.AuthTimestamp) > authWindow:
		payload := url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {creds.RefreshToken},
			"client_id":     {creds.ClientID},
		}
		body, err := f.refreshGrant(ctx, payload)
		if err != nil {
			return "", err
		}

		accessToken, _ := body["access_token"].(string)
		if accessToken == "" {
			return "", fmt.Errorf("%w: refresh token is no longer valid, run first-time setup again", domain.ErrAuthRejected)
		}

		creds.AccessToken = accessToken
		creds.AuthTimestamp = now
		if err := f.cache.Save(profile, passcode, creds); err != nil {
			return "", fmt.Errorf("reseal credential cache: %w", err)
		}
	}

	authHeader := creds.AuthorizationHeader()
	session := f.pipeline.Session()
	session.SetHeader(transport.HeaderAuthorization, authHeader)
	session.SetHeader(transport.HeaderAPIKey, creds.ClientID)
	session.SetLoggedIn(true)

	return authHeader, nil
}

func (f *RefreshFlow) refreshGrant(ctx context.Context, payload url.Values) (map[string]any, error) {
	status, body, err := f.pipeline.PostForm(ctx, api.OAuthToken(), payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnectivity, err)
	}
	if body == nil {
		return nil, fmt.Errorf("%w: status %d from token endpoint", domain.ErrAuthRejected, status)
	}
	return body, nil
}
