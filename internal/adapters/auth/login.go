package auth

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/bnema/robinhood-cli/internal/adapters/transport"
	"github.com/bnema/robinhood-cli/internal/api"
	"github.com/bnema/robinhood-cli/internal/domain"
	"github.com/bnema/robinhood-cli/internal/ports"
)

const (
	oauthClientID    = "c82SH0WZOsabOXGP2sxqcj34FxkvfnWRZBKlBjFS"
	defaultExpiresIn = 86400
	defaultScope     = "internal"
)

// Flow owns the password-login lifecycle. The mutex serializes the
// entire login sequence, payload construction through cache write, so
// concurrent logins cannot corrupt the cache file or leave the session
// half-updated.
type Flow struct {
	mu       sync.Mutex
	pipeline *transport.Pipeline
	cache    ports.CredentialCache
	prompt   ports.Prompt
	creds    domain.Credentials
}

func NewFlow(pipeline *transport.Pipeline, cache ports.CredentialCache, prompt ports.Prompt) *Flow {
	return &Flow{pipeline: pipeline, cache: cache, prompt: prompt}
}

// LoginOptions carries the credential payload inputs. Zero values fall
// back to the API defaults; missing username or password is collected
// through the injected prompt.
type LoginOptions struct {
	Username     string
	Password     string
	ExpiresIn    int
	Scope        string
	ChallengeVia domain.ChallengeType
	StoreSession bool
	MFACode      string
	Profile      string
}

// Credentials returns the bundle from the last successful login.
func (f *Flow) Credentials() domain.Credentials {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creds
}

// Login authenticates the session. With StoreSession set it first tries
// the cached bundle, trusting it only after a liveness probe succeeds;
// a failed probe clears the session and falls through to a full
// credential login.
func (f *Flow) Login(ctx context.Context, opts LoginOptions) (domain.Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if opts.ExpiresIn <= 0 {
		opts.ExpiresIn = defaultExpiresIn
	}
	if opts.Scope == "" {
		opts.Scope = defaultScope
	}
	if opts.ChallengeVia == "" {
		opts.ChallengeVia = domain.ChallengeSMS
	}

	session := f.pipeline.Session()

	if opts.StoreSession {
		if cached, ok := f.cache.Load(opts.Profile); ok {
			session.SetHeader(transport.HeaderAuthorization, cached.AuthorizationHeader())
			session.SetLoggedIn(true)

			if err := f.pipeline.Probe(ctx, api.Positions(), url.Values{"nonzero": {"true"}}); err == nil {
				cached.Detail = "logged in using cached authentication"
				f.creds = cached
				return cached, nil
			}

			f.pipeline.Sink().Printf("Cached session expired. Logging in again.")
			session.Reset()
		}
	}

	creds, err := f.fullLogin(ctx, opts)
	if err != nil {
		session.Reset()
		return domain.Credentials{}, err
	}

	f.creds = creds
	return creds, nil
}

func (f *Flow) fullLogin(ctx context.Context, opts LoginOptions) (domain.Credentials, error) {
	deviceToken := GenerateDeviceToken()

	username := opts.Username
	password := opts.Password
	var err error
	if username == "" {
		if username, err = f.prompt.Username(ctx); err != nil {
			return domain.Credentials{}, fmt.Errorf("collect username: %w", err)
		}
	}
	if password == "" {
		if password, err = f.prompt.Password(ctx); err != nil {
			return domain.Credentials{}, fmt.Errorf("collect password: %w", err)
		}
	}

	payload := url.Values{
		"client_id":      {oauthClientID},
		"expires_in":     {strconv.Itoa(opts.ExpiresIn)},
		"grant_type":     {"password"},
		"scope":          {opts.Scope},
		"challenge_type": {string(opts.ChallengeVia)},
		"device_token":   {deviceToken},
		"username":       {username},
		"password":       {password},
	}
	if opts.MFACode != "" {
		payload.Set("mfa_code", opts.MFACode)
	}

	status, body, err := f.pipeline.PostForm(ctx, api.Login(), payload)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("%w: %v", domain.ErrConnectivity, err)
	}
	if body == nil {
		return domain.Credentials{}, domain.ErrConnectivity
	}

	switch {
	case body["mfa_required"] != nil:
		if body, err = f.resolveMFA(ctx, payload); err != nil {
			return domain.Credentials{}, err
		}
	case body["challenge"] != nil:
		challenge, ok := challengeFrom(body)
		if !ok {
			return domain.Credentials{}, fmt.Errorf("%w: malformed challenge response", domain.ErrAuthRejected)
		}
		if body, err = f.resolveChallenge(ctx, payload, challenge.ID); err != nil {
			return domain.Credentials{}, err
		}
	}

	accessToken, _ := body["access_token"].(string)
	if accessToken == "" {
		detail, _ := body["detail"].(string)
		if detail == "" {
			detail = fmt.Sprintf("status %d", status)
		}
		return domain.Credentials{}, fmt.Errorf("%w: %s", domain.ErrAuthRejected, detail)
	}

	tokenType, _ := body["token_type"].(string)
	refreshToken, _ := body["refresh_token"].(string)

	creds := domain.Credentials{
		TokenType:    tokenType,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		DeviceToken:  deviceToken,
		Detail:       "logged in with new authentication code",
	}

	session := f.pipeline.Session()
	session.SetHeader(transport.HeaderAuthorization, creds.AuthorizationHeader())
	session.SetLoggedIn(true)

	if opts.StoreSession {
		if err := f.cache.Save(opts.Profile, creds); err != nil {
			f.pipeline.Sink().Printf("Warning: could not persist session: %v", err)
		}
	}

	return creds, nil
}

// resolveMFA prompts for a code and resubmits the login payload until a
// 200-class response arrives. Retries are driven by human input; only a
// transport failure breaks the loop.
func (f *Flow) resolveMFA(ctx context.Context, payload url.Values) (map[string]any, error) {
	for {
		code, err := f.prompt.MFACode(ctx)
		if err != nil {
			return nil, fmt.Errorf("collect mfa code: %w", err)
		}

		payload.Set("mfa_code", code)
		status, body, err := f.pipeline.PostForm(ctx, api.Login(), payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrConnectivity, err)
		}
		if status >= 200 && status < 300 && body != nil {
			return body, nil
		}

		f.pipeline.Sink().Printf("Incorrect MFA code. Please try again.")
	}
}

// resolveChallenge prompts for the SMS/email code and submits it to the
// challenge endpoint. Each failed attempt consumes one of the
// server-tracked remaining attempts; exhaustion fails terminally. On
// success the challenge id is attached as a session header and the
// original login payload is resubmitted.
func (f *Flow) resolveChallenge(ctx context.Context, payload url.Values, challengeID string) (map[string]any, error) {
	for {
		code, err := f.prompt.ChallengeCode(ctx)
		if err != nil {
			return nil, fmt.Errorf("collect challenge code: %w", err)
		}

		_, body, err := f.pipeline.PostForm(ctx, api.Challenge(challengeID), url.Values{"response": {code}})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrConnectivity, err)
		}

		challenge, pending := challengeFrom(body)
		if !pending {
			f.pipeline.Session().SetHeader(transport.HeaderChallengeResponse, challengeID)

			_, loginBody, err := f.pipeline.PostForm(ctx, api.Login(), payload)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrConnectivity, err)
			}
			if loginBody == nil {
				return nil, domain.ErrConnectivity
			}
			return loginBody, nil
		}

		if challenge.RemainingAttempts <= 0 {
			return nil, domain.ErrChallengeExhausted
		}
		f.pipeline.Sink().Printf("Incorrect code. %d attempts remaining.", challenge.RemainingAttempts)
	}
}

// Logout clears the session token and logged-in flag. It requires a
// logged-in session and leaves the on-disk cache untouched.
func (f *Flow) Logout() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	session := f.pipeline.Session()
	if !session.LoggedIn() {
		return domain.ErrNotLoggedIn
	}

	f.creds = domain.Credentials{}
	session.Reset()
	return nil
}

func challengeFrom(body map[string]any) (domain.Challenge, bool) {
	raw, ok := body["challenge"].(map[string]any)
	if !ok {
		return domain.Challenge{}, false
	}

	id, _ := raw["id"].(string)
	remaining := 0
	if attempts, ok := raw["remaining_attempts"].(float64); ok {
		remaining = int(attempts)
	}

	return domain.Challenge{ID: id, RemainingAttempts: remaining}, true
}
