package domain

import "time"

// Credentials is the token bundle handed out by the login endpoint and
// round-tripped through the credential cache.
type Credentials struct {
	TokenType    string
	AccessToken  string
	RefreshToken string
	DeviceToken  string
	// ClientID is only populated by the refresh-grant variant, which
	// sends it alongside the refresh token and as the apikey header.
	ClientID string
	// AuthTimestamp and RefreshTimestamp record when the access token
	// and refresh token were last obtained. The refresh-grant variant
	// compares them against fixed validity windows; the password flow
	// trusts a liveness probe instead.
	AuthTimestamp    time.Time
	RefreshTimestamp time.Time
	Detail           string
}

// Empty reports whether the bundle carries no usable access token.
func (c Credentials) Empty() bool {
	return c.AccessToken == ""
}

// AuthorizationHeader renders the bundle as an Authorization header value.
func (c Credentials) AuthorizationHeader() string {
	tokenType := c.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return tokenType + " " + c.AccessToken
}
