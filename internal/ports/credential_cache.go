package ports

import "github.com/bnema/robinhood-cli/internal/domain"

// CredentialCache persists login token bundles keyed by a profile suffix,
// so multiple accounts can cache independently.
//
// Load fails soft: a missing, corrupt, or unreadable cache reports ok=false
// and is treated exactly like "no prior session".
type CredentialCache interface {
	Load(profile string) (creds domain.Credentials, ok bool)
	Save(profile string, creds domain.Credentials) error
}

// SealedCredentialCache is the hardened variant used by the refresh-grant
// flow: the bundle is encrypted at rest under a passcode. Unlike
// CredentialCache, Load errors are meaningful: a missing cache surfaces
// domain.ErrCacheUnavailable so callers can direct the user to first-time
// setup.
type SealedCredentialCache interface {
	Load(profile string, passcode string) (domain.Credentials, error)
	Save(profile string, passcode string, creds domain.Credentials) error
}
