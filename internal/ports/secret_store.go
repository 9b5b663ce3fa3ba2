package ports

import "context"

// SecretStore keeps small secrets (the sealed-cache passcode) in a
// platform credential manager or a fallback location.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
