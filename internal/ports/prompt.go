package ports

import "context"

// Prompt supplies the interactive inputs the login flow may need. The
// terminal CLI implements it over stdin; tests and headless deployments
// inject canned values or fail fast.
type Prompt interface {
	Username(ctx context.Context) (string, error)
	Password(ctx context.Context) (string, error)
	MFACode(ctx context.Context) (string, error)
	ChallengeCode(ctx context.Context) (string, error)
}
