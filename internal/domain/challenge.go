package domain

// Challenge is the ephemeral verification ticket the login endpoint
// returns when the account requires an SMS or email code. It is consumed
// synchronously within the login call and never persisted.
type Challenge struct {
	ID                string
	RemainingAttempts int
}

type ChallengeType string

const (
	ChallengeSMS   ChallengeType = "sms"
	ChallengeEmail ChallengeType = "email"
)
