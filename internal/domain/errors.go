package domain

import "errors"

var (
	// ErrNotLoggedIn is returned by operations that require an
	// authenticated session.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrConnectivity covers transport-level failures on the initial
	// login request, where no server detail is available.
	ErrConnectivity = errors.New("trouble connecting to the brokerage API, check internet connection")

	// ErrAuthRejected is returned when the login or refresh endpoint
	// answers without tokens; the server-provided detail is attached by
	// the caller.
	ErrAuthRejected = errors.New("authentication rejected")

	// ErrChallengeExhausted terminates a login once the server reports
	// zero remaining challenge attempts.
	ErrChallengeExhausted = errors.New("too many failed challenge attempts")

	// ErrCacheUnavailable means no usable credential cache exists yet.
	ErrCacheUnavailable = errors.New("credential cache unavailable, run first-time setup")
)
