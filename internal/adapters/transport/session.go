// Package transport implements the shared HTTP session and the request
// pipeline every endpoint call funnels through.
package transport

import "sync"

const (
	HeaderAuthorization     = "Authorization"
	HeaderChallengeResponse = "X-ROBINHOOD-CHALLENGE-RESPONSE-ID"
	HeaderContentType       = "Content-Type"
	HeaderAPIKey            = "apikey"

	contentTypeForm = "application/x-www-form-urlencoded; charset=utf-8"
	contentTypeJSON = "application/json"
)

// Session holds the outbound headers, the bearer token they carry, and
// the logged-in flag. It is the sole source of truth for the active
// identity: every request reads its headers at send time, so a header
// mutation is visible to all subsequent calls.
type Session struct {
	mu       sync.RWMutex
	headers  map[string]string
	loggedIn bool
}

func NewSession() *Session {
	return &Session{headers: defaultHeaders()}
}

func defaultHeaders() map[string]string {
	return map[string]string{
		"Accept":                  "*/*",
		"Accept-Encoding":         "gzip,deflate,br",
		"Accept-Language":         "en-US,en;q=1",
		HeaderContentType:         contentTypeForm,
		"X-Robinhood-API-Version": "1.431.4",
		"Connection":              "keep-alive",
		"User-Agent":              "Robinhood/823 (iPhone; iOS 7.1.2; Scale/2.00)",
	}
}

// SetHeader sets or replaces a header for all subsequent requests.
func (s *Session) SetHeader(key string, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headers[key] = value
}

// RemoveHeader drops a header from all subsequent requests.
func (s *Session) RemoveHeader(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.headers, key)
}

// Header returns the current value for key, or "" when unset.
func (s *Session) Header(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.headers[key]
}

// Headers returns a copy of the current header set.
func (s *Session) Headers() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make(map[string]string, len(s.headers))
	for key, value := range s.headers {
		copied[key] = value
	}
	return copied
}

func (s *Session) SetLoggedIn(loggedIn bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loggedIn = loggedIn
}

func (s *Session) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

// Reset replaces the session with a fresh default-header session,
// discarding any auth token. Used on logout and when a cached token
// turns out to be stale.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headers = defaultHeaders()
	s.loggedIn = false
}

// swapHeader sets key to value and returns a restore func that puts the
// previous value back. The restore must run even when the request in
// between fails.
func (s *Session) swapHeader(key string, value string) (restore func()) {
	s.mu.Lock()
	previous, existed := s.headers[key]
	s.headers[key] = value
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if existed {
			s.headers[key] = previous
		} else {
			delete(s.headers, key)
		}
	}
}
