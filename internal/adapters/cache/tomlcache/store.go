// Package tomlcache persists login token bundles as TOML files under the
// user's token directory, one file per profile.
package tomlcache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/robinhood-cli/internal/domain"
	"github.com/bnema/robinhood-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	cacheDirMode    = 0o700
	cacheFileMode   = 0o600
	tempFilePattern = ".credentials-*.toml.tmp"
)

type Store struct {
	root    string
	service string
	mu      sync.RWMutex
}

var _ ports.CredentialCache = (*Store)(nil)

// NewStore creates a cache rooted at root (typically ~/.tokens) for the
// named service; the profile suffix distinguishes multiple accounts.
func NewStore(root string, service string) *Store {
	return &Store{root: filepath.Clean(root), service: service}
}

// DefaultRoot resolves the per-user token directory.
func DefaultRoot() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, ".tokens"), nil
}

// Path returns the cache file location for a profile.
func (s *Store) Path(profile string) string {
	return filepath.Join(s.root, s.service+profile+".toml")
}

// Load reads the cached bundle for a profile. It fails soft: a missing,
// unreadable, or corrupt file reports ok=false and is indistinguishable
// from "no prior session" to the caller.
func (s *Store) Load(profile string) (domain.Credentials, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path(profile))
	if err != nil {
		return domain.Credentials{}, false
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return domain.Credentials{}, false
	}

	creds := fromSchema(file)
	if creds.Empty() {
		return domain.Credentials{}, false
	}
	return creds, true
}

// Save writes the bundle atomically with owner-only permissions.
func (s *Store) Save(profile string, creds domain.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(toSchema(creds))
	if err != nil {
		return fmt.Errorf("encode credential cache: %w", err)
	}

	return writeFileAtomic(s.Path(profile), data)
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), cacheDirMode); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp cache file: %w", err)
	}

	if err := tempFile.Chmod(cacheFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp cache file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp cache file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace cache file: %w", err)
	}

	cleanup = false
	return nil
}

type fileSchema struct {
	TokenType        string `toml:"token_type"`
	AccessToken      string `toml:"access_token"`
	RefreshToken     string `toml:"refresh_token"`
	DeviceToken      string `toml:"device_token"`
	ClientID         string `toml:"client_id,omitempty"`
	AuthTimestamp    string `toml:"auth_timestamp,omitempty"`
	RefreshTimestamp string `toml:"refresh_timestamp,omitempty"`
	Detail           string `toml:"detail,omitempty"`
}

func toSchema(creds domain.Credentials) fileSchema {
	return fileSchema{
		TokenType:        creds.TokenType,
		AccessToken:      creds.AccessToken,
		RefreshToken:     creds.RefreshToken,
		DeviceToken:      creds.DeviceToken,
		ClientID:         creds.ClientID,
		AuthTimestamp:    formatTime(creds.AuthTimestamp),
		RefreshTimestamp: formatTime(creds.RefreshTimestamp),
		Detail:           creds.Detail,
	}
}

func fromSchema(file fileSchema) domain.Credentials {
	return domain.Credentials{
		TokenType:        file.TokenType,
		AccessToken:      file.AccessToken,
		RefreshToken:     file.RefreshToken,
		DeviceToken:      file.DeviceToken,
		ClientID:         file.ClientID,
		AuthTimestamp:    parseTime(file.AuthTimestamp),
		RefreshTimestamp: parseTime(file.RefreshTimestamp),
		Detail:           file.Detail,
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format(time.RFC3339)
}
