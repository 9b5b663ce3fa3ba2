// Package sealed is the hardened credential cache: the TOML bundle is
// encrypted with a symmetric cipher keyed by a passcode before it
// touches disk.
package sealed

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/robinhood-cli/internal/domain"
	"github.com/bnema/robinhood-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	cacheDirMode    = 0o700
	cacheFileMode   = 0o600
	tempFilePattern = ".credentials-*.sealed.tmp"

	saltSize = 16
	keySize  = chacha20poly1305.KeySize

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var errCorrupt = errors.New("sealed credential cache is corrupt")

type Store struct {
	root    string
	service string
	mu      sync.RWMutex
}

var _ ports.SealedCredentialCache = (*Store)(nil)

func NewStore(root string, service string) *Store {
	return &Store{root: filepath.Clean(root), service: service}
}

func (s *Store) Path(profile string) string {
	return filepath.Join(s.root, s.service+profile+".sealed")
}

// Load decrypts the cached bundle. A missing file surfaces
// domain.ErrCacheUnavailable so callers can direct the user to
// first-time setup; a wrong passcode or tampered file fails with a
// decryption error.
func (s *Store) Load(profile string, passcode string) (domain.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path(profile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Credentials{}, domain.ErrCacheUnavailable
		}
		return domain.Credentials{}, fmt.Errorf("read sealed cache: %w", err)
	}

	if len(data) < saltSize+chacha20poly1305.NonceSizeX {
		return domain.Credentials{}, errCorrupt
	}

	salt := data[:saltSize]
	nonce := data[saltSize : saltSize+chacha20poly1305.NonceSizeX]
	ciphertext := data[saltSize+chacha20poly1305.NonceSizeX:]

	aead, err := newAEAD(passcode, salt)
	if err != nil {
		return domain.Credentials{}, err
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("decrypt sealed cache: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(plaintext, &file); err != nil {
		return domain.Credentials{}, errCorrupt
	}

	return fromSchema(file), nil
}

// Save encrypts and atomically writes the bundle. The on-disk layout is
// salt || nonce || ciphertext.
func (s *Store) Save(profile string, passcode string, creds domain.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plaintext, err := toml.Marshal(toSchema(creds))
	if err != nil {
		return fmt.Errorf("encode sealed cache: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}

	aead, err := newAEAD(passcode, salt)
	if err != nil {
		return err
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}

	sealedData := make([]byte, 0, saltSize+len(nonce)+len(plaintext)+aead.Overhead())
	sealedData = append(sealedData, salt...)
	sealedData = append(sealedData, nonce...)
	sealedData = aead.Seal(sealedData, nonce, plaintext, nil)

	return writeFileAtomic(s.Path(profile), sealedData)
}

func newAEAD(passcode string, salt []byte) (cipher.AEAD, error) {
	if passcode == "" {
		return nil, errors.New("passcode is empty")
	}

	key := argon2.IDKey([]byte(passcode), salt, argonTime, argonMemory, argonThreads, keySize)
	return chacha20poly1305.NewX(key)
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
	DeviceToken      string `toml:"device_token,omitempty"`
	ClientID         string `toml:"client_id"`
	AuthTimestamp    string `toml:"auth_timestamp"`
	RefreshTimestamp string `toml:"refresh_timestamp"`
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

