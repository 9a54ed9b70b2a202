package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/scrypt"
)

const sessionName = "letsplay_session"

// sessions older than this are treated as absent
const maxAge = 14 * 24 * time.Hour

// Store keeps the signed-in identity in a local file between CLI runs.
// The value is wrapped in a securecookie envelope (HMAC + AES) so a
// stray backup of the home directory does not leak the session token.
type Store struct {
	path string
	sc   *securecookie.SecureCookie
}

// NewStore derives the hash and block keys from the user's passphrase
// and binds the store to path. An empty passphrase is refused rather
// than silently writing an unprotected file.
func NewStore(path, passphrase string) (*Store, error) {
	if path == "" {
		return nil, errors.New("session: file path required")
	}
	if passphrase == "" {
		return nil, errors.New("session: key passphrase required (set LETSPLAY_SESSION_KEY, see `letsplay keys`)")
	}
	hashKey, blockKey, err := deriveKeys(passphrase)
	if err != nil {
		return nil, err
	}
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(maxAge.Seconds()))
	return &Store{path: path, sc: sc}, nil
}

// deriveKeys stretches the passphrase into the 32-byte hash and block
// keys securecookie wants. The salt is fixed: the session file is
// single-user local state, not a password database.
func deriveKeys(passphrase string) ([]byte, []byte, error) {
	key, err := scrypt.Key([]byte(passphrase), []byte("letsplay-session-v1"), 1<<15, 8, 1, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("session: derive keys: %w", err)
	}
	return key[:32], key[32:], nil
}

func (s *Store) Save(id Identity) error {
	val := map[string]any{
		"uid":   id.UserID,
		"name":  id.Name,
		"email": id.Email,
		"token": id.Token,
		"v":     1,
	}
	encoded, err := s.sc.Encode(sessionName, val)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(encoded), 0o600); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}

// Load returns the stored identity. A missing, expired or undecodable
// file reads as "not signed in" rather than an error.
func (s *Store) Load() (Identity, bool) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return Identity{}, false
	}
	val := map[string]any{}
	if err := s.sc.Decode(sessionName, string(raw), &val); err != nil {
		return Identity{}, false
	}

	id := Identity{}
	switch uid := val["uid"].(type) {
	case int64:
		id.UserID = uid
	case float64:
		id.UserID = int64(uid)
	}
	if name, ok := val["name"].(string); ok {
		id.Name = name
	}
	if email, ok := val["email"].(string); ok {
		id.Email = email
	}
	if token, ok := val["token"].(string); ok {
		id.Token = token
	}
	if !id.Authenticated() {
		return Identity{}, false
	}
	return id, true
}

func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}
