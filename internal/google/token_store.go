package google

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// ErrTokenNotFound is returned by a TokenStore when no token has been cached yet.
var ErrTokenNotFound = errors.New("no cached Google OAuth token")

// ErrInvalidToken is returned by a TokenStore when the cached token cannot be decoded.
var ErrInvalidToken = errors.New("invalid cached Google OAuth token")

// TokenStore persists the user's OAuth token between runs.
// This abstraction allows different token backends to be plugged in.
type TokenStore interface {
	// Load returns the cached token, or ErrTokenNotFound if there is none
	Load() (*oauth2.Token, error)

	// Save replaces the cached token
	Save(token *oauth2.Token) error

	// Exists reports whether a token has been cached
	Exists() bool
}

// FileTokenStore keeps the token as JSON in a single file
type FileTokenStore struct {
	path string
}

// NewFileTokenStore creates a token store backed by the file at path
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// Path returns the location of the token file
func (s *FileTokenStore) Path() string {
	return s.path
}

// Load reads the token from disk
func (s *FileTokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("%w in %s: %w", ErrInvalidToken, s.path, err)
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, fmt.Errorf("%w in %s: no access or refresh token", ErrInvalidToken, s.path)
	}

	return &token, nil
}

// Save writes the token to disk, readable by the current user only
func (s *FileTokenStore) Save(token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// Exists checks if the token file is present
func (s *FileTokenStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}
