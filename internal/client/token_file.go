package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/brightnest/cleaning-portal/internal/core/domain"
)

// TokenFile persists the signed-in session between portalctl runs. An empty
// path keeps the session in memory only.
type TokenFile struct {
	path string

	mu  sync.Mutex
	mem *domain.Session
}

func NewTokenFile(path string) *TokenFile {
	return &TokenFile{path: path}
}

// DefaultTokenPath is the per-user location used when none is configured.
func DefaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "cleaning-portal", "session.json")
}

// Load returns the stored session, or nil when there is none.
func (t *TokenFile) Load() (*domain.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.path == "" {
		return t.mem, nil
	}
	raw, err := os.ReadFile(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("token file: %w", err)
	}
	var s domain.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("token file: corrupt session: %w", err)
	}
	return &s, nil
}

func (t *TokenFile) Save(s *domain.Session) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.path == "" {
		t.mem = s
		return nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("token file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(t.path), 0o700); err != nil {
		return fmt.Errorf("token file: %w", err)
	}
	if err := os.WriteFile(t.path, raw, 0o600); err != nil {
		return fmt.Errorf("token file: %w", err)
	}
	return nil
}

func (t *TokenFile) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.mem = nil
	if t.path == "" {
		return nil
	}
	if err := os.Remove(t.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("token file: %w", err)
	}
	return nil
}
