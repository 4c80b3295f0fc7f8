package account

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

// TokenStore keeps the current access token in memory and mirrors it to a
// file so sessions survive daemon restarts.
type TokenStore struct {
	path    string
	current atomic.Value // string
}

func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Load reads the persisted token into memory. A missing file just leaves the
// session signed out.
func (t *TokenStore) Load() string {
	b, err := os.ReadFile(t.path)
	if err != nil {
		return ""
	}
	tok := strings.TrimSpace(string(b))
	if tok != "" {
		t.current.Store(tok)
	}
	return tok
}

func (t *TokenStore) Set(token string) error {
	t.current.Store(token)
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(t.path, []byte(token), 0o600)
}

func (t *TokenStore) Get() string {
	if v := t.current.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func (t *TokenStore) Clear() error {
	t.current.Store("")
	err := os.Remove(t.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
