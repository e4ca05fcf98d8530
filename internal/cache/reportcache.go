package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Entry is one cached model answer.
type Entry struct {
	Model   string    `json:"model"`
	Report  string    `json:"report"`
	SavedAt time.Time `json:"saved_at"`
}

// ReportCache stores generated reports on disk keyed by a digest of the model
// name and the full prompt, so identical requests can be replayed offline.
type ReportCache struct {
	Dir string
	// StrictPerms enforces 0700 on the directory and 0600 on entries.
	StrictPerms bool
}

func (c *ReportCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	perm := os.FileMode(0o755)
	if c.StrictPerms {
		perm = 0o700
	}
	if err := os.MkdirAll(c.Dir, perm); err != nil {
		return err
	}
	if c.StrictPerms {
		if info, err := os.Stat(c.Dir); err == nil && info.Mode()&0o777 != 0o700 {
			_ = os.Chmod(c.Dir, 0o700)
		}
	}
	return nil
}

// KeyFrom builds a cache key from model and prompt.
func KeyFrom(model string, prompt string) string {
	h := sha256.Sum256([]byte(model + "\n\n" + prompt))
	return hex.EncodeToString(h[:])
}

func (c *ReportCache) pathFor(key string) string {
	return filepath.Join(c.Dir, key+".json")
}

// Get returns the cached entry for key. A missing or unreadable entry is a
// miss, not an error.
func (c *ReportCache) Get(_ context.Context, key string) (Entry, bool, error) {
	if err := c.ensureDir(); err != nil {
		return Entry{}, false, err
	}
	p := c.pathFor(key)
	b, err := os.ReadFile(p)
	if err != nil {
		return Entry{}, false, nil
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil || e.Report == "" {
		return Entry{}, false, nil
	}
	// Touch mtime so limit enforcement evicts least recently used first.
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return e, true, nil
}

// Save writes an entry for key, stamping SavedAt when unset.
func (c *ReportCache) Save(_ context.Context, key string, e Entry) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	if e.SavedAt.IsZero() {
		e.SavedAt = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	mode := os.FileMode(0o644)
	if c.StrictPerms {
		mode = 0o600
	}
	return os.WriteFile(c.pathFor(key), data, mode)
}
