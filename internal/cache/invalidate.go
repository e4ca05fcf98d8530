package cache

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ClearDir removes the directory and all contents, then recreates it empty.
func ClearDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("empty dir")
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

type entryFile struct {
	path    string
	modTime time.Time
}

func listEntries(dir string) ([]entryFile, error) {
	var out []entryFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		out = append(out, entryFile{path: path, modTime: info.ModTime()})
		return nil
	})
	return out, err
}

// PurgeByAge removes entries whose modification time is older than maxAge.
func PurgeByAge(dir string, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	entries, err := listEntries(dir)
	if err != nil {
		return 0, err
	}
	now := time.Now()
	removed := 0
	for _, e := range entries {
		if now.Sub(e.modTime) <= maxAge {
			continue
		}
		if os.Remove(e.path) == nil {
			removed++
		}
	}
	return removed, nil
}

// EnforceLimits keeps at most maxEntries entries, evicting the least recently
// used first. Zero disables the limit.
func EnforceLimits(dir string, maxEntries int) (int, error) {
	if maxEntries <= 0 {
		return 0, nil
	}
	entries, err := listEntries(dir)
	if err != nil {
		return 0, err
	}
	if len(entries) <= maxEntries {
		return 0, nil
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].modTime.Before(entries[j].modTime) })
	removed := 0
	for _, e := range entries[:len(entries)-maxEntries] {
		if os.Remove(e.path) == nil {
			removed++
		}
	}
	return removed, nil
}
