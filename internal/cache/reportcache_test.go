package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestReportCache_SaveGet(t *testing.T) {
	tmp := t.TempDir()
	c := &ReportCache{Dir: tmp}
	key := KeyFrom("model", "prompt")
	if err := c.Save(context.Background(), key, Entry{Model: "model", Report: "FINDINGS: clear"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := c.Get(context.Background(), key)
	if err != nil || !ok {
		t.Fatalf("get: %v ok=%v", err, ok)
	}
	if got.Report != "FINDINGS: clear" || got.Model != "model" {
		t.Fatalf("mismatch: %+v", got)
	}
	if got.SavedAt.IsZero() {
		t.Fatalf("expected SavedAt stamped")
	}
}

func TestReportCache_MissAndCorrupt(t *testing.T) {
	tmp := t.TempDir()
	c := &ReportCache{Dir: tmp}
	if _, ok, err := c.Get(context.Background(), "absent"); ok || err != nil {
		t.Fatalf("expected clean miss, ok=%v err=%v", ok, err)
	}
	if err := os.WriteFile(filepath.Join(tmp, "bad.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(context.Background(), "bad"); ok {
		t.Fatalf("corrupt entry must be a miss")
	}
}

func TestReportCache_NoDir(t *testing.T) {
	var c *ReportCache
	if _, _, err := c.Get(context.Background(), "k"); err == nil {
		t.Fatalf("expected error for unconfigured cache")
	}
}

func TestKeyFrom_DependsOnModel(t *testing.T) {
	if KeyFrom("a", "p") == KeyFrom("b", "p") {
		t.Fatalf("keys must differ by model")
	}
}

func TestReportCache_StrictPerms(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	c := &ReportCache{Dir: dir, StrictPerms: true}
	key := KeyFrom("m", "p")
	if err := c.Save(context.Background(), key, Entry{Report: "x"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat dir: %v", err)
	}
	if got := info.Mode() & 0o777; got != 0o700 {
		t.Fatalf("dir mode = %o, want 0700", got)
	}
	finfo, err := os.Stat(filepath.Join(dir, key+".json"))
	if err != nil {
		t.Fatalf("stat file: %v", err)
	}
	if got := finfo.Mode() & 0o777; got != 0o600 {
		t.Fatalf("file mode = %o, want 0600", got)
	}
}

func TestEnforceLimits_EvictsLeastRecentlyUsed(t *testing.T) {
	tmp := t.TempDir()
	c := &ReportCache{Dir: tmp}
	keys := []string{KeyFrom("m", "p1"), KeyFrom("m", "p2"), KeyFrom("m", "p3")}
	base := time.Now().Add(-time.Hour)
	for i, k := range keys {
		if err := c.Save(context.Background(), k, Entry{Report: "r"}); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
		ts := base.Add(time.Duration(i) * time.Minute)
		_ = os.Chtimes(filepath.Join(tmp, k+".json"), ts, ts)
	}
	// Touch p1 so p2 becomes the oldest.
	if _, ok, _ := c.Get(context.Background(), keys[0]); !ok {
		t.Fatal("expected hit")
	}
	removed, err := EnforceLimits(tmp, 2)
	if err != nil {
		t.Fatalf("enforce: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, ok, _ := c.Get(context.Background(), keys[1]); ok {
		t.Fatal("expected p2 evicted")
	}
}

func TestPurgeByAge(t *testing.T) {
	tmp := t.TempDir()
	c := &ReportCache{Dir: tmp}
	oldKey, newKey := KeyFrom("m", "old"), KeyFrom("m", "new")
	_ = c.Save(context.Background(), oldKey, Entry{Report: "o"})
	_ = c.Save(context.Background(), newKey, Entry{Report: "n"})
	past := time.Now().Add(-48 * time.Hour)
	_ = os.Chtimes(filepath.Join(tmp, oldKey+".json"), past, past)

	removed, err := PurgeByAge(tmp, 24*time.Hour)
	if err != nil || removed != 1 {
		t.Fatalf("purge: removed=%d err=%v", removed, err)
	}
	if _, ok, _ := c.Get(context.Background(), newKey); !ok {
		t.Fatalf("fresh entry should survive")
	}
}

func TestClearDir(t *testing.T) {
	tmp := t.TempDir()
	_ = os.WriteFile(filepath.Join(tmp, "x.json"), []byte("{}"), 0o644)
	if err := ClearDir(tmp); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, _ := os.ReadDir(tmp)
	if len(entries) != 0 {
		t.Fatalf("expected empty dir, got %d entries", len(entries))
	}
	if err := ClearDir("  "); err == nil {
		t.Fatalf("expected error for blank dir")
	}
}
