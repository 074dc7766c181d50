package maintenance

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trentd187/f1-fansite/internal/datastore"
)

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}
}

func TestCleanCacheRemovesOnlyOldFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	old := now.Add(-10 * 24 * time.Hour)

	touch(t, filepath.Join(dir, "old.bin"), old)
	touch(t, filepath.Join(dir, "nested", "old.pkl"), old)
	touch(t, filepath.Join(dir, "fresh.bin"), now.Add(-time.Hour))

	removed, err := CleanCache(dir, 7*24*time.Hour, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removals, got %d", removed)
	}
	if _, err := os.Stat(filepath.Join(dir, "fresh.bin")); err != nil {
		t.Fatalf("fresh file should remain: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "nested")); err != nil {
		t.Fatalf("directories are left in place: %v", err)
	}
}

func TestCleanCacheMissingDir(t *testing.T) {
	removed, err := CleanCache(filepath.Join(t.TempDir(), "nope"), time.Hour, time.Now())
	if err != nil || removed != 0 {
		t.Fatalf("expected (0, nil), got (%d, %v)", removed, err)
	}
}

func TestReportFreshness(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "next-race.json"), time.Now().Add(-time.Hour))

	core, logs := observer.New(zapcore.InfoLevel)
	s := New(Options{
		Gateway:  datastore.New(root),
		Datasets: []string{"next-race", "latest-session"},
		Logger:   zap.New(core),
	})
	s.ReportFreshness()

	if n := logs.FilterMessage("dataset age").Len(); n != 1 {
		t.Fatalf("expected 1 age line, got %d", n)
	}
	missing := logs.FilterMessage("dataset unavailable").All()
	if len(missing) != 1 || missing[0].ContextMap()["dataset"] != "latest-session" {
		t.Fatalf("expected latest-session to be reported missing, got %+v", missing)
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := New(Options{Schedule: "every now and then"})
	if err := s.Start(); err == nil {
		t.Fatal("expected an error for an invalid cron spec")
	}

	s = New(Options{Schedule: "@hourly"})
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	<-s.Stop().Done()
}
