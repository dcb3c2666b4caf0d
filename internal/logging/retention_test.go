package logging_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"clipper/internal/logging"
)

func writeAged(t *testing.T, path string, age time.Duration) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	stamp := time.Now().Add(-age)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "clipperd-20250101T000000.000Z.log")
	current := filepath.Join(dir, "clipperd-20250102T000000.000Z.log")
	fresh := filepath.Join(dir, "clipperd-20991231T000000.000Z.log")
	unrelated := filepath.Join(dir, "notes.txt")
	writeAged(t, old, 30*24*time.Hour)
	writeAged(t, current, 30*24*time.Hour)
	writeAged(t, fresh, time.Hour)
	writeAged(t, unrelated, 30*24*time.Hour)

	removed := logging.CleanupOldLogs(logging.NewNop(), 14, logging.RetentionTarget{
		Dir:     dir,
		Pattern: "clipperd-*.log",
		Exclude: []string{current},
	})
	if removed != 1 {
		t.Fatalf("expected 1 file removed, got %d", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected old log removed, stat err %v", err)
	}
	for _, keep := range []string{current, fresh, unrelated} {
		if _, err := os.Stat(keep); err != nil {
			t.Fatalf("expected %s kept: %v", keep, err)
		}
	}
}

func TestCleanupOldLogsDisabled(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "clipperd-old.log")
	writeAged(t, old, 365*24*time.Hour)

	if removed := logging.CleanupOldLogs(nil, 0, logging.RetentionTarget{Dir: dir, Pattern: "*.log"}); removed != 0 {
		t.Fatalf("expected pruning disabled, removed %d", removed)
	}
	if _, err := os.Stat(old); err != nil {
		t.Fatalf("expected file kept: %v", err)
	}
}
