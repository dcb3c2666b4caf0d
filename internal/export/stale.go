package export

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"clipper/internal/logging"
)

// artifactPatterns narrow the directory listing; artifactName confirms the
// exact shape newRun hands out so look-alike user files are left alone.
var (
	artifactPatterns = []string{"clip_*", "concat_*.txt"}
	artifactName     = regexp.MustCompile(`^(clip_[0-9]+_[0-9a-f]{8}_[0-9]+(\.[A-Za-z0-9]+)?|concat_[0-9]+_[0-9a-f]{8}\.txt)$`)
)

// SweepStale removes export artifacts in dir last modified before
// time.Now()-olderThan. A normal export cleans up after itself; this only
// catches files left by a process that was killed mid-export. It returns the
// number of files removed.
func SweepStale(dir string, olderThan time.Duration, logger *slog.Logger) int {
	dir = strings.TrimSpace(dir)
	if dir == "" || olderThan <= 0 {
		return 0
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	cutoff := time.Now().Add(-olderThan)

	removed := 0
	for _, pattern := range artifactPatterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		for _, path := range matches {
			if !artifactName.MatchString(filepath.Base(path)) {
				continue
			}
			info, err := os.Stat(path)
			if err != nil || info.IsDir() || !info.ModTime().Before(cutoff) {
				continue
			}
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				logger.Debug("stale artifact removal failed", logging.String("path", path), logging.Error(err))
				continue
			}
			removed++
		}
	}
	if removed > 0 {
		logger.Info("removed stale export artifacts",
			logging.String("dir", dir),
			logging.Int("removed", removed),
		)
	}
	return removed
}
