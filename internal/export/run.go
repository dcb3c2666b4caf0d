package export

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"clipper/internal/logging"
)

// run owns the temporary artifacts of one export call. Names combine a
// millisecond timestamp with a per-run random token so concurrent exports
// sharing a temp directory never collide.
type run struct {
	dir       string
	ext       string
	stamp     string
	artifacts []string
}

func newRun(dir, ext string, now time.Time) *run {
	token := uuid.NewString()[:8]
	return &run{
		dir:   dir,
		ext:   ext,
		stamp: fmt.Sprintf("%d_%s", now.UnixMilli(), token),
	}
}

// clipPath returns and tracks the artifact path for clip index. Tracking
// happens before the tool runs so a partially written file is cleaned up too.
func (r *run) clipPath(index int) string {
	path := filepath.Join(r.dir, fmt.Sprintf("clip_%s_%d%s", r.stamp, index, r.ext))
	r.artifacts = append(r.artifacts, path)
	return path
}

func (r *run) manifestPath() string {
	path := filepath.Join(r.dir, fmt.Sprintf("concat_%s.txt", r.stamp))
	r.artifacts = append(r.artifacts, path)
	return path
}

// cleanup removes every tracked artifact. Failures are logged and never
// returned.
func (r *run) cleanup(logger *slog.Logger) {
	removed := 0
	for _, path := range r.artifacts {
		err := os.Remove(path)
		switch {
		case err == nil:
			removed++
		case errors.Is(err, fs.ErrNotExist):
		default:
			logger.Debug("temporary artifact cleanup failed",
				logging.String("path", path),
				logging.Error(err),
			)
		}
	}
	logger.Debug("temporary artifacts cleaned up",
		logging.Int("tracked", len(r.artifacts)),
		logging.Int("removed", removed),
	)
	r.artifacts = nil
}
