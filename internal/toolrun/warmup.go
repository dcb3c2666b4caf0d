package toolrun

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"clipper/internal/logging"
)

// Warmup fires a "-version" invocation of every tool concurrently in the
// background and discards the results. The first spawn of a freshly installed
// or freshly scanned binary can be slow; paying that cost up front keeps real
// requests fast.
//
// The returned channel closes once every invocation has finished. Request
// paths never wait on it; it exists for shutdown and tests.
func Warmup(ctx context.Context, runner Runner, logger *slog.Logger, tools ...string) <-chan struct{} {
	done := make(chan struct{})
	if runner == nil || len(tools) == 0 {
		close(done)
		return done
	}
	logger = logging.NewComponentLogger(logger, "warmup")

	go func() {
		defer close(done)
		started := time.Now()
		var wg sync.WaitGroup
		for _, tool := range tools {
			wg.Add(1)
			go func(tool string) {
				defer wg.Done()
				result, err := runner.Run(ctx, tool, []string{"-version"})
				if err != nil {
					logger.Debug("warm-up invocation failed", logging.String("tool", tool), logging.Error(err))
					return
				}
				logger.Debug("warm-up invocation finished",
					logging.String("tool", tool),
					logging.Int("exit_code", result.ExitCode),
				)
			}(tool)
		}
		wg.Wait()
		logger.Debug("external tools warmed up", logging.Duration("elapsed", time.Since(started)))
	}()
	return done
}
