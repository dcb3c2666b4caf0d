// Package toolrun is the boundary to external processes (ffmpeg, ffprobe).
//
// Runner is the single capability both pipelines depend on: run a named
// binary with an argument list and hand back stdout, stderr, and the exit
// status. ExecRunner backs it with os/exec; tests substitute a fake that
// returns canned output without spawning anything. Warmup provides the
// detached start-up task that pre-spawns each tool once.
package toolrun
