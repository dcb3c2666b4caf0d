// Package ffprobe wraps the two ffprobe invocations clipper needs.
//
// ProbeDuration is the lightweight query used by silence analysis to bound
// the trailing clip; it never fails, returning 0 when the duration is
// unknown. Inspect decodes the full JSON stream/format report and backs the
// `clipper status --probe` diagnostic.
//
// Both go through toolrun.Runner so tests can supply canned output.
package ffprobe
