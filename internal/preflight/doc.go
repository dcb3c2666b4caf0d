// Package preflight provides readiness checks for the filesystem paths and
// external tools clipper depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at start and reports failures as warnings.
//   - The CLI "clipper status" command renders every check, plus an optional
//     ffprobe inspection of a source file (ProbeMedia).
package preflight
