// Package clip defines the time-bounded clip reference shared by silence
// analysis and export, together with the error taxonomy both pipelines report.
//
// Errors are tagged with one of the sentinel markers (ErrIO, ErrNotFound,
// ErrToolInvocation, ErrSerialization) so callers can classify failures with
// errors.Is or Kind without parsing messages. External process failures are
// surfaced as *ToolError, which keeps the tool's raw diagnostic text.
package clip
