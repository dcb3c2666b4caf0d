// Package logs tails the daemon's JSON event log for `clipper logs`.
//
// Tail reads the last N lines or everything after a saved offset with bounded
// memory, and in follow mode polls for new lines until a wait elapses. Filter
// narrows JSON lines by level, component, or request correlation ID.
package logs
