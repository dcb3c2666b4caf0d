// Package daemonctl controls a clipperd process from the CLI.
//
// Client wraps the daemon HTTP API (status, detect, export) and maps error
// responses back onto clip error kinds. Stop signals the process recorded in
// the daemon pid file and escalates to SIGKILL after a grace period.
// BuildStatusSnapshot falls back to local dependency and preflight checks when
// the daemon does not answer.
package daemonctl
