// Package daemon runs the long-lived clipper process a GUI shell talks to.
//
// It wires configuration, the tool runner, and the api.Service into a single
// lifecycle with flock-based locking to prevent multiple instances. Start
// also launches the detached tool warm-up and logs preflight failures as
// warnings; neither ever blocks or fails a request.
//
// The HTTP API lives in api_server.go: GET /api/status, POST /api/detect,
// and POST /api/export. Keep analysis and export logic in their own packages;
// the daemon only decodes requests, attaches a correlation ID, and maps error
// kinds onto status codes.
package daemon
