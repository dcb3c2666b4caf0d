// Package daemonrun hosts the clipperd process lifecycle shared by the
// clipperd binary and `clipper serve`: logger setup with a JSON event file,
// log retention, the stale export artifact sweep, the pid file, and daemon
// start/stop around signal handling.
package daemonrun
