// Package main hosts the clipper CLI.
//
// The Cobra command tree runs silence detection and clip export either in
// process or against a running clipperd (--remote), manages the SQLite
// recording library, reports dependency and directory health, and scaffolds
// configuration. `clipper serve` runs the daemon in the foreground, `clipper
// stop` ends it, and `clipper logs` tails its event log.
package main
