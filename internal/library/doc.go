// Package library persists recordings, their takes, and the speech clips
// detected from each take in SQLite.
//
// A recording owns numbered takes (one media file each) and an ordered list
// of clips. Re-detecting a take replaces its active clips while keeping the
// ones a user archived. ExportList turns the active clips into the
// clip.Clip list the exporter consumes.
//
// Schema changes are embedded SQL files under migrations/, applied in lexical
// order and recorded in schema_migrations. Deleting a recording or take
// cascades to its children.
package library
