// Package export assembles a list of clips into a single media file.
//
// An export runs three phases over artifacts private to the call:
//
//  1. Extraction: each clip is re-encoded from its source into its own
//     temporary file, strictly in order. The first failure stops the phase.
//  2. Manifest: the artifact paths are written, in input order, as an ffmpeg
//     concat list. That order is the playback order of the result.
//  3. Concatenation: ffmpeg's concat demuxer stream-copies the artifacts into
//     the destination, overwriting it.
//
// Every artifact and the manifest are removed when Export returns, on
// success, failure, or cancellation. Cleanup errors are logged, never
// returned.
package export
