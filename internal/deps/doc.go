// Package deps checks that the external binaries clipper spawns are
// installed, and resolves which ffprobe pairs with the configured ffmpeg.
package deps
