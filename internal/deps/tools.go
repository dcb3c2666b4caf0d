package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const defaultProbeName = "ffprobe"

// ToolRequirements lists the binaries the detect and export pipelines spawn.
func ToolRequirements(ffmpeg, ffprobe string) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     ffmpeg,
			Description: "Silence detection, clip extraction, and concatenation",
		},
		{
			Name:        "FFprobe",
			Command:     ResolveFFprobe(ffmpeg, ffprobe),
			Description: "Source duration probing (analysis continues without it)",
			Optional:    true,
		},
	}
}

// ResolveFFprobe returns the ffprobe command to run.
//
// Static ffmpeg builds ship ffprobe in the same directory. When ffmpeg is
// configured by path and ffprobe is left at its default name, an executable
// ffprobe next to ffmpeg is preferred over whatever PATH resolves.
func ResolveFFprobe(ffmpegCommand, ffprobeCommand string) string {
	probe := strings.TrimSpace(ffprobeCommand)
	if probe != "" && probe != defaultProbeName {
		return probe
	}
	ffmpegCommand = strings.TrimSpace(ffmpegCommand)
	if ffmpegCommand != "" && strings.ContainsRune(ffmpegCommand, os.PathSeparator) {
		if candidate, ok := sidecarCandidate(ffmpegCommand); ok {
			if info, err := os.Stat(candidate); err == nil && isExecutable(info) {
				return candidate
			}
		}
	}
	return defaultProbeName
}

func sidecarCandidate(ffmpegPath string) (string, bool) {
	if ffmpegPath == "" {
		return "", false
	}
	dir := filepath.Dir(ffmpegPath)
	name := defaultProbeName
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(dir, name), true
}

func isExecutable(info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
