package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"clipper/internal/api"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func shouldColorize(writer io.Writer) bool {
	return isTerminal(writer) && os.Getenv("NO_COLOR") == ""
}

// dependencyLines renders a summary line, one line per dependency, and a
// trailing list of missing names when any are unavailable.
func dependencyLines(deps []api.DependencyStatus, colorize bool) []string {
	lines := make([]string, 0, len(deps)+2)
	kind, detail := summarizeDependencies(deps)
	lines = append(lines, renderStatusLine("Summary", kind, detail, colorize))

	var missing []string
	for _, dep := range deps {
		if dep.Available {
			message := "Ready"
			switch {
			case dep.Path != "":
				message = fmt.Sprintf("Ready (%s)", dep.Path)
			case dep.Command != "":
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}
		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
		missing = append(missing, dep.Name)
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn, strings.Join(missing, ", "), colorize))
	}
	return lines
}

func summarizeDependencies(deps []api.DependencyStatus) (statusKind, string) {
	if len(deps) == 0 {
		return statusInfo, "No dependencies reported"
	}
	var requiredMissing, optionalMissing int
	for _, dep := range deps {
		if dep.Available {
			continue
		}
		if dep.Optional {
			optionalMissing++
		} else {
			requiredMissing++
		}
	}
	switch {
	case requiredMissing > 0:
		return statusError, fmt.Sprintf("%d required missing", requiredMissing)
	case optionalMissing > 0:
		return statusWarn, fmt.Sprintf("%d optional missing", optionalMissing)
	default:
		return statusOK, fmt.Sprintf("All %d available", len(deps))
	}
}

func checkLines(checks []api.CheckResult, colorize bool) []string {
	lines := make([]string, 0, len(checks))
	for _, check := range checks {
		kind := statusOK
		if !check.Passed {
			kind = statusError
		}
		lines = append(lines, renderStatusLine(check.Name, kind, check.Detail, colorize))
	}
	return lines
}

func daemonLine(status *api.StatusResponse, colorize bool) string {
	if status == nil || !status.Running {
		return renderStatusLine("Daemon", statusInfo, "Not running", colorize)
	}
	detail := fmt.Sprintf("Running (pid %d", status.PID)
	if status.APIBind != "" {
		detail += ", " + status.APIBind
	}
	detail += ")"
	return renderStatusLine("Daemon", statusOK, detail, colorize)
}
