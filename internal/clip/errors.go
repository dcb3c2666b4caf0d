package clip

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrIO             = errors.New("io error")
	ErrNotFound       = errors.New("not found")
	ErrToolInvocation = errors.New("tool invocation error")
	ErrSerialization  = errors.New("serialization error")
	ErrCanceled       = errors.New("canceled")
)

// Error kinds reported by Kind.
const (
	KindIO             = "io"
	KindNotFound       = "not_found"
	KindToolInvocation = "tool_invocation"
	KindSerialization  = "serialization"
	KindCanceled       = "canceled"
	KindInternal       = "internal"
)

// Wrap builds an error message that includes operation context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// ToolError reports an external process that could not be spawned or exited
// unsuccessfully. Diagnostic carries the tool's raw stderr when available.
type ToolError struct {
	Tool       string
	Operation  string
	ClipIndex  int
	ExitCode   int
	Diagnostic string
	Err        error
}

// NewToolError builds a ToolError that is not scoped to a single clip.
func NewToolError(tool, operation string, exitCode int, diagnostic string, err error) *ToolError {
	return &ToolError{
		Tool:       tool,
		Operation:  operation,
		ClipIndex:  -1,
		ExitCode:   exitCode,
		Diagnostic: strings.TrimSpace(diagnostic),
		Err:        err,
	}
}

func (e *ToolError) Error() string {
	var b strings.Builder
	b.WriteString(ErrToolInvocation.Error())
	b.WriteString(": ")
	if e.Operation != "" {
		b.WriteString(e.Operation)
	} else {
		b.WriteString("run")
	}
	if e.ClipIndex >= 0 {
		fmt.Fprintf(&b, " clip %d", e.ClipIndex)
	}
	if e.Tool != "" {
		fmt.Fprintf(&b, " (%s)", e.Tool)
	}
	switch {
	case e.Err != nil:
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	case e.ExitCode != 0:
		fmt.Fprintf(&b, ": exit status %d", e.ExitCode)
	}
	if e.Diagnostic != "" {
		b.WriteString(": ")
		b.WriteString(e.Diagnostic)
	}
	return b.String()
}

func (e *ToolError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrToolInvocation}
	}
	return []error{ErrToolInvocation, e.Err}
}

// ErrorKind implements the classifier consulted by Kind.
func (e *ToolError) ErrorKind() string { return KindToolInvocation }

// ErrorClassifier allows errors to declare their classification.
type ErrorClassifier interface {
	ErrorKind() string
}

// Kind maps an error onto one of the Kind* constants. Unknown errors are
// classified as internal.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		return classifier.ErrorKind()
	}
	switch {
	case errors.Is(err, ErrCanceled):
		return KindCanceled
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrToolInvocation):
		return KindToolInvocation
	case errors.Is(err, ErrSerialization):
		return KindSerialization
	case errors.Is(err, ErrIO):
		return KindIO
	default:
		return KindInternal
	}
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "clip failure"
	}
	return strings.Join(parts, ": ")
}
