package testsupport

import (
	"context"
	"strings"
	"sync"

	"clipper/internal/toolrun"
)

// Call records one invocation seen by FakeRunner.
type Call struct {
	Name string
	Args []string
}

// Arg returns the value following flag in the call's arguments, or "".
func (c Call) Arg(flag string) string {
	for i := 0; i < len(c.Args)-1; i++ {
		if c.Args[i] == flag {
			return c.Args[i+1]
		}
	}
	return ""
}

// Last returns the final argument, which for ffmpeg is the destination.
func (c Call) Last() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[len(c.Args)-1]
}

// Responder produces the canned outcome for an invocation. index counts all
// calls made so far, starting at 0.
type Responder func(index int, call Call) (toolrun.Result, error)

// FakeRunner is a toolrun.Runner that never spawns processes. Calls are
// recorded and answered by Respond; a nil Respond succeeds with empty output.
type FakeRunner struct {
	Respond Responder

	mu    sync.Mutex
	calls []Call
}

// Run implements toolrun.Runner.
func (f *FakeRunner) Run(_ context.Context, name string, args []string) (toolrun.Result, error) {
	call := Call{Name: name, Args: append([]string(nil), args...)}
	f.mu.Lock()
	index := len(f.calls)
	f.calls = append(f.calls, call)
	respond := f.Respond
	f.mu.Unlock()

	if respond == nil {
		return toolrun.Result{}, nil
	}
	return respond(index, call)
}

// Calls returns a copy of every recorded invocation in order.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the recorded invocations of the named binary.
func (f *FakeRunner) CallsTo(name string) []Call {
	var matched []Call
	for _, call := range f.Calls() {
		if call.Name == name {
			matched = append(matched, call)
		}
	}
	return matched
}

// ByTool answers detector and prober invocations with fixed output: ffmpeg
// calls get stderr, ffprobe calls get stdout. Other binaries succeed silently.
func ByTool(ffmpegStderr, ffprobeStdout string) Responder {
	return func(_ int, call Call) (toolrun.Result, error) {
		switch {
		case strings.Contains(call.Name, "ffprobe"):
			return toolrun.Result{Stdout: []byte(ffprobeStdout)}, nil
		case strings.Contains(call.Name, "ffmpeg"):
			return toolrun.Result{Stderr: []byte(ffmpegStderr)}, nil
		default:
			return toolrun.Result{}, nil
		}
	}
}
