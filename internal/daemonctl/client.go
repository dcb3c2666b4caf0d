package daemonctl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"clipper/internal/api"
	"clipper/internal/clip"
)

// ErrDaemonNotRunning indicates the daemon API is unreachable.
var ErrDaemonNotRunning = errors.New("daemon not running")

// Client talks to a running clipperd over its HTTP API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a client for the daemon bound at bind (host:port or URL).
func NewClient(bind, token string) *Client {
	base := strings.TrimSpace(bind)
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		token:   strings.TrimSpace(token),
		http:    &http.Client{},
	}
}

// RemoteError is a failure reported by the daemon. It keeps the daemon's
// error kind so callers classify it like a local failure.
type RemoteError struct {
	StatusCode int
	Kind       string
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("daemon returned %d", e.StatusCode)
	}
	return e.Message
}

// ErrorKind implements clip.ErrorClassifier.
func (e *RemoteError) ErrorKind() string {
	if e.Kind == "" {
		return clip.KindInternal
	}
	return e.Kind
}

// Status fetches the daemon's runtime snapshot.
func (c *Client) Status(ctx context.Context) (*api.StatusResponse, error) {
	var resp api.StatusResponse
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Detect asks the daemon to analyze a source file.
func (c *Client) Detect(ctx context.Context, req api.DetectRequest) ([]clip.Clip, error) {
	var resp api.DetectResponse
	if err := c.do(ctx, http.MethodPost, "/api/detect", req, &resp); err != nil {
		return nil, err
	}
	if resp.Clips == nil {
		return []clip.Clip{}, nil
	}
	return resp.Clips, nil
}

// Export asks the daemon to assemble clips into outputPath.
func (c *Client) Export(ctx context.Context, clips []clip.Clip, outputPath string) (string, error) {
	raw, err := clip.EncodeList(clips)
	if err != nil {
		return "", err
	}
	var resp api.ExportResponse
	req := api.ExportRequest{Clips: json.RawMessage(raw), OutputPath: outputPath}
	if err := c.do(ctx, http.MethodPost, "/api/export", req, &resp); err != nil {
		return "", err
	}
	return resp.OutputPath, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return clip.Wrap(clip.ErrSerialization, "daemon request", "encode body", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build daemon request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isDaemonUnavailable(err) {
			return ErrDaemonNotRunning
		}
		return fmt.Errorf("daemon request %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return clip.Wrap(clip.ErrIO, "daemon request", "read response", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		remote := &RemoteError{StatusCode: resp.StatusCode}
		var payload api.ErrorResponse
		if json.Unmarshal(data, &payload) == nil {
			remote.Kind = payload.Kind
			remote.Message = payload.Error
		} else {
			remote.Message = strings.TrimSpace(string(data))
		}
		return remote
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return clip.Wrap(clip.ErrSerialization, "daemon request", "decode response", err)
	}
	return nil
}

// ProcessInfo reports whether the daemon API answers and the PID it reports.
func ProcessInfo(ctx context.Context, client *Client) (bool, int, error) {
	status, err := client.Status(ctx)
	if errors.Is(err, ErrDaemonNotRunning) {
		return false, 0, nil
	}
	if err != nil {
		return true, 0, err
	}
	return status.Running, status.PID, nil
}

// WaitForShutdown polls until the daemon API stops answering.
func WaitForShutdown(ctx context.Context, client *Client, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		pollCtx, cancel := context.WithTimeout(ctx, time.Second)
		alive, _, err := ProcessInfo(pollCtx, client)
		cancel()
		if err == nil && !alive {
			return nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("daemon still running")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for shutdown")
	}
	return fmt.Errorf("daemon did not stop: %w", lastErr)
}

func isDaemonUnavailable(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
