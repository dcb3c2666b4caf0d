package daemonctl_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"testing"
	"time"

	"clipper/internal/api"
	"clipper/internal/clip"
	"clipper/internal/daemonctl"
	"clipper/internal/testsupport"
)

func TestClientStatusSendsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("expected bearer token, got %q", got)
		}
		_ = json.NewEncoder(w).Encode(api.StatusResponse{Running: true, PID: 42, APIBind: "127.0.0.1:1"})
	}))
	defer srv.Close()

	client := daemonctl.NewClient(srv.URL, "tok")
	status, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running || status.PID != 42 {
		t.Fatalf("unexpected status %+v", status)
	}

	alive, pid, err := daemonctl.ProcessInfo(context.Background(), client)
	if err != nil || !alive || pid != 42 {
		t.Fatalf("ProcessInfo = %v, %d, %v", alive, pid, err)
	}
}

func TestClientDetectAndExport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/detect":
			var req api.DetectRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode detect: %v", err)
			}
			if req.Source != "/media/in.mp4" || req.Threshold == nil || *req.Threshold != -40 {
				t.Errorf("unexpected detect request %+v", req)
			}
			_ = json.NewEncoder(w).Encode(api.DetectResponse{Clips: []clip.Clip{{Source: req.Source, Start: 1, End: 3}}})
		case "/api/export":
			var req api.ExportRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode export: %v", err)
			}
			clips, err := clip.DecodeList(req.Clips)
			if err != nil || len(clips) != 1 {
				t.Errorf("unexpected clips %v (%v)", clips, err)
			}
			_ = json.NewEncoder(w).Encode(api.ExportResponse{OutputPath: req.OutputPath})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := daemonctl.NewClient(strings.TrimPrefix(srv.URL, "http://"), "")
	threshold := -40
	clips, err := client.Detect(context.Background(), api.DetectRequest{Source: "/media/in.mp4", Threshold: &threshold})
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(clips) != 1 || clips[0].End != 3 {
		t.Fatalf("unexpected clips %v", clips)
	}

	out, err := client.Export(context.Background(), clips, "/out/final.mp4")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if out != "/out/final.mp4" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestClientMapsRemoteErrorKind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "not found: no clips", Kind: clip.KindNotFound})
	}))
	defer srv.Close()

	_, err := daemonctl.NewClient(srv.URL, "").Detect(context.Background(), api.DetectRequest{Source: "x"})
	var remote *daemonctl.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remote.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status %d", remote.StatusCode)
	}
	if got := clip.Kind(err); got != clip.KindNotFound {
		t.Fatalf("expected kind %q, got %q", clip.KindNotFound, got)
	}
}

func TestClientReportsUnreachableDaemon(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	client := daemonctl.NewClient(addr, "")
	if _, err := client.Status(context.Background()); !errors.Is(err, daemonctl.ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
	alive, _, err := daemonctl.ProcessInfo(context.Background(), client)
	if err != nil || alive {
		t.Fatalf("ProcessInfo = %v, %v", alive, err)
	}
	if err := daemonctl.WaitForShutdown(context.Background(), client, time.Second); err != nil {
		t.Fatalf("WaitForShutdown: %v", err)
	}
}

func TestBuildStatusSnapshotOffline(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	cfg.Paths.APIBind = ln.Addr().String()
	_ = ln.Close()

	snapshot, err := daemonctl.BuildStatusSnapshot(context.Background(), cfg, daemonctl.NewClientFromConfig(cfg))
	if err != nil {
		t.Fatalf("BuildStatusSnapshot: %v", err)
	}
	if snapshot.Running {
		t.Fatal("expected offline snapshot")
	}
	if snapshot.LockPath != daemonctl.LockPath(cfg) {
		t.Fatalf("unexpected lock path %q", snapshot.LockPath)
	}
	if len(snapshot.Dependencies) == 0 {
		t.Fatal("expected dependency checks in offline snapshot")
	}
	if len(snapshot.Checks) == 0 {
		t.Fatal("expected preflight checks in offline snapshot")
	}
}

func TestReadPID(t *testing.T) {
	dir := t.TempDir()
	missing := dir + "/none.pid"
	if pid, err := daemonctl.ReadPID(missing); err != nil || pid != 0 {
		t.Fatalf("missing pid file: %d, %v", pid, err)
	}

	valid := dir + "/ok.pid"
	if err := os.WriteFile(valid, []byte("1234\n"), 0o644); err != nil {
		t.Fatalf("write pid: %v", err)
	}
	if pid, err := daemonctl.ReadPID(valid); err != nil || pid != 1234 {
		t.Fatalf("valid pid file: %d, %v", pid, err)
	}

	garbage := dir + "/bad.pid"
	if err := os.WriteFile(garbage, []byte("abc"), 0o644); err != nil {
		t.Fatalf("write pid: %v", err)
	}
	if _, err := daemonctl.ReadPID(garbage); err == nil {
		t.Fatal("expected error for malformed pid file")
	}
}

func TestStopWithoutPIDFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := daemonctl.Stop(context.Background(), cfg, time.Second); !errors.Is(err, daemonctl.ErrDaemonNotRunning) {
		t.Fatalf("expected ErrDaemonNotRunning, got %v", err)
	}
}

func TestStopTerminatesProcess(t *testing.T) {
	sleepBin, err := exec.LookPath("sleep")
	if err != nil {
		t.Skip("sleep binary not available")
	}
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	cmd := exec.Command(sleepBin, "30")
	if err := cmd.Start(); err != nil {
		t.Fatalf("start sleep: %v", err)
	}
	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		<-exited
	})

	pidPath := daemonctl.PIDPath(cfg)
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(cmd.Process.Pid)+"\n"), 0o644); err != nil {
		t.Fatalf("write pid: %v", err)
	}

	result, err := daemonctl.Stop(context.Background(), cfg, 5*time.Second)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !result.Signalled || result.PID != cmd.Process.Pid {
		t.Fatalf("unexpected result %+v", result)
	}
	select {
	case <-exited:
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit after SIGTERM")
	}
}
