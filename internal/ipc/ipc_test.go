package ipc_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"hitqueue/internal/daemon"
	"hitqueue/internal/ipc"
	"hitqueue/internal/logging"
	"hitqueue/internal/testsupport"
)

func startServer(t *testing.T, opts ...testsupport.ConfigOption) (*daemon.Daemon, *ipc.Client) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	logger := logging.NewNop()
	d, err := daemon.New(cfg, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}

	srv, err := ipc.NewServer(ctx, cfg.Paths.SocketPath, d, logger)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(func() {
		srv.Close()
	})

	client, err := ipc.Dial(cfg.Paths.SocketPath)
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})
	return d, client
}

func TestIPCServerClient(t *testing.T) {
	var received atomic.Int32
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			received.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(collector.Close)

	_, client := startServer(t, testsupport.WithEndpoint(collector.URL))

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running {
		t.Fatal("expected daemon to be running")
	}
	if status.Privacy != "unknown" || status.Scheduler.State != "suspended" {
		t.Fatalf("unexpected initial status: %+v", status)
	}

	for _, payload := range []string{"first", "second", "third"} {
		resp, err := client.Enqueue(payload)
		if err != nil {
			t.Fatalf("Enqueue RPC failed: %v", err)
		}
		if !resp.Accepted || resp.ID == "" {
			t.Fatalf("expected hit to be accepted, got %+v", resp)
		}
	}

	peek, err := client.Peek(2)
	if err != nil {
		t.Fatalf("Peek RPC failed: %v", err)
	}
	if len(peek.Hits) != 2 || peek.Hits[0].Payload != "first" || peek.Hits[1].Payload != "second" {
		t.Fatalf("unexpected peek: %+v", peek.Hits)
	}
	if _, err := client.Peek(0); err == nil {
		t.Fatal("expected Peek(0) to fail")
	}

	resume, err := client.Resume()
	if err != nil {
		t.Fatalf("Resume RPC failed: %v", err)
	}
	if resume.Resumed {
		t.Fatal("resume must be refused while privacy is unknown")
	}

	priv, err := client.Privacy("opted-in")
	if err != nil {
		t.Fatalf("Privacy RPC failed: %v", err)
	}
	if priv.Status != "optedin" {
		t.Fatalf("unexpected privacy response: %+v", priv)
	}

	deadline := time.After(5 * time.Second)
	for received.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for delivery, got %d hits", received.Load())
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}

	suspend, err := client.Suspend()
	if err != nil {
		t.Fatalf("Suspend RPC failed: %v", err)
	}
	if suspend.State != "suspended" {
		t.Fatalf("expected suspended state, got %q", suspend.State)
	}
	resume, err = client.Resume()
	if err != nil {
		t.Fatalf("Resume RPC failed: %v", err)
	}
	if !resume.Resumed {
		t.Fatalf("expected resume once opted in, got %+v", resume)
	}

	health, err := client.DatabaseHealth()
	if err != nil {
		t.Fatalf("DatabaseHealth RPC failed: %v", err)
	}
	if !health.DatabaseReadable || !health.IntegrityCheck {
		t.Fatalf("unexpected database health: %+v", health)
	}
}

func TestIPCClearAndOptOut(t *testing.T) {
	d, client := startServer(t)

	for _, payload := range []string{"a", "b"} {
		if _, err := client.Enqueue(payload); err != nil {
			t.Fatalf("Enqueue RPC failed: %v", err)
		}
	}
	cleared, err := client.Clear()
	if err != nil {
		t.Fatalf("Clear RPC failed: %v", err)
	}
	if cleared.Removed != 2 {
		t.Fatalf("expected 2 removed, got %d", cleared.Removed)
	}

	if _, err := client.Enqueue("c"); err != nil {
		t.Fatalf("Enqueue RPC failed: %v", err)
	}
	priv, err := client.Privacy("out")
	if err != nil {
		t.Fatalf("Privacy RPC failed: %v", err)
	}
	if priv.Count != 0 || priv.State != "suspended" {
		t.Fatalf("opt out should clear and suspend: %+v", priv)
	}
	if d.Status().Scheduler.Count != 0 {
		t.Fatal("daemon still holds hits after opt out")
	}

	if _, err := client.Privacy("maybe"); err == nil {
		t.Fatal("expected invalid privacy status to fail")
	}
}

func TestIPCEnqueueRejectsEmptyPayload(t *testing.T) {
	_, client := startServer(t)

	resp, err := client.Enqueue("")
	if err != nil {
		t.Fatalf("Enqueue RPC failed: %v", err)
	}
	if resp.Accepted || resp.Message == "" {
		t.Fatalf("expected empty payload to be refused, got %+v", resp)
	}
}
