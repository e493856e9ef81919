package main

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"hitqueue/internal/hit"
	"hitqueue/internal/ipc"
	"hitqueue/internal/logging"
	"hitqueue/internal/testsupport"
)

func TestRunServesUntilCancelled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, cfg, logging.NewNop())
	}()

	var client *ipc.Client
	deadline := time.Now().Add(5 * time.Second)
	for client == nil {
		c, err := ipc.Dial(cfg.Paths.SocketPath)
		if err == nil {
			client = c
			break
		}
		select {
		case err := <-done:
			cancel()
			if err != nil && strings.Contains(err.Error(), "operation not permitted") {
				t.Skipf("skipping daemon run test: %v", err)
			}
			t.Fatalf("run exited early: %v", err)
		default:
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("daemon socket never became reachable: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	status, err := client.Status()
	client.Close()
	if err != nil {
		cancel()
		t.Fatalf("Status RPC failed: %v", err)
	}
	if !status.Running {
		t.Fatalf("expected running daemon, got %+v", status)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
	if _, err := os.Stat(cfg.Paths.SocketPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected socket removed after shutdown, stat err = %v", err)
	}
}

func TestRunRequiresEndpoint(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithEndpoint(""))
	err := run(context.Background(), cfg, logging.NewNop())
	if !errors.Is(err, hit.ErrEndpointRequired) {
		t.Fatalf("expected ErrEndpointRequired, got %v", err)
	}
}
