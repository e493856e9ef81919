package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"hitqueue/internal/ipc"
	"hitqueue/internal/testsupport"
)

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := env.run(t, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, stdout, "== Daemon ==")
	requireContains(t, stdout, "[WARN] unknown")
	requireContains(t, stdout, "[WARN] suspended")
	requireContains(t, stdout, env.cfg.Delivery.Endpoint)

	stdout, _, err = env.run(t, "status", "--json")
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}
	var status ipc.StatusResponse
	if err := json.Unmarshal([]byte(stdout), &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.Running || status.Scheduler.Queue != env.cfg.Queue.Name {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestEnqueueAndListCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := env.run(t, "enqueue", `{"event":"page_view"}`)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	requireContains(t, stdout, "Queued hit ")

	payloadFile := filepath.Join(t.TempDir(), "hit.json")
	testsupport.WriteFile(t, payloadFile, "second\nhit")
	if _, _, err := env.run(t, "enqueue", "--file", payloadFile); err != nil {
		t.Fatalf("enqueue --file: %v", err)
	}

	stdout, _, err = env.run(t, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, stdout, `{"event":"page_view"}`)
	requireContains(t, stdout, "second hit")

	stdout, _, err = env.run(t, "queue", "list", "--json", "--limit", "1")
	if err != nil {
		t.Fatalf("queue list --json: %v", err)
	}
	var peek ipc.PeekResponse
	if err := json.Unmarshal([]byte(stdout), &peek); err != nil {
		t.Fatalf("decode peek: %v", err)
	}
	if len(peek.Hits) != 1 || peek.Hits[0].Payload != `{"event":"page_view"}` {
		t.Fatalf("unexpected peek: %+v", peek.Hits)
	}

	stdout, _, err = env.run(t, "queue", "clear")
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	requireContains(t, stdout, "Cleared 2 hit(s)")

	stdout, _, err = env.run(t, "queue", "list")
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, stdout, "Queue is empty")
}

func TestEnqueueRequiresPayload(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := env.run(t, "enqueue"); err == nil {
		t.Fatal("expected enqueue without payload to fail")
	}
	if _, _, err := env.run(t, "enqueue", "x", "--file", "y"); err == nil {
		t.Fatal("expected enqueue with both payload sources to fail")
	}
	_, _, err := env.run(t, "enqueue", "--file", "-")
	if err == nil || !strings.Contains(err.Error(), "hit not queued") {
		t.Fatalf("expected empty stdin payload to be refused, got %v", err)
	}
}

func TestPrivacyAndResumeCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := env.run(t, "resume")
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	requireContains(t, stdout, "Delivery not resumed")

	if _, _, err := env.run(t, "enqueue", "doomed"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	stdout, _, err = env.run(t, "privacy", "opted-out")
	if err != nil {
		t.Fatalf("privacy: %v", err)
	}
	requireContains(t, stdout, "Privacy optedout; delivery suspended; 0 hit(s) queued")

	stdout, _, err = env.run(t, "suspend")
	if err != nil {
		t.Fatalf("suspend: %v", err)
	}
	requireContains(t, stdout, "Delivery suspended")

	if _, _, err := env.run(t, "privacy", "whenever"); err == nil {
		t.Fatal("expected invalid privacy status to fail")
	}
}

func TestQueueHealthCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	stdout, _, err := env.run(t, "queue", "health")
	if err != nil {
		t.Fatalf("queue health: %v", err)
	}
	requireContains(t, stdout, "Database path: "+env.daemon.Status().QueueDBPath)
	requireContains(t, stdout, "Integrity check: yes")
	requireContains(t, stdout, "Missing columns: none")
}

func TestMissingSocketReportsHint(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	t.Setenv("HOME", testsupport.BaseDir(cfg))
	configPath := filepath.Join(testsupport.BaseDir(cfg), "hitqueue.toml")
	writeTestConfig(t, configPath, cfg)

	socket := filepath.Join(testsupport.BaseDir(cfg), "missing.sock")
	_, _, err := runCLI(t, []string{"status"}, socket, configPath)
	if err == nil {
		t.Fatal("expected status to fail without a daemon")
	}
	requireContains(t, err.Error(), "not found")
}

func TestPreviewPayload(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"a  b\n\tc", 10, "a b c"},
		{"abcdefghij", 8, "abcde..."},
		{"abcdef", 3, "abc"},
		{"héllo wörld", 7, "héll..."},
	}
	for _, tt := range tests {
		if got := previewPayload(tt.in, tt.width); got != tt.want {
			t.Errorf("previewPayload(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
