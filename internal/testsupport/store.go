package testsupport

import (
	"context"
	"testing"

	"hitqueue/internal/config"
	"hitqueue/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config, opts ...queue.Option) *queue.Store {
	t.Helper()

	store, err := queue.OpenConfig(cfg, opts...)
	if err != nil {
		t.Fatalf("queue.OpenConfig: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// AddPayloads appends one record per payload and fails the test on rejection.
func AddPayloads(t testing.TB, store *queue.Store, payloads ...string) []queue.Record {
	t.Helper()

	records := make([]queue.Record, 0, len(payloads))
	for _, payload := range payloads {
		rec := queue.NewRecord(payload)
		if !store.Add(context.Background(), rec) {
			t.Fatalf("store.Add(%q) rejected", payload)
		}
		records = append(records, rec)
	}
	return records
}
