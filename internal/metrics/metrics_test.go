package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hitqueue/internal/metrics"
)

func scrape(t *testing.T, c *metrics.Collector) string {
	t.Helper()
	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read scrape: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, body)
	}
	return string(body)
}

func TestCollectorExportsQueueMetrics(t *testing.T) {
	c := metrics.NewCollector("hits")
	c.RecordEnqueue(true)
	c.RecordEnqueue(true)
	c.RecordEnqueue(false)
	c.RecordResult(true, 20*time.Millisecond)
	c.RecordResult(false, 5*time.Millisecond)
	c.RecordStoreReset()
	c.SetQueueDepth(4)

	body := scrape(t, c)
	want := []string{
		`hitqueue_hits_enqueued_total{queue="hits"} 2`,
		`hitqueue_enqueue_rejected_total{queue="hits"} 1`,
		`hitqueue_hits_delivered_total{queue="hits"} 1`,
		`hitqueue_hit_failures_total{queue="hits"} 1`,
		`hitqueue_store_resets_total{queue="hits"} 1`,
		`hitqueue_queue_depth{queue="hits"} 4`,
		`hitqueue_delivery_seconds_count{queue="hits"} 2`,
	}
	for _, line := range want {
		if !strings.Contains(body, line) {
			t.Errorf("missing %q in scrape output", line)
		}
	}
}

func TestCollectorsAreIndependent(t *testing.T) {
	a := metrics.NewCollector("a")
	b := metrics.NewCollector("b")
	a.RecordEnqueue(true)

	if body := scrape(t, b); strings.Contains(body, `queue="a"`) {
		t.Fatal("expected private registries per collector")
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *metrics.Collector
	c.RecordEnqueue(true)
	c.RecordResult(false, time.Second)
	c.RecordStoreReset()
	c.SetQueueDepth(1)
	if c.Registry() != nil {
		t.Fatal("expected nil registry")
	}

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 from nil collector, got %d", rec.Code)
	}
}
