package hit_test

import (
	"context"
	"testing"
	"time"

	"hitqueue/internal/hit"
	"hitqueue/internal/queue"
)

func TestBackoffFixedWhenBaseEqualsMax(t *testing.T) {
	b := hit.NewBackoff(30*time.Second, 30*time.Second)
	for i := 0; i < 5; i++ {
		b.Failure("a")
		if got := b.Interval("a"); got != 30*time.Second {
			t.Fatalf("failure %d: got %s", i+1, got)
		}
	}
}

func TestBackoffExponentialPerID(t *testing.T) {
	b := hit.NewBackoff(time.Second, 10*time.Second)
	if got := b.Interval("a"); got != time.Second {
		t.Fatalf("expected base before any failure, got %s", got)
	}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 10 * time.Second, 10 * time.Second}
	for i, w := range want {
		b.Failure("a")
		if got := b.Interval("a"); got != w {
			t.Fatalf("failure %d: got %s want %s", i+1, got, w)
		}
	}
	if got := b.Interval("b"); got != time.Second {
		t.Fatalf("expected independent history for b, got %s", got)
	}
	b.Reset("a")
	if b.Attempts("a") != 0 {
		t.Fatal("expected reset to clear attempts")
	}
}

func TestBackoffZeroBoundsRetryImmediately(t *testing.T) {
	var zero hit.Backoff
	zero.Failure("a")
	if got := zero.Interval("a"); got != 0 {
		t.Fatalf("zero value: got %s want 0", got)
	}
	b := hit.NewBackoff(0, 0)
	b.Failure("a")
	if got := b.Interval("a"); got != 0 {
		t.Fatalf("explicit zero: got %s want 0", got)
	}
}

func TestBackoffZeroBaseStillGrows(t *testing.T) {
	b := hit.NewBackoff(0, 5*time.Second)
	want := []time.Duration{hit.MinRetryStep, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for i, w := range want {
		b.Failure("a")
		if got := b.Interval("a"); got != w {
			t.Fatalf("failure %d: got %s want %s", i+1, got, w)
		}
	}
}

func TestBackoffKeepAndResetAllPrune(t *testing.T) {
	b := hit.NewBackoff(time.Second, time.Minute)
	for _, id := range []string{"a", "b", "c"} {
		b.Failure(id)
	}
	b.Keep("b")
	if b.Tracked() != 1 || b.Attempts("b") != 1 {
		t.Fatalf("Keep should leave only b, tracked=%d", b.Tracked())
	}
	b.ResetAll()
	if b.Tracked() != 0 {
		t.Fatalf("ResetAll left %d entries", b.Tracked())
	}
}

func TestFuncsDefaults(t *testing.T) {
	var f hit.Funcs
	got := make(chan bool, 1)
	f.ProcessHit(context.Background(), queue.NewRecord("x"), func(ok bool) { got <- ok })
	if ok := <-got; !ok {
		t.Fatal("expected nil Process to report success")
	}
	if d := f.RetryInterval(queue.NewRecord("x")); d != 0 {
		t.Fatalf("expected zero retry interval, got %s", d)
	}
}
