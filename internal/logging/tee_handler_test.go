package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestTeeHandlerCollapses(t *testing.T) {
	if h := TeeHandler(nil, nil); h != slog.DiscardHandler {
		t.Errorf("expected DiscardHandler for nil handlers, got %T", h)
	}

	inner := slog.NewJSONHandler(&bytes.Buffer{}, nil)
	if h := TeeHandler(nil, inner, nil); h != inner {
		t.Error("expected single handler to be returned unwrapped")
	}
}

func TestTeeHandlerLevels(t *testing.T) {
	var infoBuf, warnBuf bytes.Buffer
	h := TeeHandler(
		slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be disabled on every child")
	}

	slog.New(h).Info("queued")
	if infoBuf.Len() == 0 {
		t.Error("expected output in info handler")
	}
	if warnBuf.Len() != 0 {
		t.Errorf("warn handler received info record: %s", warnBuf.String())
	}
}

func TestTeeHandlerWithAttrsAndGroup(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := TeeHandler(slog.NewJSONHandler(&buf1, nil), slog.NewJSONHandler(&buf2, nil))

	logger := slog.New(h.WithAttrs([]slog.Attr{slog.String(FieldQueue, "hits")}).WithGroup("delivery"))
	logger.Info("test", slog.String("status", "503"))

	for i, buf := range []*bytes.Buffer{&buf1, &buf2} {
		if !bytes.Contains(buf.Bytes(), []byte(`"queue":"hits"`)) {
			t.Errorf("handler %d missing queue attr: %s", i, buf.String())
		}
		if !bytes.Contains(buf.Bytes(), []byte(`"delivery":{"status":"503"}`)) {
			t.Errorf("handler %d missing grouped attr: %s", i, buf.String())
		}
	}
}

func TestWarnWithContextFillsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	WarnWithContext(logger, "store reset", "queue_store_reset", String(FieldImpact, "hits discarded"))
	out := buf.String()
	for _, want := range []string{`"event_type":"queue_store_reset"`, `"impact":"hits discarded"`, `"error_hint":"check logs for details"`} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Errorf("missing %s in %s", want, out)
		}
	}
}
