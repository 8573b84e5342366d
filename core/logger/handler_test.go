package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestLogger(format logFormat) (*slog.Logger, *asyncWriter, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf})
	h := newStructuredHandler(handlerConfig{
		level:    slog.LevelDebug,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	return slog.New(h), aw, buf
}

func flushLine(t *testing.T, aw *asyncWriter, buf *bytes.Buffer) string {
	t.Helper()
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected a log line")
	}
	return line
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	log, aw, buf := newTestLogger(formatKV)
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	log.With("component", "ledger").LogAttrs(ctx, slog.LevelInfo, "expense.recorded",
		slog.String("status", "ok"),
		slog.String("category", "кофе с собой"),
	)
	line := flushLine(t, aw, buf)

	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=ledger", "event=expense.recorded", "status=ok", "rid=rid-123", "update_id=42", "chat_id=9", "user_id=7"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
	if !strings.Contains(line, `category="кофе с собой"`) {
		t.Fatalf("values with spaces must be quoted: %s", line)
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	log, aw, buf := newTestLogger(formatJSON)
	ctx := WithHandler(context.Background(), "text")

	log.With("component", "store").LogAttrs(ctx, slog.LevelError, "document.save",
		slog.String("status", "error"),
		slog.String("err", "disk full"),
		slog.Duration("duration", 1500*time.Microsecond),
	)
	line := flushLine(t, aw, buf)

	ordered := []string{`{"ts":`, `"level":"ERROR"`, `"component":"store"`, `"event":"document.save"`, `"status":"fail"`, `"handler":"text"`, `"duration_ms":2`, `"err":"disk full"`}
	pos := -1
	for _, pref := range ordered {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("%s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	for _, format := range []logFormat{formatKV, formatJSON} {
		t.Run(string(format), func(t *testing.T) {
			log, aw, buf := newTestLogger(format)
			raw := BuildRID(123, 456, 789)
			log.LogAttrs(WithRID(context.Background(), raw), slog.LevelInfo, "rid.test")
			line := flushLine(t, aw, buf)

			compact := CompactRID(raw)
			if compact != "3f.co.lx" {
				t.Fatalf("compact rid = %s", compact)
			}
			if !strings.Contains(line, compact) {
				t.Fatalf("expected compact rid, got %s", line)
			}
			hasFull := strings.Contains(line, "rid_full")
			if hasFull != (format == formatJSON) {
				t.Fatalf("rid_full presence = %v in %s", hasFull, line)
			}
		})
	}
}

func TestGroupsAreFlattened(t *testing.T) {
	log, aw, buf := newTestLogger(formatKV)
	log.WithGroup("db").LogAttrs(context.Background(), slog.LevelInfo, "db.connect",
		slog.Group("pool", slog.Int("open", 1)),
	)
	line := flushLine(t, aw, buf)
	if !strings.Contains(line, "db.pool.open=1") || !strings.Contains(line, "component=app") {
		t.Fatalf("unexpected line %s", line)
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("a\x00b\u200bc\nd", 10); got != "abc\nd" {
		t.Fatalf("got %q", got)
	}
	if got := SanitizeLimit("трата", 3); got != "тра" {
		t.Fatalf("got %q", got)
	}
	if got := SanitizeLimit("x", 0); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(parseRatio("2/5"))
	allowed := 0
	for i := 0; i < 10; i++ {
		if s.Allow() {
			allowed++
		}
	}
	if allowed != 4 {
		t.Fatalf("allowed = %d, want 4", allowed)
	}
	s.Set(parseRatio("0"))
	if !s.Allow() {
		t.Fatalf("zero ratio disables sampling")
	}
}
