//go:build !integration

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"physical-ai-textbook/internal/config"
)

func TestRedact(t *testing.T) {
	if got := Redact("short", false); got != "***" {
		t.Errorf("expected ***, got %q", got)
	}
	if got := Redact("eyJhbGciOiJIUzI1NiJ9", false); got != "eyJh...J9" {
		t.Errorf("unexpected redaction %q", got)
	}
	if got := Redact("secret-token", true); got != "secret-token" {
		t.Errorf("dev mode must not redact, got %q", got)
	}
}

func TestWith_AttachesContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(&buf, config.LogConfig{Level: "debug", Format: "json"}, false)

	ctx := WithTraceID(context.Background(), "req-1")
	ctx = WithUserID(ctx, 42)
	ctx = WithSessID(ctx, "sess-9")
	With(ctx, base).Info().Msg("hello")

	out := buf.String()
	for _, want := range []string{`"trace_id":"req-1"`, `"user_id":42`, `"session_id":"sess-9"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
	if TraceIDFrom(ctx) != "req-1" {
		t.Error("TraceIDFrom did not return the stored id")
	}
}

func TestNewWithWriter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, config.LogConfig{Level: "warn", Format: "json"}, false)
	l.Info().Msg("dropped")
	l.Warn().Msg("kept")
	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "kept") {
		t.Errorf("level filtering failed: %s", buf.String())
	}
}
