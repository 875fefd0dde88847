package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Output: &buf, Component: ComponentRevenue})
	l.Info("hello", FieldPeriod, "2025-03")

	out := buf.String()
	if !strings.Contains(out, "component=revenue") || !strings.Contains(out, "period=2025-03") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestLoggerJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelInfo, Output: &buf, Format: "json"}).WithComponent(ComponentHTTP)
	l.Warn("slow")
	if !strings.Contains(buf.String(), `"component":"http"`) {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestStructuredLoggerCellUpdated(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelInfo, Output: &buf}))
	sl.LogCellUpdated(context.Background(), "2025-03", 4, "101", 250000, 1)
	sl.LogError(context.Background(), "boom", errors.New("disk full"), OpSave, nil)

	out := buf.String()
	for _, want := range []string{"day=4", "room=101", "total=250000", "error=\"disk full\"", "operation=save"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
}

func TestMiddlewareStoresLogger(t *testing.T) {
	l := New(DefaultConfig())
	var got *Logger
	h := Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if got != l {
		t.Fatalf("expected logger from context")
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}
}
