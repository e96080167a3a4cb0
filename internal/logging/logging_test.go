package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("JSON") != FormatJSON {
		t.Error("JSON should parse as json")
	}
	if ParseFormat("pretty") != FormatText {
		t.Error("unknown formats should fall back to text")
	}
}

func TestTextLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelWarn, FormatText)
	logger.Info("hidden")
	logger.Warn("shown", "route", "/cart")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "route=/cart") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestTraceIDsAdded(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelInfo, FormatJSON)

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	logger.With("component", "engine").InfoContext(ctx, "rendered")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v (%q)", err, buf.String())
	}
	if rec["trace_id"] != traceID.String() || rec["span_id"] != spanID.String() {
		t.Errorf("record = %v", rec)
	}
	if rec["component"] != "engine" {
		t.Errorf("component attr lost: %v", rec)
	}
}

func TestNoTraceIDsWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, slog.LevelInfo, FormatJSON).Info("plain")
	if strings.Contains(buf.String(), "trace_id") {
		t.Errorf("unexpected trace id: %s", buf.String())
	}
}

func TestIsTerminal(t *testing.T) {
	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer devNull.Close()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	writers := map[string]io.Writer{
		"buffer":   &bytes.Buffer{},
		"dev null": devNull,
		"pipe":     w,
	}
	for name, out := range writers {
		if isTerminal(out) {
			t.Errorf("isTerminal(%s) = true", name)
		}
	}
}

func TestTextLoggerWithoutTerminalHasNoColor(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	New(w, slog.LevelInfo, FormatText).Error("render failed", "url", "/")
	w.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "render failed") {
		t.Fatalf("missing record: %q", out)
	}
	if strings.Contains(string(out), "\x1b[") {
		t.Errorf("colored output on a pipe: %q", out)
	}
}
