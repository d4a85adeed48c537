package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		verbosity string
		count     int
		want      slog.Level
	}{
		{"", 0, slog.LevelInfo},
		{"", 1, slog.LevelDebug},
		{"", 3, LevelTrace},
		{"warn", 2, slog.LevelWarn},
		{"ERROR", 0, slog.LevelError},
		{"trace", 0, LevelTrace},
		{"bogus", 0, slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.verbosity, tt.count); got != tt.want {
			t.Errorf("ParseLevel(%q, %d) = %v, want %v", tt.verbosity, tt.count, got, tt.want)
		}
	}
}

func TestCompactHandlerRendersAccumulatedAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	l := slog.New(h).With("component", "ingest")

	l.Info("Loaded node table", "rows", 3, "file", "data/genes nodes.csv", "error", "")

	line := buf.String()
	for _, want := range []string{"[INFO]", "ingest: Loaded node table | rows=3", `file="genes nodes.csv"`, `error=""`} {
		if !strings.Contains(line, want) {
			t.Errorf("output %q missing %q", line, want)
		}
	}
}

func TestCompactHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewCompactHandler(&buf, nil)).WithGroup("graph").With("nodes", 20)

	l.Info("Assembled", "edges", 13)

	if got, want := buf.String(), "Assembled | graph.nodes=20 graph.edges=13\n"; !strings.HasSuffix(got, want) {
		t.Errorf("output %q, want suffix %q", got, want)
	}
}

func TestCompactHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	h := NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
	l := slog.New(h)

	l.Info("hidden")
	l.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("info record should be filtered at warn level: %q", buf.String())
	}
	if !strings.HasPrefix(buf.String(), "[WARN]") {
		t.Errorf("expected warn prefix, got %q", buf.String())
	}
}

func TestCompactHandlerShortensRunID(t *testing.T) {
	var buf bytes.Buffer
	h := NewCompactHandler(&buf, nil)
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "start", 0)
	r.AddAttrs(slog.String("runID", "0123456789abcdef"))
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(buf.String(), "run=01234567") {
		t.Errorf("expected shortened run id, got %q", buf.String())
	}
}

func TestPackageLoggerOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, slog.LevelInfo)
	t.Cleanup(func() { SetOutput(os.Stderr, slog.LevelInfo) })

	ctx := WithRunID(context.Background(), "0123456789abcdef")
	New("pipeline").Debug("hidden")
	ErrorContext(ctx, "Run failed", "error", "boom")
	if got := buf.String(); !strings.Contains(got, "Run failed | run=01234567 error=\"boom\"") {
		t.Errorf("console output = %q", got)
	}

	buf.Reset()
	SetJSONOutput(slog.LevelDebug)
	New("ingest").Debug("Merged node", "node", "TOR1A")
	for _, want := range []string{`"level":"DEBUG"`, `"component":"ingest"`, `"node":"TOR1A"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("json output %q missing %s", buf.String(), want)
		}
	}
}

func TestRunIDContext(t *testing.T) {
	ctx := context.Background()
	if got := GetRunID(ctx); got != "" {
		t.Fatalf("GetRunID on empty context = %q", got)
	}
	id := NewRunID()
	if len(id) != 36 {
		t.Fatalf("NewRunID length = %d, want 36", len(id))
	}
	ctx = WithRunID(ctx, id)
	if got := GetRunID(ctx); got != id {
		t.Errorf("GetRunID = %q, want %q", got, id)
	}
	attrs := Attrs(ctx)
	if len(attrs) != 2 || attrs[0] != "runID" || attrs[1] != id {
		t.Errorf("Attrs = %v", attrs)
	}
}
