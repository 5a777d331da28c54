package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestWithRunKeepsParentRun(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "info", "json")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	ctx := WithLogger(context.Background(), logger)
	ctx = WithRun(ctx, "pipeline.complete", "run-outer")
	ctx = WithRun(ctx, "pipeline.bronze_to_silver", "run-inner")
	Info(ctx, "stage started")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["run_id"] != "run-inner" || line["parent_run_id"] != "run-outer" || line["component"] != "pipeline.bronze_to_silver" {
		t.Fatalf("log line = %v", line)
	}
}

func TestWithRunSameIDAddsNoParent(t *testing.T) {
	ctx := WithRun(context.Background(), "pipeline.ingest", "run-1")
	ctx = WithRun(ctx, "", "run-1")
	if _, ok := attrValue(ctx, "parent_run_id"); ok {
		t.Fatalf("attrs = %v, want no parent_run_id", Attrs(ctx))
	}
}

func TestMergeAttrsReplacesInPlace(t *testing.T) {
	base := []slog.Attr{slog.String("a", "1"), slog.String("b", "2")}
	got := mergeAttrs(base, []slog.Attr{slog.String("a", "3"), slog.String("c", "4")})
	if len(got) != 3 || got[0].Value.String() != "3" || got[2].Key != "c" {
		t.Fatalf("mergeAttrs() = %v", got)
	}
	if base[0].Value.String() != "1" {
		t.Fatal("base was mutated")
	}
}

func TestSetDefaultUsedWithoutContextLogger(t *testing.T) {
	previous := Logger(context.Background())
	t.Cleanup(func() { SetDefault(previous) })

	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn", "text")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	SetDefault(logger)
	SetDefault(nil)

	Info(context.Background(), "filtered")
	Warn(context.Background(), "kept")
	if got := buf.String(); !bytes.Contains([]byte(got), []byte("kept")) || bytes.Contains([]byte(got), []byte("filtered")) {
		t.Fatalf("output = %q", got)
	}
}
