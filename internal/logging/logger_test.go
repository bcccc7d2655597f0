package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))
	logger = NewComponentLogger(logger, "generator")

	logger.Info("image written",
		String(FieldParticipant, "sub-CONT01"),
		Float64(FieldGamma, 0.87),
	)

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, " INFO generator: image written") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "participant=sub-CONT01") {
		t.Fatalf("missing participant attr: %q", line)
	}
	if !strings.Contains(line, "gamma=0.87") {
		t.Fatalf("missing gamma attr: %q", line)
	}
}

func TestConsoleHandlerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, new(slog.LevelVar)))

	logger.Warn("lookup failed", String("pattern", "a b"))

	if !strings.Contains(buf.String(), `pattern="a b"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestJSONHandlerKeyRemap(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newJSONHandler(&buf, new(slog.LevelVar)))

	logger.Error("decode failed", String("path", "/tmp/x.nii.gz"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	for _, key := range []string{"ts", "level", "msg", "path"} {
		if _, ok := record[key]; !ok {
			t.Fatalf("missing key %q in %v", key, record)
		}
	}
	if record["level"] != "error" {
		t.Fatalf("level = %v, want error", record["level"])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, new(slog.LevelVar)))

	ctx := WithRunID(context.Background(), "run-1")
	ctx = WithVisit(ctx, "sub-01", "ses-M00")

	WithContext(ctx, logger).Info("processing")

	line := buf.String()
	for _, want := range []string{"run_id=run-1", "participant=sub-01", "session=ses-M00"} {
		if !strings.Contains(line, want) {
			t.Fatalf("missing %q in %q", want, line)
		}
	}
}
