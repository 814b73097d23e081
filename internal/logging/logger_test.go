package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"famcontents/internal/config"
	"famcontents/internal/logging"
	"famcontents/internal/services"
)

func newFileLogger(t *testing.T, format, level string) (func() string, *logging.Options) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "fam.log")
	opts := &logging.Options{
		Format:  format,
		Level:   level,
		Outputs: []string{logPath},
	}
	read := func() string {
		content, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		return string(content)
	}
	return read, opts
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from config")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from config") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	read, opts := newFileLogger(t, "console", "info")
	logger, err := logging.New(*opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller")
	if strings.Contains(read(), ".go:") {
		t.Fatalf("expected no caller information in info logs")
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	read, opts := newFileLogger(t, "console", "debug")
	logger, err := logging.New(*opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message with caller")
	if !strings.Contains(read(), ".go:") {
		t.Fatalf("expected caller information in debug logs")
	}
}

func TestConsoleLoggerRendersComponentAndSubject(t *testing.T) {
	read, opts := newFileLogger(t, "console", "info")
	logger, err := logging.New(*opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithContentID(context.Background(), "c1")
	ctx = services.WithChannel(ctx, "x")
	log := logging.WithContext(ctx, logging.NewComponentLogger(logger, "materializer"))
	log.Info("variant stored", logging.String(logging.FieldSource, "fallback"))

	out := read()
	for _, fragment := range []string{"INF materializer [c1 x]: variant stored", "source=fallback"} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in %q", fragment, out)
		}
	}
	for _, lifted := range []string{"component=", "content_id=", "channel="} {
		if strings.Contains(out, lifted) {
			t.Fatalf("expected %s to be lifted into the header, got %q", lifted, out)
		}
	}
}

func TestJSONLoggerFields(t *testing.T) {
	read, opts := newFileLogger(t, "json", "info")
	logger, err := logging.New(*opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRequestID(context.Background(), "req-1")
	logging.WithContext(ctx, logger).Warn("fallback used")

	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(read())), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if payload["level"] != "warn" || payload["msg"] != "fallback used" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if payload[logging.FieldRequestID] != "req-1" {
		t.Fatalf("expected request id field, got %v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key, got %v", payload)
	}
}

func TestContextFieldsAddedOnceFromLogContext(t *testing.T) {
	read, opts := newFileLogger(t, "json", "info")
	logger, err := logging.New(*opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithTaskKind(services.WithRequestID(context.Background(), "req-2"), "note")
	logger.InfoContext(ctx, "from context")
	logging.WithContext(ctx, logger).InfoContext(ctx, "bound and from context")

	lines := strings.Split(strings.TrimSpace(read()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two log lines, got %q", lines)
	}
	for _, line := range lines {
		if strings.Count(line, `"request_id"`) != 1 || !strings.Contains(line, `"task_kind":"note"`) {
			t.Fatalf("expected one request_id and the task kind, got %s", line)
		}
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	read, opts := newFileLogger(t, "console", "info")
	logger, err := logging.New(*opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "backend call failed", "generation_fallback",
		logging.String(logging.FieldImpact, "fallback body returned"))

	out := read()
	for _, fragment := range []string{"event_type=generation_fallback", "error_hint=", `impact="fallback body returned"`} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in %q", fragment, out)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 0) {
		t.Fatal("expected nop logger to be disabled")
	}
	logging.NewComponentLogger(nil, "x").Info("ignored")
}
