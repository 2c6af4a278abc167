package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf).With(String("component", "test"))
	l.Info("fold scored",
		Int("fold", 2),
		Float64("accuracy", 0.75),
		Date("day", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
		Error(errors.New("boom")),
	)

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal log line: %v (%s)", err, buf.String())
	}
	if got["message"] != "fold scored" {
		t.Fatalf("unexpected message %v", got["message"])
	}
	if got["component"] != "test" {
		t.Fatalf("missing component field: %v", got)
	}
	if got["fold"] != float64(2) || got["accuracy"] != 0.75 {
		t.Fatalf("unexpected numeric fields: %v", got)
	}
	if got["day"] != "2024-01-02" {
		t.Fatalf("unexpected date field %v", got["day"])
	}
	if got["error"] != "boom" {
		t.Fatalf("unexpected error field %v", got["error"])
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud", Output: "stdout"}); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	l, err := New(&Config{Level: "info", Format: "json", Output: path})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	l.Warn("symbol skipped", String("symbol", "XYZ"))
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Contains(b, []byte(`"symbol":"XYZ"`)) {
		t.Fatalf("log file missing field: %s", b)
	}
}

func TestNopDiscards(t *testing.T) {
	Nop().Error("ignored", Int("n", 1))
}

func TestWithBindsErrorAndBool(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf).With(Error(errors.New("upstream")), Bool("cached", true)).Info("fetched")
	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["error"] != "upstream" || got["cached"] != true {
		t.Fatalf("unexpected bound fields %v", got)
	}
}
