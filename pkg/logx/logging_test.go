package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestWriterLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "debug").With(String("study", "sleep"))
	log.Info("timeline computed", Int("items", 3), Err(errors.New("boom")), Err(nil))

	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("unmarshal log line: %v (%q)", err, buf.String())
	}
	if m["message"] != "timeline computed" || m["study"] != "sleep" || m["items"] != float64(3) {
		t.Fatalf("unexpected log line: %v", m)
	}
	caller, _ := m["caller"].(string)
	if !strings.HasPrefix(caller, "logging_test.go:") {
		t.Fatalf("caller = %q, want short file:line", caller)
	}
}

func TestWriterLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "warn")
	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}
	if log.Enabled(LevelInfo) || !log.Enabled(LevelError) {
		t.Fatal("unexpected Enabled result")
	}
}

func TestZeroAndNopLogger(t *testing.T) {
	var zero Logger
	if !zero.IsZero() {
		t.Fatal("zero logger should report IsZero")
	}
	zero.Error("never written")
	if Nop().IsZero() {
		t.Fatal("Nop logger is not the zero value")
	}
}

func TestValidLevel(t *testing.T) {
	for _, s := range []string{"", "debug", "WARNING", " error "} {
		if !ValidLevel(s) {
			t.Fatalf("ValidLevel(%q) = false", s)
		}
	}
	if ValidLevel("loud") {
		t.Fatal("ValidLevel(loud) = true")
	}
}

func TestWriterLoggerTypedFields(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf, "info").Info("run",
		Bool("ok", false),
		Uint64("hash", 42),
		Int64("active", -1),
		Strs("invalid", []string{"a", "b"}),
	)

	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("unmarshal log line: %v (%q)", err, buf.String())
	}
	if m["ok"] != false || m["hash"] != float64(42) || m["active"] != float64(-1) {
		t.Fatalf("unexpected log line: %v", m)
	}
	if inv, _ := m["invalid"].([]any); len(inv) != 2 {
		t.Fatalf("invalid = %v", m["invalid"])
	}
}
