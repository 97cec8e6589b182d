package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_ServiceAttribute(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: INFO, Format: JSON, Output: &buf, Service: "capacity"})

	log.Info("tier evaluated", "tier", "Gold")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json output, got %q: %v", buf.String(), err)
	}
	if entry[SERVICE] != "capacity" {
		t.Errorf("expected service attribute, got %v", entry[SERVICE])
	}
	if entry["tier"] != "Gold" {
		t.Errorf("expected tier attribute, got %v", entry["tier"])
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: WARN, Format: TEXT, Output: &buf})

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn message should be written")
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf}).Component("matcher")

	log.Info("scored")

	if !strings.Contains(buf.String(), `"component":"matcher"`) {
		t.Errorf("component attribute missing: %s", buf.String())
	}
}
