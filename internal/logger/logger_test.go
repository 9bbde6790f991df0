package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func reset() {
	SetVerbose(false)
	_ = SetFormat(FormatText)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false initially")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false after SetVerbose(false)")
	}
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("unit started", "provider", "aws", "service", "s3")

	output := buf.String()
	if !strings.Contains(output, "level=DEBUG") {
		t.Errorf("expected debug level, got %q", output)
	}
	if !strings.Contains(output, `msg="unit started"`) {
		t.Errorf("expected message, got %q", output)
	}
	if !strings.Contains(output, "provider=aws service=s3") {
		t.Errorf("expected structured fields, got %q", output)
	}
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("test message")
	Info("test message")

	if buf.Len() > 0 {
		t.Error("expected no output when verbose is disabled")
	}
}

func TestWarn_AlwaysLogged(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Warn("skipping item", "resource", "repo-a")

	if !strings.Contains(buf.String(), "level=WARN") {
		t.Errorf("expected warning output, got %q", buf.String())
	}
}

func TestSetFormat_JSON(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	if err := SetFormat(FormatJSON); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	Error("unit failed", "service", "iam", "region", "us-east-1")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if record["service"] != "iam" || record["region"] != "us-east-1" {
		t.Errorf("unexpected fields: %v", record)
	}
}

func TestSetFormat_Unknown(t *testing.T) {
	defer reset()

	if err := SetFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWith(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	With("organization", "org-1").Warn("degraded")

	if !strings.Contains(buf.String(), "organization=org-1") {
		t.Errorf("expected inherited field, got %q", buf.String())
	}
}

func TestSection(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Sync")

	if buf.String() != "\n=== Sync ===\n" {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestSection_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Section("Sync")

	if buf.Len() > 0 {
		t.Error("expected no output when verbose is disabled")
	}
}
