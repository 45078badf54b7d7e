package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
)

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelWarn, Output: &buf})

	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}

	l.Warn("shown %d", 1)
	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry.Level != "WARN" || entry.Message != "shown 1" {
		t.Errorf("unexpected entry: %+v", entry)
	}
}

func TestLogger_ContextAndSpecialFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Output: &buf, Service: "test"})

	ctx := ContextWithOwner(ContextWithRequestID(context.Background(), "req-1"), "a@x.com")
	l.WithContext(ctx).WithError(errors.New("boom")).WithField("slug", "abc").Info("publish")

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry.RequestID != "req-1" {
		t.Errorf("request_id = %q", entry.RequestID)
	}
	if entry.Owner != "a@x.com" {
		t.Errorf("owner = %q", entry.Owner)
	}
	if entry.Error != "boom" {
		t.Errorf("error = %q", entry.Error)
	}
	if entry.Fields["slug"] != "abc" {
		t.Errorf("fields = %v", entry.Fields)
	}
	if entry.Service != "test" {
		t.Errorf("service = %q", entry.Service)
	}
}

func TestLogger_WithFieldDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: LevelDebug, Output: &buf})
	_ = base.WithField("k", "v")

	base.Info("plain")
	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry.Fields != nil {
		t.Errorf("base logger picked up child field: %v", entry.Fields)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"WARN", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"nonsense", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
