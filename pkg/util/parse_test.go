package util

import (
	"testing"
	"time"
)

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("", 50); got != 50 {
		t.Fatalf("empty: got %d", got)
	}
	if got := ParseIntDefault("abc", 50); got != 50 {
		t.Fatalf("invalid: got %d", got)
	}
	if got := ParseIntDefault("120", 50); got != 120 {
		t.Fatalf("valid: got %d", got)
	}
}

func TestClampInt(t *testing.T) {
	if got := ClampInt(-5, 1, 1000); got != 1 {
		t.Fatalf("below: got %d", got)
	}
	if got := ClampInt(5000, 1, 1000); got != 1000 {
		t.Fatalf("above: got %d", got)
	}
	if got := ClampInt(500, 1, 1000); got != 500 {
		t.Fatalf("inside: got %d", got)
	}
}

func TestParseTime(t *testing.T) {
	if _, ok := ParseTime(""); ok {
		t.Fatalf("empty string parsed")
	}
	if ts, ok := ParseTime("2026-08-30T12:00:00Z"); !ok || ts.UTC().Hour() != 12 {
		t.Fatalf("rfc3339: %v %v", ts, ok)
	}
	if ts, ok := ParseTime("1767139200"); !ok || ts.Unix() != 1767139200 {
		t.Fatalf("unix: %v %v", ts, ok)
	}
}

func TestParseTimeDefault(t *testing.T) {
	def := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := ParseTimeDefault("garbage", def); !got.Equal(def) {
		t.Fatalf("expected default, got %v", got)
	}
}
