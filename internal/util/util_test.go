package util

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestWrapError(t *testing.T) {
	if WrapError("do thing", nil) != nil {
		t.Error("WrapError(nil) != nil")
	}

	base := errors.New("boom")
	wrapped := WrapError("start process", base)
	if wrapped == nil {
		t.Fatal("WrapError() = nil")
	}
	if !errors.Is(wrapped, base) {
		t.Error("wrapped error does not unwrap to base")
	}
	if got := wrapped.Error(); got != "failed to start process: boom" {
		t.Errorf("Error() = %q", got)
	}
}

func TestExtractLastError(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   string
	}{
		{"empty", "", ""},
		{"only whitespace", "  \n\n  ", ""},
		{"single line", "aplay: device busy", "aplay: device busy"},
		{"last line wins", "info: starting\nerror: device busy", "error: device busy"},
		{"skips trailing blanks", "error: device busy\n\n  \n", "error: device busy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractLastError(tt.stderr); got != tt.want {
				t.Errorf("ExtractLastError() = %q, want %q", got, tt.want)
			}
		})
	}

	long := strings.Repeat("x", 300)
	got := ExtractLastError(long)
	if len(got) != maxErrorLineLength+3 || !strings.HasSuffix(got, "...") {
		t.Errorf("long line not truncated: len=%d", len(got))
	}
}

func TestIsConfigured(t *testing.T) {
	if !IsConfigured("a", "b") {
		t.Error("IsConfigured(all set) = false")
	}
	if IsConfigured("a", "") {
		t.Error("IsConfigured(one empty) = true")
	}
	if !IsConfigured() {
		t.Error("IsConfigured() with no values = false")
	}
}

func TestValidatePath(t *testing.T) {
	if err := ValidatePath("log_path", "logs/quiet.log"); err != nil {
		t.Errorf("ValidatePath(valid) error: %v", err)
	}
	if err := ValidatePath("log_path", ""); err == nil {
		t.Error("ValidatePath(empty) succeeded, want error")
	}
	if err := ValidatePath("log_path", "../etc/passwd"); err == nil {
		t.Error("ValidatePath(traversal) succeeded, want error")
	}
}

func TestBackoff(t *testing.T) {
	b := NewBackoff(time.Second, 5*time.Second)

	want := []time.Duration{
		time.Second,
		2 * time.Second,
		4 * time.Second,
		5 * time.Second, // capped
		5 * time.Second,
	}
	for i, w := range want {
		if got := b.Next(); got != w {
			t.Errorf("Next() call %d = %v, want %v", i+1, got, w)
		}
	}

	b.Reset()
	if got := b.Current(); got != time.Second {
		t.Errorf("Current() after Reset = %v, want 1s", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{5000, "5s"},
		{45000, "45s"},
		{154000, "2m 34s"},
		{4980000, "1h 23m"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.ms); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestFormatHumanTime(t *testing.T) {
	if got := FormatHumanTime(""); got != "unknown" {
		t.Errorf("FormatHumanTime(\"\") = %q, want unknown", got)
	}
	if got := FormatHumanTime("unknown"); got != "unknown" {
		t.Errorf("FormatHumanTime(unknown) = %q, want unknown", got)
	}
	// Unparseable input passes through untouched.
	if got := FormatHumanTime("yesterday"); got != "yesterday" {
		t.Errorf("FormatHumanTime(yesterday) = %q", got)
	}
	// Valid RFC3339 renders in the human layout.
	got := FormatHumanTime("2026-08-30T12:00:00Z")
	if got == "unknown" || got == "2026-08-30T12:00:00Z" {
		t.Errorf("FormatHumanTime(RFC3339) = %q, want formatted time", got)
	}
}
