package tui

import (
	"strings"
	"testing"
	"testing/quick"
	"time"

	"webmgen/encoder"
)

// Feature: source stats panel
// For any non-negative file size, formatBytes returns a string with binary units
func TestFormatBytes_Property(t *testing.T) {
	f := func(size uint64) bool {
		result := formatBytes(int64(size >> 1))
		if result == "" {
			return false
		}
		for _, unit := range []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB"} {
			if strings.Contains(result, unit) {
				return true
			}
		}
		return false
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 1000}); err != nil {
		t.Error(err)
	}
}

func TestFormatBytes_EdgeCases(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0 B"},
		{1, "1 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1024 * 1024, "1.0 MiB"},
		{1024 * 1024 * 1024, "1.0 GiB"},
	}

	for _, tc := range tests {
		result := formatBytes(tc.input)
		if result != tc.expected {
			t.Errorf("formatBytes(%d) = %q, want %q", tc.input, result, tc.expected)
		}
	}
}

func TestFormatDuration_EdgeCases(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{-1, "—"},
		{0, "0:00"},
		{30 * time.Second, "0:30"},
		{time.Minute, "1:00"},
		{90 * time.Second, "1:30"},
		{time.Hour, "1:00:00"},
		{time.Hour + 30*time.Minute + 45*time.Second, "1:30:45"},
	}

	for _, tc := range tests {
		result := formatDuration(tc.input)
		if result != tc.expected {
			t.Errorf("formatDuration(%v) = %q, want %q", tc.input, result, tc.expected)
		}
	}
}

func TestFormatFrameRate(t *testing.T) {
	if got := formatFrameRate(0); got != "—" {
		t.Errorf("formatFrameRate(0) = %q", got)
	}
	if got := formatFrameRate(30); got != "30" {
		t.Errorf("formatFrameRate(30) = %q", got)
	}
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		path     string
		maxLen   int
		expected string
	}{
		{"/short/path", 50, "/short/path"},
		{"/a/very/long/path/that/exceeds/the/maximum/length", 25, "/a/very/l ... mum/length"},
		{"/path", 10, "/path"},
	}

	for _, tc := range tests {
		result := truncatePath(tc.path, tc.maxLen)
		if len(tc.path) <= tc.maxLen {
			if result != tc.expected {
				t.Errorf("truncatePath(%q, %d) = %q, want %q", tc.path, tc.maxLen, result, tc.expected)
			}
		} else if len(result) > tc.maxLen {
			t.Errorf("truncatePath(%q, %d) = %q (len %d), expected shorter", tc.path, tc.maxLen, result, len(result))
		}
	}
}

func TestRenderScript(t *testing.T) {
	script := encoder.Script{
		Setup:      `temp="$(mktemp)"`,
		FirstPass:  "ffmpeg -pass 1",
		SecondPass: "ffmpeg -pass 2",
		Teardown:   `rm "$temp"`,
	}
	out := renderScript(script, 80)
	for _, want := range []string{"mktemp", "# first pass", "ffmpeg -pass 1", "# second pass", "ffmpeg -pass 2", "rm"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered script missing %q:\n%s", want, out)
		}
	}

	empty := renderScript(encoder.Script{Setup: "a", Teardown: "b"}, 80)
	if strings.Contains(empty, "pass") {
		t.Errorf("empty script should have no pass comments: %q", empty)
	}
}

func TestViewSections(t *testing.T) {
	m := loadAndProbe(t, newTestModel(t, testOptions{}), "/videos/clip.mp4")

	view := m.View()
	for _, want := range []string{"WebM Command Generator", "clip.mp4", "1920x1080", "Max size", "Fish shell", "mktemp", "Output"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m.showHelp = true
	if !strings.Contains(m.View(), "How do I use this?") {
		t.Error("help overlay missing FAQ")
	}
}
