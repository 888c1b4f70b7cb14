package encoder

import "testing"

func TestFormatBitrate(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{0, "0.00Kbps"},
		{128_000, "128.00Kbps"},
		{999_990, "999.99Kbps"},
		{3_187_671, "3.19Mbps"},
		{6_000_000, "6.00Mbps"},
	}
	for _, tc := range tests {
		if got := FormatBitrate(tc.input); got != tc.expected {
			t.Errorf("FormatBitrate(%v) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0.00K"},
		{1500, "1.50K"},
		{4_194_304, "4.19M"},
	}
	for _, tc := range tests {
		if got := FormatSize(tc.input); got != tc.expected {
			t.Errorf("FormatSize(%d) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}
