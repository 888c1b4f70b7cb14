package probe

import (
	"math"
	"strconv"
	"testing"
	"testing/quick"
)

func TestClosestFrameRate(t *testing.T) {
	tests := []struct {
		input    float64
		expected int
	}{
		{23.976, 24},
		{24, 24},
		{25.1, 25},
		{29.97, 30},
		{27.4, 25},
		{48, 50},
		{59.94, 60},
		{75, 75},
		{84.9, 85},
		{90, 90},
		{119.88, 120},
		{144, 144},
		{12, 12},
		{0, 0},
		{-3, 0},
		{math.NaN(), 0},
	}

	for _, tc := range tests {
		result := ClosestFrameRate(tc.input)
		if result != tc.expected {
			t.Errorf("ClosestFrameRate(%v) = %d, want %d", tc.input, result, tc.expected)
		}
	}
}

// Snapped results are always canonical or the rounded input.
func TestClosestFrameRate_Property(t *testing.T) {
	f := func(raw uint16) bool {
		rate := float64(raw%2000) / 10
		result := ClosestFrameRate(rate)
		if rate <= 0 {
			return result == 0
		}
		if result == int(math.Round(rate)) {
			return true
		}
		for _, c := range commonFrameRates {
			if result == c {
				return math.Abs(rate-float64(c)) <= frameRateTolerance
			}
		}
		return false
	}
	if err := quick.Check(f, &quick.Config{MaxCount: 1000}); err != nil {
		t.Error(err)
	}
}

func TestParseFrameRate_EdgeCases(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"24", 24.0},
		{"23.976", 23.976},
		{"24/1", 24.0},
		{"24000/1001", 24000.0 / 1001.0},
		{"0/1", 0.0},
		{"24/0", 0.0},
		{"invalid", 0.0},
		{"", 0.0},
	}

	for _, tc := range tests {
		result := parseFrameRate(tc.input)
		if math.Abs(result-tc.expected) > 0.001 {
			t.Errorf("parseFrameRate(%q) = %f, want %f", tc.input, result, tc.expected)
		}
	}
}

func TestSamplePacketsRespectsWindow(t *testing.T) {
	packets := make([]probePacket, 0, 200)
	for i := 0; i < 200; i++ {
		packets = append(packets, probePacket{PTSTime: ftoa(float64(i) * 0.04), DurationTime: "0.04", Size: "500"})
	}
	sample := samplePackets(packets, 120)
	if sample.count != 120 {
		t.Fatalf("count = %d, want 120", sample.count)
	}
	if math.Abs(sample.span()-4.8) > 1e-9 {
		t.Fatalf("span = %v, want 4.8", sample.span())
	}
	if math.Abs(sample.averagePacketRate()-25) > 1e-9 {
		t.Fatalf("rate = %v", sample.averagePacketRate())
	}
}

func TestSamplePacketsSkipsUntimed(t *testing.T) {
	packets := []probePacket{
		{Size: "100"},
		{DTSTime: "1.0", DurationTime: "0.5", Size: "100"},
		{PTSTime: "bad", Size: "100"},
	}
	sample := samplePackets(packets, 0)
	if sample.count != 1 {
		t.Fatalf("count = %d, want 1", sample.count)
	}
	if sample.averageBitrate() != 1600 {
		t.Fatalf("bitrate = %v, want 1600", sample.averageBitrate())
	}
}

func TestSamplePacketsEmpty(t *testing.T) {
	sample := samplePackets(nil, 120)
	if sample.averageBitrate() != 0 || sample.averagePacketRate() != 0 {
		t.Fatal("empty sample must yield zero stats")
	}
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
