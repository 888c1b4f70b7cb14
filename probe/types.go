package probe

// DefaultPacketWindow is the number of leading packets sampled for bitrate and
// packet-rate estimates.
const DefaultPacketWindow = 120

// MediaStats describes the primary video track of a file. It is produced once
// per inspection and never mutated.
type MediaStats struct {
	DurationSeconds    float64 `json:"durationSeconds"`
	DisplayWidth       int     `json:"displayWidth"`
	DisplayHeight      int     `json:"displayHeight"`
	AverageBitrate     float64 `json:"averageBitrateBps"`
	AveragePacketRate  float64 `json:"averagePacketRateHz"`
	EstimatedFrameRate int     `json:"estimatedFrameRate"`
	VideoCodec         string  `json:"videoCodec,omitempty"`
	PacketsSampled     int     `json:"packetsSampled"`
}

// AspectRatio returns height/width, or 0 when the dimensions are unknown.
func (s MediaStats) AspectRatio() float64 {
	if s.DisplayWidth <= 0 || s.DisplayHeight <= 0 {
		return 0
	}
	return float64(s.DisplayHeight) / float64(s.DisplayWidth)
}

// Result is the outcome of inspecting a file. A file without a video track is a
// valid result with HasVideo=false.
type Result struct {
	Path      string     `json:"path"`
	SizeBytes int64      `json:"sizeBytes"`
	HasVideo  bool       `json:"hasVideo"`
	Stats     MediaStats `json:"stats"`
}

// VideoStats returns the stats when a video track was found, nil otherwise.
func (r Result) VideoStats() *MediaStats {
	if !r.HasVideo {
		return nil
	}
	stats := r.Stats
	return &stats
}
