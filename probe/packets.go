package probe

import "math"

type packetSample struct {
	count int
	bytes int64
	start float64
	end   float64
}

// samplePackets accumulates timing statistics over at most limit packets.
func samplePackets(packets []probePacket, limit int) packetSample {
	sample := packetSample{start: math.Inf(1), end: math.Inf(-1)}
	for _, pkt := range packets {
		if limit > 0 && sample.count >= limit {
			break
		}
		raw := pkt.PTSTime
		if raw == "" {
			raw = pkt.DTSTime
		}
		ts := parseNumber(raw)
		if raw == "" || math.IsNaN(ts) {
			continue
		}
		duration := parseNumber(pkt.DurationTime)
		if math.IsNaN(duration) || duration < 0 {
			duration = 0
		}
		size := parseNumber(pkt.Size)
		if math.IsNaN(size) || size < 0 {
			size = 0
		}

		sample.count++
		sample.bytes += int64(size)
		sample.start = math.Min(sample.start, ts)
		sample.end = math.Max(sample.end, ts+duration)
	}
	return sample
}

func (s packetSample) span() float64 {
	if s.count == 0 {
		return 0
	}
	span := s.end - s.start
	if span <= 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return 0
	}
	return span
}

func (s packetSample) averagePacketRate() float64 {
	span := s.span()
	if span == 0 {
		return 0
	}
	return float64(s.count) / span
}

func (s packetSample) averageBitrate() float64 {
	span := s.span()
	if span == 0 {
		return 0
	}
	return float64(s.bytes) * 8 / span
}
