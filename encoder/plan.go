package encoder

import (
	"fmt"
	"math"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"webmgen/probe"
)

const (
	// audioAllowanceBps is reserved for the fixed 128k audio stream.
	audioAllowanceBps = 128 * 1024
	// containerMargin keeps 5% of the size budget for muxing overhead.
	containerMargin = 0.95
	// sourceBitrateCap bounds the request relative to the measured source rate.
	sourceBitrateCap = 1.2

	randomNameWindow = 365 * 24 * time.Hour
)

// colorFilters normalize to full-range BT.709 and always lead the chain.
var colorFilters = []string{
	"zscale=range=full:matrix=709:primaries=709:transfer=709",
	"format=yuv420p:bt709:pc",
}

// Overridable in tests.
var (
	now       = time.Now
	randomID  = func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:4] }
	randomInt = rand.Int63n
)

// Plan is the fully derived description of an encode. It is recomputed from
// stats and constraints on every change and never stored.
type Plan struct {
	Source            string   `json:"source"`
	SourceDuration    float64  `json:"sourceDuration"`
	TrimStart         *float64 `json:"trimStart,omitempty"`
	TrimEnd           *float64 `json:"trimEnd,omitempty"`
	EffectiveDuration float64  `json:"effectiveDuration"`
	TargetBitrate     *int64   `json:"targetBitrateBps"`
	VideoFilters      []string `json:"videoFilters"`
	FrameRate         *int     `json:"frameRate,omitempty"`
	DisableAudio      bool     `json:"disableAudio"`
	OutputFilename    string   `json:"outputFilename"`
	Dialect           Dialect  `json:"dialect"`
}

type planOptions struct {
	outputFilename string
	pinnedName     bool
}

// PlanOption customizes DerivePlan.
type PlanOption func(*planOptions)

// WithOutputFilename pins the output filename instead of generating one.
func WithOutputFilename(name string) PlanOption {
	return func(o *planOptions) {
		o.outputFilename = name
		o.pinnedName = true
	}
}

// DerivePlan combines probe stats (nil when unavailable) and constraints into
// an encoding plan.
func DerivePlan(stats *probe.MediaStats, c Constraints, opts ...PlanOption) Plan {
	var o planOptions
	for _, opt := range opts {
		opt(&o)
	}

	sourceDuration := 0.0
	if stats != nil {
		sourceDuration = NormalizeDuration(stats.DurationSeconds)
	}
	duration := EffectiveDuration(sourceDuration, c.TrimStart, c.TrimEnd)

	name := o.outputFilename
	if !o.pinnedName {
		name = OutputFilename(c.Source, c.RandomizeName)
	}

	dialect := c.Dialect
	if dialect == "" {
		dialect = DialectPOSIX
	}

	return Plan{
		Source:            c.Source,
		SourceDuration:    sourceDuration,
		TrimStart:         copyFloat(c.TrimStart),
		TrimEnd:           copyFloat(c.TrimEnd),
		EffectiveDuration: duration,
		TargetBitrate:     TargetBitrate(c.MaxSizeMB, duration, !c.DisableAudio, stats),
		VideoFilters:      VideoFilters(stats, c.Width, c.Height),
		FrameRate:         forcedFrameRate(stats, c.FrameRate),
		DisableAudio:      c.DisableAudio,
		OutputFilename:    name,
		Dialect:           dialect,
	}
}

// EffectiveDuration returns the length of the encoded clip in seconds.
func EffectiveDuration(sourceDuration float64, start, end *float64) float64 {
	var d float64
	switch {
	case start == nil && end == nil:
		d = sourceDuration
	case start != nil && end != nil:
		d = *end - *start
	case end != nil:
		d = *end
	default:
		d = sourceDuration - *start
	}
	return NormalizeDuration(d)
}

// TargetBitrate returns the video bitrate in bits/s that fits maxSizeMB into
// duration, or nil when it cannot be determined.
func TargetBitrate(maxSizeMB *float64, duration float64, audio bool, stats *probe.MediaStats) *int64 {
	if duration == 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return nil
	}
	if maxSizeMB == nil || math.IsNaN(*maxSizeMB) {
		return nil
	}

	requested := *maxSizeMB * 1024 * 1024 * 8 / duration * containerMargin
	if audio {
		requested = math.Max(0, requested-audioAllowanceBps)
	}
	if stats != nil && stats.AverageBitrate > 0 {
		requested = math.Min(requested, stats.AverageBitrate*sourceBitrateCap)
	}
	bitrate := int64(math.Floor(requested))
	return &bitrate
}

// VideoFilters returns the filter chain: color normalization, then a scale
// clause only when the target size differs from the source.
func VideoFilters(stats *probe.MediaStats, width, height *int) []string {
	filters := append([]string(nil), colorFilters...)
	if stats == nil || stats.DisplayWidth == 0 || height == nil || *height <= 0 {
		return filters
	}
	changed := width == nil || *width != stats.DisplayWidth || *height != stats.DisplayHeight
	if changed {
		filters = append(filters, fmt.Sprintf("scale=-2:%d", *height))
	}
	return filters
}

// forcedFrameRate returns the override only when it changes the source rate.
func forcedFrameRate(stats *probe.MediaStats, target *int) *int {
	if target == nil || *target <= 0 {
		return nil
	}
	if stats != nil && stats.EstimatedFrameRate > 0 && stats.EstimatedFrameRate == *target {
		return nil
	}
	rate := *target
	return &rate
}

// OutputFilename names the encoded file. Randomized names are a millisecond
// timestamp within the past year; otherwise the source basename gets a short
// random id so repeated exports don't collide.
func OutputFilename(source string, randomize bool) string {
	if randomize {
		offset := randomInt(int64(randomNameWindow / time.Millisecond))
		return fmt.Sprintf("%d.webm", now().UnixMilli()-offset)
	}
	if strings.TrimSpace(source) == "" {
		return ""
	}
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return fmt.Sprintf("%s.%s.webm", stem, randomID())
}

// SamplePlan restricts p to one second from its trim start, keeping the
// bitrate and filename so the sample previews the real encode.
func SamplePlan(p Plan) Plan {
	start := 0.0
	if p.TrimStart != nil {
		start = *p.TrimStart
	}
	end := p.SourceDuration
	if p.TrimEnd != nil {
		end = *p.TrimEnd
	} else if end <= 0 {
		end = start + 1
	}
	sampleEnd := NormalizeDuration(math.Min(start+1, end))

	sample := p
	sample.TrimStart = &start
	sample.TrimEnd = &sampleEnd
	sample.EffectiveDuration = NormalizeDuration(sampleEnd - start)
	sample.VideoFilters = append([]string(nil), p.VideoFilters...)
	return sample
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
