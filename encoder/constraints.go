package encoder

import (
	"math"
	"strconv"
	"strings"

	"webmgen/probe"
)

// Dialect selects the shell syntax of the rendered script.
type Dialect string

const (
	DialectPOSIX Dialect = "posix"
	DialectFish  Dialect = "fish"
)

// ParseDialect maps a name to a Dialect, defaulting to POSIX.
func ParseDialect(name string) Dialect {
	if strings.EqualFold(strings.TrimSpace(name), string(DialectFish)) {
		return DialectFish
	}
	return DialectPOSIX
}

// Constraints are the user's encoding choices. Nil pointers mean "unset".
type Constraints struct {
	Source        string   `json:"source,omitempty"`
	MaxSizeMB     *float64 `json:"maxSizeMB,omitempty"`
	DisableAudio  bool     `json:"disableAudio"`
	Width         *int     `json:"width,omitempty"`
	Height        *int     `json:"height,omitempty"`
	FrameRate     *int     `json:"frameRate,omitempty"`
	TrimStart     *float64 `json:"trimStart,omitempty"`
	TrimEnd       *float64 `json:"trimEnd,omitempty"`
	Dialect       Dialect  `json:"dialect"`
	RandomizeName bool     `json:"randomizeName"`
}

// DefaultConstraints returns the initial form state before preferences apply.
func DefaultConstraints() Constraints {
	size := 4.0
	return Constraints{
		MaxSizeMB:    &size,
		DisableAudio: true,
		Dialect:      DialectPOSIX,
	}
}

// NormalizeDuration rounds seconds to millisecond precision.
func NormalizeDuration(seconds float64) float64 {
	return math.Round(seconds*1000) / 1000
}

// ParseNumber reads a numeric form field. Blank or invalid text yields NaN,
// which the setters treat as "unset".
func ParseNumber(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// SetMaxSize sets the output size target in MB. NaN or non-positive clears it.
func (c *Constraints) SetMaxSize(mb float64) {
	if math.IsNaN(mb) || math.IsInf(mb, 0) || mb <= 0 {
		c.MaxSizeMB = nil
		return
	}
	c.MaxSizeMB = &mb
}

// SetFrameRate sets the frame-rate override. NaN or non-positive clears it.
func (c *Constraints) SetFrameRate(fps float64) {
	if math.IsNaN(fps) || math.IsInf(fps, 0) || fps <= 0 {
		c.FrameRate = nil
		return
	}
	rate := int(math.Round(fps))
	c.FrameRate = &rate
}

// SetWidth sets the target width and rescales the height with the source
// aspect ratio when it is known. NaN clears both dimensions.
func (c *Constraints) SetWidth(width float64, stats *probe.MediaStats) {
	if !validDimension(width) {
		c.Width, c.Height = nil, nil
		return
	}
	w := int(math.Round(width))
	c.Width = &w
	if stats != nil {
		if ratio := stats.AspectRatio(); ratio > 0 {
			h := int(math.Round(width * ratio))
			c.Height = &h
		}
	}
}

// SetHeight sets the target height and rescales the width with the source
// aspect ratio when it is known. NaN clears both dimensions.
func (c *Constraints) SetHeight(height float64, stats *probe.MediaStats) {
	if !validDimension(height) {
		c.Width, c.Height = nil, nil
		return
	}
	h := int(math.Round(height))
	c.Height = &h
	if stats != nil {
		if ratio := stats.AspectRatio(); ratio > 0 {
			w := int(math.Round(height / ratio))
			c.Width = &w
		}
	}
}

func validDimension(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// SetTrimStart sets the trim start, clamped to [0, duration]. When the end
// bound is set it is pushed forward so start never exceeds end.
func (c *Constraints) SetTrimStart(seconds, duration float64) {
	v, ok := clampTrim(seconds, duration)
	if !ok {
		c.TrimStart = nil
		return
	}
	c.TrimStart = &v
	if c.TrimEnd != nil && *c.TrimEnd < v {
		end := v
		c.TrimEnd = &end
	}
}

// SetTrimEnd sets the trim end, clamped to [0, duration]. When the start bound
// is set it is pulled back so start never exceeds end.
func (c *Constraints) SetTrimEnd(seconds, duration float64) {
	v, ok := clampTrim(seconds, duration)
	if !ok {
		c.TrimEnd = nil
		return
	}
	c.TrimEnd = &v
	if c.TrimStart != nil && *c.TrimStart > v {
		start := v
		c.TrimStart = &start
	}
}

// clampTrim clamps to [0, duration]; an unknown (non-positive) duration only
// bounds from below.
func clampTrim(seconds, duration float64) (float64, bool) {
	if math.IsNaN(seconds) {
		return 0, false
	}
	known := duration > 0 && !math.IsInf(duration, 0) && !math.IsNaN(duration)
	if seconds < 0 {
		seconds = 0
	}
	if known && seconds > duration {
		seconds = duration
	}
	if math.IsInf(seconds, 0) {
		return 0, false
	}
	return NormalizeDuration(seconds), true
}
