package encoder

import "webmgen/probe"

// Overrides is a batch of optional constraint edits, as supplied by command
// flags or an API request. Nil fields leave the constraint untouched.
type Overrides struct {
	MaxSizeMB     *float64 `json:"maxSizeMB,omitempty"`
	DisableAudio  *bool    `json:"disableAudio,omitempty"`
	Width         *float64 `json:"width,omitempty"`
	Height        *float64 `json:"height,omitempty"`
	FrameRate     *float64 `json:"frameRate,omitempty"`
	TrimStart     *float64 `json:"trimStart,omitempty"`
	TrimEnd       *float64 `json:"trimEnd,omitempty"`
	Dialect       *string  `json:"dialect,omitempty"`
	RandomizeName *bool    `json:"randomizeName,omitempty"`
}

// Apply runs the edits through the Constraints setters so their clamping rules
// still apply. Trim start is applied before trim end, so a conflicting
// pair resolves in favour of the end. When both dimensions are given they are
// taken as-is; a single dimension rescales its partner.
func (o Overrides) Apply(c *Constraints, stats *probe.MediaStats) {
	if o.MaxSizeMB != nil {
		c.SetMaxSize(*o.MaxSizeMB)
	}
	if o.DisableAudio != nil {
		c.DisableAudio = *o.DisableAudio
	}
	switch {
	case o.Width != nil && o.Height != nil:
		c.SetWidth(*o.Width, nil)
		c.SetHeight(*o.Height, nil)
	case o.Width != nil:
		c.SetWidth(*o.Width, stats)
	case o.Height != nil:
		c.SetHeight(*o.Height, stats)
	}
	if o.FrameRate != nil {
		c.SetFrameRate(*o.FrameRate)
	}

	duration := 0.0
	if stats != nil {
		duration = stats.DurationSeconds
	}
	if o.TrimStart != nil {
		c.SetTrimStart(*o.TrimStart, duration)
	}
	if o.TrimEnd != nil {
		c.SetTrimEnd(*o.TrimEnd, duration)
	}
	if o.Dialect != nil {
		c.Dialect = ParseDialect(*o.Dialect)
	}
	if o.RandomizeName != nil {
		c.RandomizeName = *o.RandomizeName
	}
}
