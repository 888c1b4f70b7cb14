package encoder

// PreferencesKey is the preference-store key of the persisted form fields.
const PreferencesKey = "form"

// Preferences is the persisted subset of Constraints. The source file is never
// persisted. A null maxFileSize is meaningful: it restores an unset size.
type Preferences struct {
	MaxFileSize       *float64 `json:"maxFileSize"`
	DisableAudio      bool     `json:"disableAudio"`
	FishShell         bool     `json:"fishShell"`
	RandomizeFilename bool     `json:"randomizeFilename"`
}

// PreferencesOf extracts the persisted fields from c.
func PreferencesOf(c Constraints) Preferences {
	var size *float64
	if c.MaxSizeMB != nil {
		v := *c.MaxSizeMB
		size = &v
	}
	return Preferences{
		MaxFileSize:       size,
		DisableAudio:      c.DisableAudio,
		FishShell:         c.Dialect == DialectFish,
		RandomizeFilename: c.RandomizeName,
	}
}

// Apply copies the persisted fields onto c.
func (p Preferences) Apply(c *Constraints) {
	c.MaxSizeMB = nil
	if p.MaxFileSize != nil {
		c.SetMaxSize(*p.MaxFileSize)
	}
	c.DisableAudio = p.DisableAudio
	c.Dialect = DialectPOSIX
	if p.FishShell {
		c.Dialect = DialectFish
	}
	c.RandomizeName = p.RandomizeFilename
}
