package encoder

import (
	"fmt"
	"math"
	"strings"
)

const (
	setupPOSIX = `temp="$(mktemp)"`
	setupFish  = `set temp "$(mktemp)"`
	teardown   = `rm "$temp"`
	passLog    = `"$temp"`
)

// vp9Tuning are the fixed libvpx-vp9 quality/speed settings.
var vp9Tuning = []string{
	"-quality good",
	"-speed 0",
	"-g 300",
	"-lag-in-frames 25",
	"-tile-columns 1",
	"-row-mt 1",
	"-enable-tpl 1",
	"-frame-parallel 1",
}

// Script is the rendered shell script: temp-file setup, the two encode passes
// and cleanup. The passes are empty when no source is loaded.
type Script struct {
	Setup      string `json:"setup"`
	FirstPass  string `json:"firstPass"`
	SecondPass string `json:"secondPass"`
	Teardown   string `json:"teardown"`
}

// HasPasses reports whether the script encodes anything.
func (s Script) HasPasses() bool {
	return s.FirstPass != "" || s.SecondPass != ""
}

// Lines returns the script one command per line, optionally annotated with
// pass comments for display.
func (s Script) Lines(comments bool) []string {
	lines := []string{s.Setup}
	if s.HasPasses() {
		if comments {
			lines = append(lines, "# first pass")
		}
		lines = append(lines, s.FirstPass)
		if comments {
			lines = append(lines, "# second pass")
		}
		lines = append(lines, s.SecondPass)
	}
	return append(lines, s.Teardown)
}

// Text joins the commands with newlines, ready for the clipboard.
func (s Script) Text() string {
	return strings.Join(s.Lines(false), "\n")
}

// Render assembles the two-pass ffmpeg commands for p. It trusts the plan.
func Render(p Plan) Script {
	script := Script{Setup: setupPOSIX, Teardown: teardown}
	if p.Dialect == DialectFish {
		script.Setup = setupFish
	}
	if strings.TrimSpace(p.Source) == "" {
		return script
	}

	common := commonArgs(p)

	pass1 := append(append([]string(nil), common...), "-pass 1", "/dev/null")
	pass2 := append(append([]string(nil), common...), "-pass 2", "-fflags bitexact", quoteArg(p.Dialect, p.OutputFilename))

	script.FirstPass = strings.Join(pass1, " ")
	script.SecondPass = strings.Join(pass2, " ")
	return script
}

func commonArgs(p Plan) []string {
	args := []string{"ffmpeg", "-hide_banner", "-loglevel error", "-stats", "-y"}

	if p.TrimStart != nil && *p.TrimStart != 0 {
		args = append(args, fmt.Sprintf("-ss %.3f", *p.TrimStart))
	}
	full := p.SourceDuration
	if full == 0 {
		full = -1
	}
	if p.TrimEnd != nil && *p.TrimEnd != NormalizeDuration(full) {
		args = append(args, fmt.Sprintf("-to %.3f", *p.TrimEnd))
	}

	args = append(args, "-i "+quoteArg(p.Dialect, p.Source))

	if p.FrameRate != nil {
		args = append(args, fmt.Sprintf("-r %d", *p.FrameRate))
	}
	if len(p.VideoFilters) > 0 {
		args = append(args, "-vf "+quoteArg(p.Dialect, strings.Join(p.VideoFilters, ",")))
	}
	args = append(args, bitrateArgs(p.TargetBitrate)...)
	if p.DisableAudio {
		args = append(args, "-an")
	} else {
		args = append(args, "-b:a 128k")
	}
	args = append(args, vp9Tuning...)
	return append(args,
		"-c:v libvpx-vp9",
		"-f webm",
		"-passlogfile "+passLog,
	)
}

// bitrateArgs emits the target with a ±50% VBR corridor, in whole kilobits.
func bitrateArgs(bitrate *int64) []string {
	if bitrate == nil || *bitrate <= 0 {
		return nil
	}
	kilobits := *bitrate / 1000
	minrate := int64(math.Floor(float64(kilobits) / 1.5))
	maxrate := int64(math.Floor(float64(kilobits) * 1.5))
	return []string{
		fmt.Sprintf("-b:v %dk", kilobits),
		fmt.Sprintf("-minrate %dk", minrate),
		fmt.Sprintf("-maxrate %dk", maxrate),
		"-crf 10",
	}
}

// quoteArg double-quotes s when that is safe in the dialect, otherwise uses
// single quotes with the dialect's escaping.
func quoteArg(d Dialect, s string) string {
	if !strings.ContainsAny(s, "\"$`\\\n") {
		return `"` + s + `"`
	}
	if d == DialectFish {
		escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s)
		return `'` + escaped + `'`
	}
	return `'` + strings.ReplaceAll(s, `'`, `'\''`) + `'`
}
