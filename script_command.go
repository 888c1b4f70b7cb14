package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"webmgen/clipboard"
	"webmgen/config"
	"webmgen/encoder"
	"webmgen/logging"
	"webmgen/metrics"
	"webmgen/probe"
)

type scriptFlags struct {
	maxSize       float64
	width         float64
	height        float64
	fps           float64
	start         float64
	end           float64
	disableAudio  bool
	randomizeName bool
	dialect       string
	sample        bool
	copy          bool
	comments      bool
}

func newScriptCommand(ctx *commandContext) *cobra.Command {
	var flags scriptFlags

	cmd := &cobra.Command{
		Use:   "script <file>",
		Short: "Print the two-pass encode script for a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.stderrLogger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			overrides := flags.overrides(cmd)
			script := buildScript(cmd.Context(), cfg, logger, args[0], overrides, flags.sample)
			metrics.RecordScript(metrics.SurfaceCLI, flags.sample)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, strings.Join(script.Lines(flags.comments), "\n"))

			if flags.copy {
				err := clipboard.NewOSC52(os.Stderr).WriteText(script.Text())
				metrics.RecordCopy(err)
				if err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Float64Var(&flags.maxSize, "max-size", 0, "Target output size in MB (0 removes the bitrate flags)")
	f.Float64Var(&flags.width, "width", 0, "Output width in pixels; height follows the source aspect ratio")
	f.Float64Var(&flags.height, "height", 0, "Output height in pixels; width follows the source aspect ratio")
	f.Float64Var(&flags.fps, "fps", 0, "Force an output frame rate")
	f.Float64Var(&flags.start, "start", 0, "Trim start in seconds")
	f.Float64Var(&flags.end, "end", 0, "Trim end in seconds")
	f.BoolVar(&flags.disableAudio, "disable-audio", false, "Drop the audio track")
	f.BoolVar(&flags.randomizeName, "randomize-name", false, "Use a random output filename")
	f.StringVar(&flags.dialect, "dialect", "", "Shell dialect: posix or fish")
	f.BoolVar(&flags.sample, "sample", false, "Encode only one second starting at the trim start")
	f.BoolVar(&flags.copy, "copy", false, "Also copy the script to the clipboard (OSC 52)")
	f.BoolVar(&flags.comments, "comments", false, "Annotate the passes with comments")

	return cmd
}

// overrides collects only the flags the user actually set, so the configured
// defaults apply to everything else.
func (f *scriptFlags) overrides(cmd *cobra.Command) encoder.Overrides {
	var o encoder.Overrides
	changed := cmd.Flags().Changed
	float := func(name string, v float64) *float64 {
		if !changed(name) {
			return nil
		}
		return &v
	}
	o.MaxSizeMB = float("max-size", f.maxSize)
	o.Width = float("width", f.width)
	o.Height = float("height", f.height)
	o.FrameRate = float("fps", f.fps)
	o.TrimStart = float("start", f.start)
	o.TrimEnd = float("end", f.end)
	if changed("disable-audio") {
		v := f.disableAudio
		o.DisableAudio = &v
	}
	if changed("randomize-name") {
		v := f.randomizeName
		o.RandomizeName = &v
	}
	if changed("dialect") {
		v := f.dialect
		o.Dialect = &v
	}
	return o
}

// buildScript probes path and renders its script from the configured defaults
// plus overrides. A failed probe is logged and the script is rendered without
// stats, the same way the interactive form recovers.
func buildScript(ctx context.Context, cfg *config.Config, logger *logging.Logger, path string, overrides encoder.Overrides, sample bool) encoder.Script {
	var stats *probe.MediaStats
	result, err := newInspector(cfg, logger).Inspect(ctx, path)
	switch {
	case err != nil:
		logger.Warn("probe failed; rendering without stats", zap.String("path", path), zap.Error(err))
	case !result.HasVideo:
		logger.Warn("no video track found", zap.String("path", path))
	default:
		stats = result.VideoStats()
	}

	constraints := cfg.Constraints()
	constraints.Source = path
	overrides.Apply(&constraints, stats)

	plan := encoder.DerivePlan(stats, constraints)
	if sample {
		plan = encoder.SamplePlan(plan)
	}
	return encoder.Render(plan)
}
