package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"webmgen/encoder"
	"webmgen/probe"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "probe <file>",
		Short: "Show the media statistics used to plan an encode",
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

			result, err := newInspector(cfg, logger).Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderKeyValues(probeRows(result)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func probeRows(result probe.Result) [][2]string {
	rows := [][2]string{
		{"Name", filepath.Base(result.Path)},
		{"Size", encoder.FormatSize(result.SizeBytes)},
	}
	if !result.HasVideo {
		return append(rows, [2]string{"Video", "no video track"})
	}
	s := result.Stats
	resolution := "unknown"
	if s.DisplayWidth > 0 && s.DisplayHeight > 0 {
		resolution = fmt.Sprintf("%dx%d", s.DisplayWidth, s.DisplayHeight)
	}
	duration := "unknown"
	if s.DurationSeconds > 0 {
		duration = (time.Duration(s.DurationSeconds * float64(time.Second))).Round(time.Millisecond).String()
	}
	codec := s.VideoCodec
	if codec == "" {
		codec = "unknown"
	}
	return append(rows,
		[2]string{"Codec", codec},
		[2]string{"Resolution", resolution},
		[2]string{"Duration", duration},
		[2]string{"Bitrate", encoder.FormatBitrate(s.AverageBitrate)},
		[2]string{"Packet rate", strconv.FormatFloat(s.AveragePacketRate, 'f', 3, 64) + " Hz"},
		[2]string{"Estimated FPS", strconv.Itoa(s.EstimatedFrameRate)},
		[2]string{"Packets sampled", strconv.Itoa(s.PacketsSampled)},
	)
}
