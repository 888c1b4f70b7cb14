package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"webmgen/clipboard"
	"webmgen/encoder"
	"webmgen/metrics"
	"webmgen/prefs"
	"webmgen/tui"
)

var errNoTerminal = errors.New("stdout is not a terminal; pass a file to print its script")

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// runShell opens the interactive form, or prints the script for file when the
// output is redirected.
func runShell(cmd *cobra.Command, ctx *commandContext, file string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	if !isTerminal(os.Stdout) {
		if file == "" {
			return errNoTerminal
		}
		logger, err := ctx.stderrLogger()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
		script := buildScript(cmd.Context(), cfg, logger, file, encoder.Overrides{}, false)
		metrics.RecordScript(metrics.SurfaceCLI, false)
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(script.Lines(false), "\n"))
		return nil
	}

	logger, err := ctx.fileLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting interactive session", zap.String("config", ctx.configPath), zap.String("file", file))

	model := tui.NewModel(tui.Options{
		Inspector:   newInspector(cfg, logger),
		Clipboard:   clipboard.NewOSC52(os.Stderr),
		Preferences: prefs.Open(cfg.Paths.PrefsFile, prefs.WithLogger(logger)),
		Logger:      logger,
		Defaults:    cfg.Constraints(),
		InitialFile: file,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run interactive form: %w", err)
	}
	return nil
}
