package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"webmgen/config"
	"webmgen/logging"
	"webmgen/metrics"
	"webmgen/probe"
)

// inspector is what the commands need from the media probe.
type inspector interface {
	Inspect(ctx context.Context, path string) (probe.Result, error)
}

// newInspector builds the probe used by every command. Tests swap it.
var newInspector = func(cfg *config.Config, logger *logging.Logger) inspector {
	return probe.New(probe.Options{
		Binary:       cfg.Probe.Binary,
		PacketWindow: cfg.Probe.PacketWindow,
		Logger:       logger,
		Observer:     metrics.NewProbeObserver(),
	})
}

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
			if _, err := logging.ParseLevel(level); err != nil {
				c.configErr = fmt.Errorf("--log-level: %w", err)
				return
			}
			cfg.Logging.Level = level
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

// stderrLogger is used by the non-interactive commands.
func (c *commandContext) stderrLogger() (*logging.Logger, error) {
	return c.logger("stderr")
}

// fileLogger writes to the configured log file so the terminal stays free for
// the interactive form.
func (c *commandContext) fileLogger() (*logging.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Paths.LogFile), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return c.logger(cfg.Paths.LogFile)
}

func (c *commandContext) logger(output string) (*logging.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPath:  output,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}
