package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.Probe.Binary = strings.TrimSpace(c.Probe.Binary)
	if c.Probe.Binary != "" && strings.ContainsAny(c.Probe.Binary, `/\`) {
		expanded, err := expandPath(c.Probe.Binary)
		if err != nil {
			return fmt.Errorf("probe.binary: %w", err)
		}
		c.Probe.Binary = expanded
	}
	if c.Probe.PacketWindow == 0 {
		c.Probe.PacketWindow = defaultPacketWindow
	}

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.PrefsFile) == "" {
		c.Paths.PrefsFile = defaultPrefsFile
	}
	if c.Paths.PrefsFile, err = expandPath(strings.TrimSpace(c.Paths.PrefsFile)); err != nil {
		return fmt.Errorf("paths.prefs_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogFile) == "" {
		c.Paths.LogFile = defaultLogFile
	}
	if c.Paths.LogFile, err = expandPath(strings.TrimSpace(c.Paths.LogFile)); err != nil {
		return fmt.Errorf("paths.log_file: %w", err)
	}
	return nil
}
