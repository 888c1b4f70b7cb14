package config

import (
	"fmt"
	"math"
	"net"

	"webmgen/logging"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Probe.PacketWindow < 1 || c.Probe.PacketWindow > maxPacketWindow {
		return fmt.Errorf("probe.packet_window must be between 1 and %d, got %d", maxPacketWindow, c.Probe.PacketWindow)
	}
	if size := c.Defaults.MaxFileSizeMB; size < 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return fmt.Errorf("defaults.max_file_size_mb must be a non-negative number, got %v", size)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if _, _, err := net.SplitHostPort(c.Server.Bind); err != nil {
		return fmt.Errorf("server.bind %q: %w", c.Server.Bind, err)
	}
	return nil
}
