package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"webmgen/encoder"
)

// Probe controls the ffprobe invocation
type Probe struct {
	// Binary is the ffprobe executable; empty resolves "ffprobe" from PATH
	Binary string `toml:"binary"`
	// PacketWindow is how many leading video packets are sampled for rate
	// and bitrate estimates
	PacketWindow int `toml:"packet_window"`
}

// Paths holds the files webmgen writes to
type Paths struct {
	// PrefsFile stores the remembered form fields
	PrefsFile string `toml:"prefs_file"`
	// LogFile receives logs while the interactive shell owns the terminal
	LogFile string `toml:"log_file"`
}

// Logging configures the zap logger
type Logging struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Defaults seed the form before any saved preferences are applied
type Defaults struct {
	// MaxFileSizeMB is the initial target size; 0 leaves it unset
	MaxFileSizeMB     float64 `toml:"max_file_size_mb"`
	DisableAudio      bool    `toml:"disable_audio"`
	FishShell         bool    `toml:"fish_shell"`
	RandomizeFilename bool    `toml:"randomize_filename"`
}

// Server configures the local HTTP API
type Server struct {
	Bind string `toml:"bind"`
}

// Config holds all webmgen settings
type Config struct {
	Probe    Probe    `toml:"probe"`
	Paths    Paths    `toml:"paths"`
	Logging  Logging  `toml:"logging"`
	Defaults Defaults `toml:"defaults"`
	Server   Server   `toml:"server"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Probe: Probe{
			PacketWindow: defaultPacketWindow,
		},
		Paths: Paths{
			PrefsFile: defaultPrefsFile,
			LogFile:   defaultLogFile,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
		Defaults: Defaults{
			MaxFileSizeMB: defaultMaxFileSizeMB,
			DisableAudio:  true,
		},
		Server: Server{
			Bind: defaultServerBind,
		},
	}
}

// DefaultConfigPath returns the absolute path of the per-user config file
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load resolves, parses, normalizes and validates the configuration. It also
// reports the resolved path and whether a file was actually read there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

// resolveConfigPath honours an explicit path, then the per-user file, then
// ./webmgen.toml. A missing explicit file is not an error.
func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config %s is a directory", expanded)
		}
		return expanded, true, nil
	}

	userPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(userPath); err == nil && !info.IsDir() {
		return userPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return userPath, false, nil
}

// Preferences converts the configured defaults into the persisted form record
func (d Defaults) Preferences() encoder.Preferences {
	var size *float64
	if d.MaxFileSizeMB > 0 {
		v := d.MaxFileSizeMB
		size = &v
	}
	return encoder.Preferences{
		MaxFileSize:       size,
		DisableAudio:      d.DisableAudio,
		FishShell:         d.FishShell,
		RandomizeFilename: d.RandomizeFilename,
	}
}

// Constraints returns the initial form state described by the defaults
func (c *Config) Constraints() encoder.Constraints {
	constraints := encoder.DefaultConstraints()
	c.Defaults.Preferences().Apply(&constraints)
	return constraints
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
