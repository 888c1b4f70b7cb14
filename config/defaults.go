package config

import "webmgen/probe"

const (
	defaultConfigPath    = "~/.config/webmgen/config.toml"
	projectConfigName    = "webmgen.toml"
	defaultPrefsFile     = "~/.config/webmgen/preferences.json"
	defaultLogFile       = "~/.local/state/webmgen/webmgen.log"
	defaultLogLevel      = "info"
	defaultMaxFileSizeMB = 4
	defaultServerBind    = "127.0.0.1:7878"
	defaultPacketWindow  = probe.DefaultPacketWindow
	maxPacketWindow      = 100000
)
