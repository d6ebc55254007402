package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every tunable hapticd needs to start. It is resolved once,
// at startup, from (in increasing priority) built-in defaults, an optional
// YAML file, HAPTICD_*-prefixed environment variables, and command-line
// flags. Nothing here is hot-reloaded; a restart is required to pick up
// changes (matching the router's "read once, fail fast" posture for the
// TLS cert/key pair).
type Config struct {
	// TickRateHz is reported in the startup log only; the orchestrator
	// always ticks at a fixed 100 Hz.
	TickRateHz int `mapstructure:"tick_rate_hz"`

	// GameSessionAddr is the loopback address the bHaptics v3
	// TLS/WebSocket listener binds, e.g. "127.0.0.1:15882".
	GameSessionAddr string `mapstructure:"gamesession_addr"`
	// CertFile and KeyFile are the X.509 certificate and PKCS-8 private
	// key the game-session listener presents over TLS.
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`

	// AvatarOSCPort is the preferred loopback port for the avatar
	// parameter OSC listener (falls back to an ephemeral port if taken).
	AvatarOSCPort int `mapstructure:"avatar_osc_port"`

	// Merge, Falloff, and Cutoff are the default Gaussian interpolation
	// parameters (meters), applied to every device through one shared
	// Gaussian interpolator.
	Merge   float32 `mapstructure:"merge"`
	Falloff float32 `mapstructure:"falloff"`
	Cutoff  float32 `mapstructure:"cutoff"`

	// StateDir holds the persisted factor/preference store and is the one
	// directory searched for prefab files.
	StateDir string `mapstructure:"state_dir"`
	// LogDir holds the protocol log (.plog / .db) files.
	LogDir string `mapstructure:"log_dir"`
	// LogLevel is the operational zerolog level: debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	// ConfigFile, if set, is loaded before flags/env are applied.
	ConfigFile string `mapstructure:"-"`
}

func defaultConfig() Config {
	return Config{
		TickRateHz:      100,
		GameSessionAddr: "127.0.0.1:15882",
		CertFile:        "hapticd.crt",
		KeyFile:         "hapticd.key",
		AvatarOSCPort:   9001,
		Merge:           0.05,
		Falloff:         0.15,
		Cutoff:          0.35,
		StateDir:        "state",
		LogDir:          "logs",
		LogLevel:        "info",
	}
}

// loadConfig resolves Config from flags, bound through viper with an
// HAPTICD_ environment overlay and an optional YAML file underneath.
func loadConfig(flags *pflag.FlagSet) (Config, error) {
	cfg := defaultConfig()

	vp := viper.New()
	vp.SetEnvPrefix("hapticd")
	vp.AutomaticEnv()

	for key, val := range map[string]any{
		"tick_rate_hz":     cfg.TickRateHz,
		"gamesession_addr": cfg.GameSessionAddr,
		"cert_file":        cfg.CertFile,
		"key_file":         cfg.KeyFile,
		"avatar_osc_port":  cfg.AvatarOSCPort,
		"merge":            cfg.Merge,
		"falloff":          cfg.Falloff,
		"cutoff":           cfg.Cutoff,
		"state_dir":        cfg.StateDir,
		"log_dir":          cfg.LogDir,
		"log_level":        cfg.LogLevel,
	} {
		vp.SetDefault(key, val)
	}

	if configFile, _ := flags.GetString("config"); configFile != "" {
		vp.SetConfigFile(configFile)
		vp.SetConfigType("yaml")
		vp.AddConfigPath(filepath.Dir(configFile))
		if err := vp.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("hapticd: read config file %s: %w", configFile, err)
		}
		cfg.ConfigFile = configFile
	}

	if err := vp.BindPFlags(flags); err != nil {
		return Config{}, fmt.Errorf("hapticd: bind flags: %w", err)
	}

	if err := vp.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("hapticd: unmarshal config: %w", err)
	}

	return cfg, nil
}

func registerFlags(flags *pflag.FlagSet) {
	d := defaultConfig()
	flags.String("config", "", "path to a YAML config file")
	flags.Int("tick_rate_hz", d.TickRateHz, "tick rate in Hz reported at startup (the orchestrator runs at a fixed 100 Hz)")
	flags.String("gamesession_addr", d.GameSessionAddr, "bHaptics TLS/WebSocket listen address")
	flags.String("cert_file", d.CertFile, "TLS certificate path (X.509, PEM)")
	flags.String("key_file", d.KeyFile, "TLS private key path (PKCS-8, PEM)")
	flags.Int("avatar_osc_port", d.AvatarOSCPort, "preferred UDP port for the avatar parameter OSC listener")
	flags.Float32("merge", d.Merge, "default Gaussian snap radius in meters")
	flags.Float32("falloff", d.Falloff, "default Gaussian falloff distance in meters")
	flags.Float32("cutoff", d.Cutoff, "default Gaussian cutoff distance in meters")
	flags.String("state_dir", d.StateDir, "directory for persisted factors/preferences and prefabs")
	flags.String("log_dir", d.LogDir, "directory for protocol log files")
	flags.String("log_level", d.LogLevel, "operational log level: debug, info, warn, error")
}
