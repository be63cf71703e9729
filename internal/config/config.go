// Package config resolves dashboard settings from defaults, an optional YAML
// file, CLAUDE_STATS_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/olliecrow/claude_stats/internal/errors"
	"github.com/olliecrow/claude_stats/internal/usage"
)

const (
	// EnvPrefix is prepended to upper-cased keys, e.g. CLAUDE_STATS_REFRESH_INTERVAL.
	EnvPrefix = "CLAUDE_STATS"
	// GlobalConfigDir is relative to the user's home directory.
	GlobalConfigDir  = ".config/claude-stats"
	GlobalConfigFile = "config.yaml"
)

// Flag names bound by BindFlags.
const (
	FlagConfig      = "config"
	FlagInterval    = "interval"
	FlagTimeout     = "timeout"
	FlagNoColor     = "no-color"
	FlagNoAltScreen = "no-alt-screen"
	FlagCredentials = "credentials"
	FlagEndpoint    = "endpoint"
)

type Config struct {
	RefreshInterval  time.Duration `mapstructure:"refresh_interval"`
	TickRate         time.Duration `mapstructure:"tick_rate"`
	FetchTimeout     time.Duration `mapstructure:"fetch_timeout"`
	SlowThreshold    time.Duration `mapstructure:"slow_threshold"`
	CredentialsPath  string        `mapstructure:"credentials_path"`
	Endpoint         string        `mapstructure:"endpoint"`
	NoColor          bool          `mapstructure:"no_color"`
	AltScreen        bool          `mapstructure:"alt_screen"`
	WatchCredentials bool          `mapstructure:"watch_credentials"`
}

// fileConfig is the on-disk shape written by WriteDefaults. Durations are
// kept as strings so the file stays readable.
type fileConfig struct {
	RefreshInterval  string `yaml:"refresh_interval"`
	TickRate         string `yaml:"tick_rate"`
	FetchTimeout     string `yaml:"fetch_timeout"`
	SlowThreshold    string `yaml:"slow_threshold"`
	CredentialsPath  string `yaml:"credentials_path"`
	Endpoint         string `yaml:"endpoint"`
	NoColor          bool   `yaml:"no_color"`
	AltScreen        bool   `yaml:"alt_screen"`
	WatchCredentials bool   `yaml:"watch_credentials"`
}

func Default() *Config {
	creds, err := usage.DefaultCredentialsPath()
	if err != nil {
		creds = filepath.Join("~", ".claude", ".credentials.json")
	}
	return &Config{
		RefreshInterval:  5 * time.Second,
		TickRate:         100 * time.Millisecond,
		FetchTimeout:     usage.DefaultTimeout,
		SlowThreshold:    3 * time.Second,
		CredentialsPath:  creds,
		Endpoint:         usage.DefaultEndpoint,
		AltScreen:        true,
		WatchCredentials: true,
	}
}

// DefaultPath returns ~/.config/claude-stats/config.yaml, or "" when the home
// directory cannot be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
}

// BindFlags registers the dashboard flags on fs.
func BindFlags(fs *pflag.FlagSet) {
	def := Default()
	fs.String(FlagConfig, "", "config file (default "+displayPath(DefaultPath())+")")
	fs.Duration(FlagInterval, def.RefreshInterval, "refresh interval")
	fs.Duration(FlagTimeout, def.FetchTimeout, "per-request timeout")
	fs.Bool(FlagNoColor, false, "disable colors")
	fs.Bool(FlagNoAltScreen, false, "render in the main terminal buffer")
	fs.String(FlagCredentials, "", "credentials file (default ~/.claude/.credentials.json)")
	fs.String(FlagEndpoint, "", "usage API endpoint")
}

// Load resolves the configuration. fs may be nil. It returns the config and
// the file it was read from ("" when none was used).
func Load(fs *pflag.FlagSet) (*Config, string, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	path, err := resolvePath(fs)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, "", errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the file is valid YAML: "+path)
		}
	}

	if fs != nil {
		if err := bindFlagSet(v, fs); err != nil {
			return nil, "", err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, "", errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Durations look like 5s or 100ms")
	}
	cfg.CredentialsPath = Expand(cfg.CredentialsPath)
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// resolvePath returns the explicit --config path, which must exist, or the
// global path when that file exists.
func resolvePath(fs *pflag.FlagSet) (string, error) {
	if fs != nil && fs.Lookup(FlagConfig) != nil {
		explicit, _ := fs.GetString(FlagConfig)
		if explicit != "" {
			explicit = Expand(explicit)
			if _, err := os.Stat(explicit); err != nil {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path, or run 'claude-stats config init' to create one")
			}
			return explicit, nil
		}
	}
	global := DefaultPath()
	if global == "" {
		return "", nil
	}
	if _, err := os.Stat(global); err != nil {
		return "", nil
	}
	return global, nil
}

func setDefaults(v *viper.Viper, def *Config) {
	v.SetDefault("refresh_interval", def.RefreshInterval)
	v.SetDefault("tick_rate", def.TickRate)
	v.SetDefault("fetch_timeout", def.FetchTimeout)
	v.SetDefault("slow_threshold", def.SlowThreshold)
	v.SetDefault("credentials_path", def.CredentialsPath)
	v.SetDefault("endpoint", def.Endpoint)
	v.SetDefault("no_color", def.NoColor)
	v.SetDefault("alt_screen", def.AltScreen)
	v.SetDefault("watch_credentials", def.WatchCredentials)
}

// bindFlagSet overrides keys only for flags the user actually set, so flag
// defaults never shadow the file or the environment.
func bindFlagSet(v *viper.Viper, fs *pflag.FlagSet) error {
	keys := map[string]string{
		FlagInterval:    "refresh_interval",
		FlagTimeout:     "fetch_timeout",
		FlagNoColor:     "no_color",
		FlagCredentials: "credentials_path",
		FlagEndpoint:    "endpoint",
	}
	for name, key := range keys {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, "Failed to bind --"+name, "")
		}
	}
	if fs.Changed(FlagNoAltScreen) {
		off, err := fs.GetBool(FlagNoAltScreen)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, "Failed to read --"+FlagNoAltScreen, "")
		}
		v.Set("alt_screen", !off)
	}
	return nil
}

// Validate rejects settings the dashboard cannot run with.
func (c *Config) Validate() error {
	durations := []struct {
		key string
		val time.Duration
	}{
		{"refresh_interval", c.RefreshInterval},
		{"tick_rate", c.TickRate},
		{"fetch_timeout", c.FetchTimeout},
		{"slow_threshold", c.SlowThreshold},
	}
	for _, d := range durations {
		if d.val <= 0 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("%s must be positive, got %s", d.key, d.val),
				"Use a duration such as 5s or 100ms")
		}
	}
	if c.TickRate >= c.RefreshInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("tick_rate (%s) must be shorter than refresh_interval (%s)", c.TickRate, c.RefreshInterval),
			"Lower tick_rate or raise refresh_interval")
	}
	if strings.TrimSpace(c.CredentialsPath) == "" {
		return errors.New(errors.ErrConfig, "credentials_path is empty",
			"Point it at ~/.claude/.credentials.json")
	}
	return nil
}

// WriteDefaults writes the default configuration to path. An existing file is
// only replaced when force is set.
func WriteDefaults(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.New(errors.ErrConfig,
			"Config file already exists: "+path,
			"Pass --force to overwrite it")
	}
	def := Default()
	out, err := yaml.Marshal(fileConfig{
		RefreshInterval:  def.RefreshInterval.String(),
		TickRate:         def.TickRate.String(),
		FetchTimeout:     def.FetchTimeout.String(),
		SlowThreshold:    def.SlowThreshold.String(),
		CredentialsPath:  displayPath(def.CredentialsPath),
		Endpoint:         def.Endpoint,
		NoColor:          def.NoColor,
		AltScreen:        def.AltScreen,
		WatchCredentials: def.WatchCredentials,
	})
	if err != nil {
		return fmt.Errorf("encode defaults: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Cannot create config directory", "Check directory permissions")
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Cannot write config file", "Check file permissions")
	}
	return nil
}

// Expand replaces a leading ~ with the home directory and expands $VARS.
func Expand(path string) string {
	path = os.ExpandEnv(strings.TrimSpace(path))
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// displayPath abbreviates the home directory to ~.
func displayPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == home {
		return "~"
	}
	if rest, ok := strings.CutPrefix(path, home+string(filepath.Separator)); ok {
		return "~/" + filepath.ToSlash(rest)
	}
	return path
}
