package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	apperrors "launchhook/internal/errors"
	"launchhook/internal/logging"
)

// Defaults for a fresh configuration
const (
	DefaultURL          = "https://unifi-controller.local:8443/api/"
	DefaultMethod       = "POST"
	DefaultHeaderBlock  = "Content-Type: application/json"
	DefaultBodyTemplate = `{"event": "app_started", "app": "{app}", "timestamp": "{timestamp}"}`

	// EnvPrefix prefixes environment overrides, e.g. LAUNCHHOOK_URL
	EnvPrefix = "LAUNCHHOOK"
)

// Methods offered by the control surfaces
var Methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

// Config is the persisted record. Field names on disk match the JSON tags.
type Config struct {
	// Executable name of the process to watch
	TargetProcessName string `mapstructure:"targetProcessName" json:"targetProcessName" yaml:"targetProcessName"`

	// Callback request
	URL          string `mapstructure:"url" json:"url" yaml:"url"`
	Method       string `mapstructure:"method" json:"method" yaml:"method"`
	APIKey       string `mapstructure:"apiKey" json:"apiKey" yaml:"apiKey"`
	HeaderBlock  string `mapstructure:"headerBlock" json:"headerBlock" yaml:"headerBlock"`
	BodyTemplate string `mapstructure:"bodyTemplate" json:"bodyTemplate" yaml:"bodyTemplate"`

	// Run at login, and start monitoring as soon as the program starts
	AutoStartApp        bool `mapstructure:"autoStartApp" json:"autoStartApp" yaml:"autoStartApp"`
	AutoStartMonitoring bool `mapstructure:"autoStartMonitoring" json:"autoStartMonitoring" yaml:"autoStartMonitoring"`
}

// MonitorConfig is the snapshot taken when monitoring starts
type MonitorConfig struct {
	TargetProcessName   string
	AutoStartMonitoring bool
}

// Default returns the configuration used when nothing is persisted
func Default() *Config {
	return &Config{
		URL:          DefaultURL,
		Method:       DefaultMethod,
		HeaderBlock:  DefaultHeaderBlock,
		BodyTemplate: DefaultBodyTemplate,
	}
}

// DefaultPath is config.json in the user's config directory
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(dir, "launchhook", "config.json")
}

// LoadConfig reads the configuration file at configPath. A missing or malformed
// file yields a ConfigLoad error.
func LoadConfig(configPath string) (*Config, error) {
	v := newViper(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, apperrors.ConfigLoad(err, fmt.Sprintf("failed to read config file %s", configPath))
	}
	return decode(v)
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	// Environment overrides, e.g. LAUNCHHOOK_APIKEY
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setConfigDefaults(v)
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.ConfigLoad(err, "failed to parse config file")
	}
	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))

	return &cfg, nil
}

// Load is LoadConfig with local recovery: on any load error it logs a warning
// and returns the defaults. The error is returned for callers that want to
// show it, but is never fatal.
func Load(configPath string, logger *logging.Logger) (*Config, error) {
	cfg, err := LoadConfig(configPath)
	if err == nil {
		return cfg, nil
	}
	if logger != nil {
		if apperrors.Is(err, fs.ErrNotExist) {
			logger.Debugf("No config at %s, using defaults", configPath)
		} else {
			logger.Warnf("Using default configuration: %v", err)
		}
	}
	return Default(), err
}

// setConfigDefaults sets default values for configuration
func setConfigDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("targetProcessName", d.TargetProcessName)
	v.SetDefault("url", d.URL)
	v.SetDefault("method", d.Method)
	v.SetDefault("apiKey", d.APIKey)
	v.SetDefault("headerBlock", d.HeaderBlock)
	v.SetDefault("bodyTemplate", d.BodyTemplate)
	v.SetDefault("autoStartApp", d.AutoStartApp)
	v.SetDefault("autoStartMonitoring", d.AutoStartMonitoring)
}

// Validate checks the fields a callback cannot work without
func (c *Config) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return apperrors.ValidationError(fmt.Sprintf("url must be an absolute URI: %q", c.URL))
	}
	if strings.TrimSpace(c.Method) == "" || strings.ContainsAny(c.Method, " \t\r\n") {
		return apperrors.ValidationError(fmt.Sprintf("invalid method: %q", c.Method))
	}
	return nil
}

// SaveConfig writes cfg as indented JSON, replacing the file atomically
func SaveConfig(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return apperrors.Wrap(err, "failed to encode configuration")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.Wrap(err, "failed to create config directory")
	}

	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return apperrors.Wrap(err, "failed to create temporary config file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return apperrors.Wrap(err, "failed to write config file")
	}
	if err := tmp.Close(); err != nil {
		return apperrors.Wrap(err, "failed to write config file")
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return apperrors.Wrap(err, "failed to set config file permissions")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return apperrors.Wrap(err, "failed to replace config file")
	}
	return nil
}

// CreateDefaultConfig creates a default configuration file at the specified path
func CreateDefaultConfig(path string) error {
	return SaveConfig(Default(), path)
}
