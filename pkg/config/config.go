package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the runtime settings. Values come from defaults, then an
// optional config.yaml, then environment variables (the original deployment
// configured everything through the environment), then command-line flags.
type Config struct {
	Port       string `mapstructure:"port"`
	APIKey     string `mapstructure:"api_key"`
	DataDir    string `mapstructure:"data_dir"`
	Persist    bool   `mapstructure:"persist"`
	LimitsFile string `mapstructure:"limits_file"`
	LogLevel   string `mapstructure:"log_level"`
}

// DataFile is the path of the JSON state snapshot.
func (c *Config) DataFile() string {
	return filepath.Join(c.DataDir, "data.json")
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return "0.0.0.0:" + c.Port
}

// Build assembles the configuration. cfgFile may be empty, in which case a
// config.yaml next to the binary is used when present. flags may be nil.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("port", "3000")
	v.SetDefault("api_key", "")
	v.SetDefault("data_dir", ".state")
	v.SetDefault("persist", true)
	v.SetDefault("limits_file", "")
	v.SetDefault("log_level", "info")

	// Original env surface, no prefix
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("api_key", "API_KEY")
	_ = v.BindEnv("data_dir", "DATA_DIR")
	_ = v.BindEnv("persist", "PERSIST")
	_ = v.BindEnv("limits_file", "LIMITS_FILE")
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
