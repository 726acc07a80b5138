package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. IMDIRDIFF_PERFORMANCE_MAX_WORKERS
const EnvPrefix = "IMDIRDIFF"

// Load reads configuration from path, or from the default location when path
// is empty. A missing default file is not an error. Environment variables
// override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		dir, err := DefaultConfigDir()
		if err == nil {
			v.AddConfigPath(dir)
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults registers every key so env overrides apply even without a file
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("compare.extensions", cfg.Compare.Extensions)
	v.SetDefault("compare.trust_identical_bytes", cfg.Compare.TrustIdenticalBytes)
	v.SetDefault("compare.exif", cfg.Compare.Exif)
	v.SetDefault("performance.max_workers", cfg.Performance.MaxWorkers)
	v.SetDefault("performance.buffer_size", cfg.Performance.BufferSize)
	v.SetDefault("performance.bandwidth_limit", cfg.Performance.BandwidthLimit)
	v.SetDefault("report.enabled", cfg.Report.Enabled)
	v.SetDefault("report.dir", cfg.Report.Dir)
	v.SetDefault("report.diff_images", cfg.Report.DiffImages)
	v.SetDefault("report.thumb_height", cfg.Report.ThumbHeight)
	v.SetDefault("output.format", cfg.Output.Format)
	v.SetDefault("output.progress", cfg.Output.Progress)
	v.SetDefault("output.quiet", cfg.Output.Quiet)
	v.SetDefault("logging.enabled", cfg.Logging.Enabled)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.max_size", cfg.Logging.MaxSize)
	v.SetDefault("logging.max_backups", cfg.Logging.MaxBackups)
	v.SetDefault("s3.region", cfg.S3.Region)
	v.SetDefault("s3.profile", cfg.S3.Profile)
	v.SetDefault("exclude", cfg.Exclude)
}

// SaveToFile saves configuration to a YAML file
func SaveToFile(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfigDir returns the directory holding the default config file
func DefaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}

	return filepath.Join(dir, "imdirdiff"), nil
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "config.yaml"), nil
}
