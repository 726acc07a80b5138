package config

import (
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/sdejongh/imdirdiff/pkg/models"
)

// Config represents the application configuration
type Config struct {
	Compare     CompareConfig     `yaml:"compare" mapstructure:"compare"`
	Performance PerformanceConfig `yaml:"performance" mapstructure:"performance"`
	Report      ReportConfig      `yaml:"report" mapstructure:"report"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
	S3          S3Config          `yaml:"s3" mapstructure:"s3"`
	Exclude     []string          `yaml:"exclude" mapstructure:"exclude"`
}

// CompareConfig holds comparison-related settings
type CompareConfig struct {
	// Extensions lists indexed file extensions (lowercase, no dot)
	Extensions []string `yaml:"extensions" mapstructure:"extensions"`
	// TrustIdenticalBytes reports byte-identical files as identical without decoding
	TrustIdenticalBytes bool `yaml:"trust_identical_bytes" mapstructure:"trust_identical_bytes"`
	// Exif lists differing EXIF tags for differing images
	Exif bool `yaml:"exif" mapstructure:"exif"`
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	MaxWorkers int `yaml:"max_workers" mapstructure:"max_workers"`
	BufferSize int `yaml:"buffer_size" mapstructure:"buffer_size"`
	// BandwidthLimit caps image reads across all workers, e.g. "10MB"; empty means unlimited
	BandwidthLimit string `yaml:"bandwidth_limit" mapstructure:"bandwidth_limit"`
}

// ReportConfig holds HTML report settings
type ReportConfig struct {
	Enabled     bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir         string `yaml:"dir" mapstructure:"dir"`
	DiffImages  bool   `yaml:"diff_images" mapstructure:"diff_images"`
	ThumbHeight int    `yaml:"thumb_height" mapstructure:"thumb_height"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format   string `yaml:"format" mapstructure:"format"`     // "human" or "json"
	Progress bool   `yaml:"progress" mapstructure:"progress"` // Show progress bar
	Quiet    bool   `yaml:"quiet" mapstructure:"quiet"`       // Suppress non-error output
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	Format     string `yaml:"format" mapstructure:"format"` // "json" or "text"
	Level      string `yaml:"level" mapstructure:"level"`   // "debug", "info", "warn", "error"
	File       string `yaml:"file" mapstructure:"file"`
	MaxSize    int64  `yaml:"max_size" mapstructure:"max_size"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
}

// S3Config holds settings for s3:// roots
type S3Config struct {
	Region  string `yaml:"region" mapstructure:"region"`
	Profile string `yaml:"profile" mapstructure:"profile"`
}

// DefaultReportDir is where the HTML report is written unless configured
const DefaultReportDir = "./imdirdiff-out"

// DefaultThumbHeight is the height of report thumbnails in pixels
const DefaultThumbHeight = 80

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Compare: CompareConfig{
			Extensions:          append([]string(nil), models.DefaultImageExtensions...),
			TrustIdenticalBytes: false,
			Exif:                true,
		},
		Performance: PerformanceConfig{
			MaxWorkers: runtime.NumCPU(),
			BufferSize: 65536,
		},
		Report: ReportConfig{
			Enabled:     true,
			Dir:         DefaultReportDir,
			DiffImages:  true,
			ThumbHeight: DefaultThumbHeight,
		},
		Output: OutputConfig{
			Format:   "human",
			Progress: true,
			Quiet:    false,
		},
		Logging: LoggingConfig{
			Enabled:    false,
			Format:     "json",
			Level:      "info",
			File:       "",
			MaxSize:    10 * 1024 * 1024,
			MaxBackups: 3,
		},
		Exclude: []string{},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Performance.MaxWorkers < 1 {
		return &models.ValidationError{
			Field:   "performance.max_workers",
			Message: "must be at least 1",
		}
	}

	if c.Performance.BufferSize < 1024 {
		return &models.ValidationError{
			Field:   "performance.buffer_size",
			Message: "must be at least 1024 bytes",
		}
	}

	if c.Performance.BandwidthLimit != "" {
		if _, err := humanize.ParseBytes(c.Performance.BandwidthLimit); err != nil {
			return &models.ValidationError{
				Field:   "performance.bandwidth_limit",
				Message: "invalid size: " + c.Performance.BandwidthLimit,
			}
		}
	}

	if len(c.Compare.Extensions) == 0 {
		return &models.ValidationError{
			Field:   "compare.extensions",
			Message: "must list at least one extension",
		}
	}

	if c.Report.Enabled {
		if c.Report.Dir == "" {
			return &models.ValidationError{
				Field:   "report.dir",
				Message: "must be set when the report is enabled",
			}
		}
		if c.Report.ThumbHeight < 1 {
			return &models.ValidationError{
				Field:   "report.thumb_height",
				Message: "must be at least 1",
			}
		}
	}

	if !lo.Contains([]string{"human", "json"}, c.Output.Format) {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	if !lo.Contains([]string{"json", "text"}, c.Logging.Format) {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	if !lo.Contains([]string{"debug", "info", "warn", "error"}, c.Logging.Level) {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	if c.Logging.Enabled && c.Logging.File == "" {
		return &models.ValidationError{
			Field:   "logging.file",
			Message: "must be set when logging is enabled",
		}
	}

	return nil
}

// BandwidthBytes returns the read limit in bytes per second, 0 when unlimited
func (c *Config) BandwidthBytes() int64 {
	if c.Performance.BandwidthLimit == "" {
		return 0
	}
	n, err := humanize.ParseBytes(c.Performance.BandwidthLimit)
	if err != nil {
		return 0
	}
	return int64(n)
}
