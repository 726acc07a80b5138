package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sdejongh/imdirdiff/internal/platform"
	"github.com/sdejongh/imdirdiff/pkg/config"
	"github.com/sdejongh/imdirdiff/pkg/models"
)

// validateRoots checks both roots before anything is indexed
func validateRoots(left, right string) error {
	for _, root := range []struct{ side, path string }{{"left", left}, {"right", right}} {
		if err := platform.ValidateRoot(root.path); err != nil {
			return fmt.Errorf("%s root: %w", root.side, err)
		}
		if platform.IsS3URI(root.path) {
			continue
		}

		info, err := os.Stat(root.path)
		if os.IsNotExist(err) {
			return fmt.Errorf("%s path does not exist: %s", root.side, root.path)
		} else if err != nil {
			return fmt.Errorf("failed to access %s path: %w", root.side, err)
		} else if !info.IsDir() {
			return fmt.Errorf("%s path exists but is not a directory: %s", root.side, root.path)
		}
	}
	return nil
}

// validateCompareFlags checks enumerated flag values
func validateCompareFlags() error {
	validOutputs := map[string]bool{"human": true, "json": true}
	if !validOutputs[compareFlags.Output] {
		return fmt.Errorf("invalid output format: %s (valid: human, json)", compareFlags.Output)
	}

	if !validOutputs[compareFlags.DiffFormat] {
		return fmt.Errorf("invalid differences report format: %s (valid: human, json)", compareFlags.DiffFormat)
	}

	if compareFlags.Workers < 0 {
		return fmt.Errorf("invalid worker count: %d", compareFlags.Workers)
	}

	if compareFlags.ThumbHeight < 0 {
		return fmt.Errorf("invalid thumbnail height: %d", compareFlags.ThumbHeight)
	}

	return nil
}

// loadConfig loads configuration from --config or the default location,
// with IMDIRDIFF_* environment overrides
func loadConfig() (*config.Config, error) {
	return config.Load(globalFlags.ConfigFile)
}

// applyFlagsToConfig overrides config values with flags set on the command line
func applyFlagsToConfig(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if compareFlags.Workers > 0 {
		cfg.Performance.MaxWorkers = compareFlags.Workers
	}
	if compareFlags.Bandwidth != "" {
		cfg.Performance.BandwidthLimit = compareFlags.Bandwidth
	}

	if len(compareFlags.Exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, compareFlags.Exclude...)
	}
	if len(compareFlags.Extensions) > 0 {
		cfg.Compare.Extensions = compareFlags.Extensions
	}
	if changed("trust-identical-bytes") {
		cfg.Compare.TrustIdenticalBytes = compareFlags.TrustIdenticalBytes
	}
	if compareFlags.NoExif {
		cfg.Compare.Exif = false
	}

	if compareFlags.NoReport {
		cfg.Report.Enabled = false
	}
	if compareFlags.ReportDir != "" {
		cfg.Report.Dir = compareFlags.ReportDir
		cfg.Report.Enabled = !compareFlags.NoReport
	}
	if compareFlags.NoDiffImages {
		cfg.Report.DiffImages = false
	}
	if compareFlags.ThumbHeight > 0 {
		cfg.Report.ThumbHeight = compareFlags.ThumbHeight
	}

	if changed("output") {
		cfg.Output.Format = compareFlags.Output
	}

	if compareFlags.S3Region != "" {
		cfg.S3.Region = compareFlags.S3Region
	}
	if compareFlags.S3Profile != "" {
		cfg.S3.Profile = compareFlags.S3Profile
	}

	if compareFlags.LogFile != "" {
		cfg.Logging.Enabled = true
		cfg.Logging.File = compareFlags.LogFile
	}
	if compareFlags.LogFormat != "" {
		cfg.Logging.Format = compareFlags.LogFormat
	}
	if compareFlags.LogLevel != "" {
		cfg.Logging.Level = compareFlags.LogLevel
	}

	// Disable progress in quiet mode
	if globalFlags.Quiet {
		cfg.Output.Progress = false
		cfg.Output.Quiet = true
	}
}

// createDiffOperation creates a diff operation from configuration
func createDiffOperation(cfg *config.Config, left, right string) (*models.DiffOperation, error) {
	operation := &models.DiffOperation{
		ID:                  uuid.New().String(),
		LeftPath:            left,
		RightPath:           right,
		Extensions:          cfg.Compare.Extensions,
		ExcludePatterns:     cfg.Exclude,
		MaxWorkers:          cfg.Performance.MaxWorkers,
		BufferSize:          cfg.Performance.BufferSize,
		BandwidthLimit:      cfg.BandwidthBytes(),
		Exif:                cfg.Compare.Exif,
		TrustIdenticalBytes: cfg.Compare.TrustIdenticalBytes,
		RenderDiffs:         cfg.Report.Enabled && cfg.Report.DiffImages,
		ThumbHeight:         cfg.Report.ThumbHeight,
		CreatedAt:           time.Now(),
	}
	if cfg.Report.Enabled {
		operation.ReportDir = cfg.Report.Dir
	}

	if err := operation.Validate(); err != nil {
		return nil, err
	}

	return operation, nil
}
