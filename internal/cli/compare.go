package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sdejongh/imdirdiff/internal/platform"
	"github.com/sdejongh/imdirdiff/pkg/compare"
	"github.com/sdejongh/imdirdiff/pkg/config"
	"github.com/sdejongh/imdirdiff/pkg/engine"
	"github.com/sdejongh/imdirdiff/pkg/logging"
	"github.com/sdejongh/imdirdiff/pkg/models"
	"github.com/sdejongh/imdirdiff/pkg/output"
	"github.com/sdejongh/imdirdiff/pkg/storage"
)

// StatusError carries a non-zero run status out of Execute. It is not a
// failure of the tool; main exits with its code without printing anything.
type StatusError struct {
	Status models.RunStatus
}

func (e *StatusError) Error() string {
	return "comparison result: " + string(e.Status)
}

// ExitCode returns the process exit code for the status
func (e *StatusError) ExitCode() int {
	return e.Status.ExitCode()
}

// NewCompareCommand creates the compare command
func NewCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare LEFT RIGHT",
		Short: "Compare two image directories",
		Long: `Compare every image present in both directories pixel by pixel and list
images present on one side only. Roots may be local directories or
s3://bucket/prefix URIs.`,
		Args: cobra.ExactArgs(2),
		RunE: runCompare,
	}

	addCompareFlags(cmd, &compareFlags)

	return cmd
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	left, right := args[0], args[1]

	if err := validateCompareFlags(); err != nil {
		return err
	}
	if err := validateRoots(left, right); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	applyFlagsToConfig(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	operation, err := createDiffOperation(cfg, left, right)
	if err != nil {
		return fmt.Errorf("failed to create diff operation: %w", err)
	}

	logger, err := createLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	formatter := createFormatter(cfg)
	fail := func(err error) error {
		if formatter != nil {
			formatter.Error(err)
		}
		return err
	}

	leftBackend, err := openBackend(ctx, left, cfg.S3)
	if err != nil {
		return fail(fmt.Errorf("failed to open left root: %w", err))
	}
	defer leftBackend.Close()

	rightBackend, err := openBackend(ctx, right, cfg.S3)
	if err != nil {
		return fail(fmt.Errorf("failed to open right root: %w", err))
	}
	defer rightBackend.Close()

	eng := engine.NewEngine(leftBackend, rightBackend, createComparator(operation), formatter, logger, operation)
	eng.SetOutput(cmd.OutOrStdout())

	report, err := eng.Run(ctx)
	if err != nil {
		logger.Error(ctx, "Comparison failed", err, nil)
		return fail(fmt.Errorf("comparison failed: %w", err))
	}

	if compareFlags.DiffReport != "" {
		if err := output.WriteDifferencesReport(report, compareFlags.DiffReport, compareFlags.DiffFormat); err != nil {
			return fmt.Errorf("failed to write differences report: %w", err)
		}
	}

	if code := report.Status.ExitCode(); code != 0 {
		return &StatusError{Status: report.Status}
	}
	return nil
}

// openBackend opens a local directory or an s3:// prefix
func openBackend(ctx context.Context, root string, s3cfg config.S3Config) (storage.Backend, error) {
	if platform.IsS3URI(root) {
		return storage.NewS3(ctx, root, storage.S3Options{
			Region:  s3cfg.Region,
			Profile: s3cfg.Profile,
		})
	}
	return storage.NewLocal(root)
}

// createComparator builds the strict pixel comparator, behind the digest
// shortcut when byte-identical files are trusted
func createComparator(operation *models.DiffOperation) compare.Comparator {
	pixel := compare.NewPixelComparator(operation.RenderDiffs)
	pixel.SetExifEnabled(operation.Exif)

	if operation.TrustIdenticalBytes {
		return compare.NewDigestComparator(pixel, operation.BufferSize)
	}
	return pixel
}

// createFormatter picks the console formatter; nil in quiet mode
func createFormatter(cfg *config.Config) output.Formatter {
	if cfg.Output.Format == "json" {
		return output.NewJSONFormatter()
	}
	if cfg.Output.Quiet {
		return nil
	}

	useColor := !compareFlags.NoColor && !color.NoColor && term.IsTerminal(int(os.Stdout.Fd()))
	if cfg.Output.Progress && term.IsTerminal(int(os.Stderr.Fd())) {
		return output.NewProgressFormatter(os.Stderr, useColor)
	}
	return output.NewHumanFormatter(useColor)
}

// createLogger combines the file logger from configuration with a console
// logger on stderr in verbose mode
func createLogger(cfg *config.Config) (logging.Logger, error) {
	var loggers []logging.Logger

	if cfg.Logging.Enabled && cfg.Logging.File != "" {
		format := logging.FormatText
		if cfg.Logging.Format == "json" {
			format = logging.FormatJSON
		}

		fileLogger, err := logging.NewFileLogger(logging.FileLoggerConfig{
			Path:       cfg.Logging.File,
			Format:     format,
			Level:      logging.ParseLevel(cfg.Logging.Level),
			MaxSize:    cfg.Logging.MaxSize,
			MaxBackups: cfg.Logging.MaxBackups,
		})
		if err != nil {
			return nil, err
		}
		loggers = append(loggers, fileLogger)
	}

	if globalFlags.Verbose {
		loggers = append(loggers, logging.NewConsoleLogger(os.Stderr, logging.DebugLevel))
	}

	return logging.NewMultiLogger(loggers...), nil
}
