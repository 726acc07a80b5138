package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $XDG_CONFIG_HOME/imdirdiff/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"log progress to stderr at debug level",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"suppress the listing and summary; only the exit code reports the result",
	)
}

// CompareFlags holds compare command flags
type CompareFlags struct {
	Output              string
	Workers             int
	Bandwidth           string
	Exclude             []string
	Extensions          []string
	TrustIdenticalBytes bool
	NoExif              bool
	NoColor             bool

	// Report directory
	NoReport     bool
	ReportDir    string
	NoDiffImages bool
	ThumbHeight  int

	DiffReport string
	DiffFormat string

	// S3 roots
	S3Region  string
	S3Profile string

	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var compareFlags CompareFlags

// addCompareFlags registers the comparison flags on cmd. The root command and
// the compare subcommand share one CompareFlags value.
func addCompareFlags(cmd *cobra.Command, f *CompareFlags) {
	flags := cmd.Flags()

	flags.StringVarP(&f.Output, "output", "o", "human", "output format: human, json")
	flags.IntVarP(&f.Workers, "workers", "w", 0, "number of parallel comparisons (default: number of CPUs)")
	flags.StringVarP(&f.Bandwidth, "bandwidth", "b", "", "read bandwidth limit across workers (e.g. \"10MB\", \"1GiB\")")
	flags.StringSliceVar(&f.Exclude, "exclude", []string{}, "glob patterns to exclude (doublestar syntax)")
	flags.StringSliceVar(&f.Extensions, "extensions", []string{}, "image extensions to index (default: gif,jpg,jpeg,png,webp,bmp,tif,tiff)")
	flags.BoolVar(&f.TrustIdenticalBytes, "trust-identical-bytes", false, "treat byte-identical files as identical without decoding them")
	flags.BoolVar(&f.NoExif, "no-exif", false, "do not list differing EXIF tags")
	flags.BoolVar(&f.NoColor, "no-color", false, "disable coloured symbols")

	flags.BoolVar(&f.NoReport, "no-report", false, "do not write the HTML report directory")
	flags.StringVar(&f.ReportDir, "report-dir", "", "HTML report directory (default: ./imdirdiff-out)")
	flags.BoolVar(&f.NoDiffImages, "no-diff-images", false, "do not render diff images in the report")
	flags.IntVar(&f.ThumbHeight, "thumb-height", 0, "report thumbnail height in pixels (default: 80)")

	flags.StringVar(&f.DiffReport, "diff-report", "", "write differences report to file")
	flags.StringVar(&f.DiffFormat, "diff-format", "human", "differences report format: human, json")

	flags.StringVar(&f.S3Region, "s3-region", "", "AWS region for s3:// roots")
	flags.StringVar(&f.S3Profile, "s3-profile", "", "AWS shared config profile for s3:// roots")

	flags.StringVar(&f.LogFile, "log-file", "", "write logs to file (enables logging)")
	flags.StringVar(&f.LogFormat, "log-format", "", "log format: text, json")
	flags.StringVar(&f.LogLevel, "log-level", "", "log level: debug, info, warn, error")
}
