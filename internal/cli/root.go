package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand creates the imdirdiff command tree. The root command itself
// runs a comparison when given two roots.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "imdirdiff [flags] LEFT RIGHT",
		Short: "Compare two directories of images pixel by pixel",
		Long: `imdirdiff compares two directory trees of images by decoded pixels.
Images present on one side only are listed, images present on both sides are
decoded and compared exactly, and an HTML report with thumbnails and diff
images is written for the differences.

Exit status: 0 identical, 1 differences, 2 undetermined (decode errors),
3 failure.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		Args:          cobra.ExactArgs(2),
		RunE:          runCompare,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(rootCmd)
	addCompareFlags(rootCmd, &compareFlags)

	rootCmd.AddCommand(NewCompareCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
