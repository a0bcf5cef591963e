package cli

import (
	"github.com/spf13/cobra"
)

var skeletonFlags generateFlags

// skeletonCmd represents the skeleton command
var skeletonCmd = &cobra.Command{
	Use:   "skeleton [flags] <header|dir>...",
	Short: "Generate stub implementations for C headers",
	Long: `Skeleton writes <name>.c with an empty definition for every function in
the header. Stubs already present in an existing file are kept as they are
and only missing functions are appended.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd, args, &skeletonFlags, "skeleton-path", true)
	},
}

func init() {
	rootCmd.AddCommand(skeletonCmd)
	addGenerateFlags(skeletonCmd, &skeletonFlags)
	skeletonCmd.Flags().StringVar(&skeletonFlags.output, "skeleton-path", "", "Directory skeletons are written to (default is the mock path)")
}
