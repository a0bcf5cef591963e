package cli

import (
	"github.com/spf13/cobra"
)

var mockFlags generateFlags

// mockCmd represents the mock command
var mockCmd = &cobra.Command{
	Use:   "mock [flags] <header|dir>...",
	Short: "Generate mocks for C headers",
	Long: `Mock parses each header and writes Mock<name>.h and Mock<name>.c into the
mock path. Directories are searched for files matching header_patterns;
a header found in a subdirectory gets its mock in the same subdirectory
of the mock path.

Files whose content would not change are left untouched. A header that
fails to parse is reported and skipped; the command exits non-zero if
any header failed.

Examples:
  # Mock a single header
  cmockgen mock src/uart.h

  # Mock every header below src/ with the ignore plugin
  cmockgen mock --plugins ignore,callback src/

  # Show what would change
  cmockgen mock --dry-run src/

  # Regenerate as headers change
  cmockgen mock --watch src/
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGenerate(cmd, args, &mockFlags, "mock-path", false)
	},
}

func init() {
	rootCmd.AddCommand(mockCmd)
	addGenerateFlags(mockCmd, &mockFlags)
	mockCmd.Flags().StringVar(&mockFlags.output, "mock-path", "", "Directory mocks are written to")
}
