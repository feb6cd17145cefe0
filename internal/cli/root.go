package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "condense",
	Short: "Reversible Python source reduction for LLM contexts",
	Long: "Condense strips token-expensive trivia (comments, blank lines, inline\n" +
		"whitespace) from Python source while recording an anchored reduction map\n" +
		"that reconstructs the original bytes exactly, even after the reduced text\n" +
		"has been edited.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(reduceCmd)
	rootCmd.AddCommand(reconstructCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
}
