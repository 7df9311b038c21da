package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DNG-hub/StoryArt-sub001/internal/logger"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "storyart",
	Short: "storyart beat prompt compiler",
	Long: `storyart compiles narrative beats into validated rendering prompts.

Commands:
  storyart compile    Compile the beats of a scene fixture
  storyart contexts   Inspect a character's location contexts
  storyart version    Print the version`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info",
		"Log level: debug, info, warn, error")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
