// Package cmd provides the command-line interface for memblink.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInterrupted = 130
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "memblink",
	Short: "memblink modulates memory activity to transmit bits.",
	Long: `memblink sweeps a pinned memory buffer during active windows and ` +
		`sleeps during idle windows, so that the memory activity of the ` +
		`process follows a fixed pattern (blink) or a bit stream (transmit).`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.Int("stride", 64, "distance in bytes between touched bytes")
	flags.Int("check-interval", 1024, "touches between two clock reads")
	flags.Bool("no-pin", false, "do not lock the buffer into physical memory")
	flags.String("trace", "",
		`record every window into an SQLite file ("auto" names it after the run)`)
	flags.Bool("resources", false, "print CPU and memory usage after every window")
	flags.String("env", ".env", "environment file; ignored if missing")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(ExitFailure)
	}

	atexit.Exit(ExitOK)
}
