package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sarchlab/memblink/config"
)

var blinkCmd = &cobra.Command{
	Use:   "blink",
	Short: "Alternate one active and one idle window forever",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := loadConfig(cmd, config.PatternMode)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("active-ms") {
			ms, _ := flags.GetInt("active-ms")
			c.ActiveWindow = millis(ms)
		}

		if flags.Changed("idle-ms") {
			ms, _ := flags.GetInt("idle-ms")
			c.IdleWindow = millis(ms)
		}

		err = c.Validate()
		if err != nil {
			return err
		}

		return transmit(c, cmd.OutOrStdout())
	},
}

func init() {
	defaults := config.Defaults(config.PatternMode)

	blinkCmd.Flags().Int("buffer-mib", defaults.BufferMiB, "buffer size in MiB")
	blinkCmd.Flags().Int("active-ms", int(defaults.ActiveWindow.Milliseconds()),
		"length of the active window in milliseconds")
	blinkCmd.Flags().Int("idle-ms", int(defaults.IdleWindow.Milliseconds()),
		"length of the idle window in milliseconds")
	rootCmd.AddCommand(blinkCmd)
}
