package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/memblink/config"
)

var transmitCmd = &cobra.Command{
	Use:   "transmit",
	Short: "Transmit a bit stream, one window per bit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := loadConfig(cmd, config.StreamMode)
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("bit-window-ms") {
			ms, _ := flags.GetInt("bit-window-ms")
			c.BitWindow = millis(ms)
		}

		if flags.Changed("bits") {
			c.Bits, _ = flags.GetString("bits")
		}

		if flags.Changed("repeat") {
			c.Repeat, _ = flags.GetBool("repeat")
		}

		c.Message, _ = flags.GetString("message")
		c.Count, _ = flags.GetInt("count")

		err = c.Validate()
		if err != nil {
			return err
		}

		return transmit(c, cmd.OutOrStdout())
	},
}

func init() {
	defaults := config.Defaults(config.StreamMode)

	flags := transmitCmd.Flags()
	flags.Int("buffer-mib", defaults.BufferMiB, "buffer size in MiB")
	flags.Int("bit-window-ms", int(defaults.BitWindow.Milliseconds()),
		"length of each bit window in milliseconds")
	flags.String("bits", defaults.Bits, "bits to transmit, e.g. 1011")
	flags.String("message", "", "text to transmit, most significant bit first; replaces --bits")
	flags.Bool("repeat", defaults.Repeat, "start over after the last bit")
	flags.Int("count", 0, "stop after this many windows (0 = no limit)")
	rootCmd.AddCommand(transmitCmd)
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
