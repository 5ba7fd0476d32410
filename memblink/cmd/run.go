package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/memblink/config"
	"github.com/sarchlab/memblink/session"
)

// loadConfig builds the configuration of mode from its defaults, the
// environment file, the environment, and the shared flags, in that order.
// The caller applies its own flags and validates the result.
func loadConfig(cmd *cobra.Command, mode config.Mode) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env")

	c, err := config.Load(envFile, config.Defaults(mode))
	if err != nil {
		return c, err
	}

	flags := cmd.Flags()
	if flags.Changed("buffer-mib") {
		c.BufferMiB, _ = flags.GetInt("buffer-mib")
	}

	if flags.Changed("stride") {
		c.Stride, _ = flags.GetInt("stride")
	}

	if flags.Changed("check-interval") {
		c.CheckInterval, _ = flags.GetInt("check-interval")
	}

	if flags.Changed("trace") {
		c.TracePath, _ = flags.GetString("trace")
	}

	noPin, _ := flags.GetBool("no-pin")
	c.Pin = !noPin
	c.Resources, _ = flags.GetBool("resources")

	return c, nil
}

// transmit runs a session built from c until it ends or the process is
// interrupted.
func transmit(c config.Config, out io.Writer) error {
	builder, err := session.MakeBuilder().
		WithStatusOutput(out).
		WithConfig(c)
	if err != nil {
		return err
	}

	s, err := builder.Build()
	if err != nil {
		return err
	}

	exitOnSignal(out)

	s.PrintBanner()

	summary, err := s.Run(context.Background())
	if err != nil {
		_ = s.Close()
		return err
	}

	fmt.Fprintf(out,
		"Done: %d windows (%d active, %d idle), %d touches, max overshoot %v\n",
		summary.Windows, summary.Active, summary.Idle,
		summary.Touches, summary.MaxOvershoot)

	return s.Close()
}

// exitOnSignal terminates the process through the exit handlers on SIGINT
// or SIGTERM. The window in progress is not finished.
func exitOnSignal(out io.Writer) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signals
		fmt.Fprintf(out, "\nReceived %v, stopping\n", sig)
		atexit.Exit(ExitInterrupted)
	}()
}
