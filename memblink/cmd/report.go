package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/memblink/datarecording"
	"github.com/sarchlab/memblink/tracing"
)

var reportCmd = &cobra.Command{
	Use:   "report <trace.sqlite3>",
	Short: "Summarize the windows recorded in a trace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, _ := cmd.Flags().GetString("run")

		reader, err := datarecording.NewReader(args[0])
		if err != nil {
			return err
		}
		defer reader.Close()

		rows, err := tracing.ReadWindows(cmd.Context(), reader, runID)
		if err != nil {
			return err
		}

		csvPath, _ := cmd.Flags().GetString("csv")
		if csvPath != "" {
			return exportCSV(csvPath, rows)
		}

		if len(rows) == 0 {
			tracing.Summarize(nil).Print(cmd.OutOrStdout())
			return nil
		}

		for _, report := range tracing.SummarizeRuns(rows) {
			report.Print(cmd.OutOrStdout())
		}

		return nil
	},
}

func init() {
	reportCmd.Flags().String("run", "", "only report the windows of this run")
	reportCmd.Flags().String("csv", "", "export the windows into a CSV file instead")
	rootCmd.AddCommand(reportCmd)
}

func exportCSV(path string, rows []tracing.WindowRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	err = tracing.WriteCSV(f, rows)
	if err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
