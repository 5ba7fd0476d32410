package tracing

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var csvHeader = []string{
	"RunID", "WindowIndex", "Bit", "Phase",
	"StartNs", "DeadlineNs", "EndNs", "LengthNs", "OvershootNs",
	"Touches", "Passes",
}

// WriteCSV writes rows as comma-separated values with a header line.
func WriteCSV(w io.Writer, rows []WindowRow) error {
	cw := csv.NewWriter(w)

	err := cw.Write(csvHeader)
	if err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	for _, row := range rows {
		err = cw.Write([]string{
			row.RunID,
			strconv.Itoa(row.WindowIndex),
			strconv.Itoa(int(row.Bit)),
			row.Phase,
			strconv.FormatInt(row.StartNs, 10),
			strconv.FormatInt(row.DeadlineNs, 10),
			strconv.FormatInt(row.EndNs, 10),
			strconv.FormatInt(row.LengthNs, 10),
			strconv.FormatInt(row.OvershootNs, 10),
			strconv.FormatUint(row.Touches, 10),
			strconv.FormatUint(row.Passes, 10),
		})
		if err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}
