package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/nervelab/neuroplex/internal/store"
)

// Columns is the full tick series CSV layout. Experiment protocols narrow
// it to the columns their original logs carried.
var Columns = []string{
	"time",
	"target_firing",
	"target_energy",
	"target_priority",
	"total_firing",
	"avg_energy",
	"avg_novelty",
	"alert_level",
}

// WriteCSV writes a header and rows to w.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}

// WriteCSVFile writes a header and rows to a new file at path.
func WriteCSVFile(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()
	return WriteCSV(f, header, rows)
}

// TickRows formats a tick series using the full Columns layout.
// Energies carry two decimals, priorities and levels three, matching
// the experiment log precision.
func TickRows(series []store.TickMetrics) [][]string {
	rows := make([][]string, 0, len(series))
	for _, m := range series {
		rows = append(rows, []string{
			strconv.Itoa(m.Tick),
			FormatFiring(m.TargetFiring),
			strconv.FormatFloat(m.TargetEnergy, 'f', 2, 64),
			strconv.FormatFloat(m.TargetPriority, 'f', 3, 64),
			strconv.Itoa(m.TotalFiring),
			strconv.FormatFloat(m.AvgEnergy, 'f', 2, 64),
			strconv.FormatFloat(m.AvgNovelty, 'f', 3, 64),
			strconv.FormatFloat(m.AlertLevel, 'f', 3, 64),
		})
	}
	return rows
}

// FormatFiring renders a firing flag as "1" or "0", the encoding the
// experiment logs have always used.
func FormatFiring(firing bool) string {
	if firing {
		return "1"
	}
	return "0"
}
