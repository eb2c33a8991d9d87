package driver

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// SummaryRow is one engine's aggregate statistics after a run. Commands
// that reported the sentinel access count are excluded from every column.
type SummaryRow struct {
	FileSystem        string  `csv:"file_system"`
	CompletedOps      uint    `csv:"completed_ops"`
	TotalAccesses     uint    `csv:"total_block_accesses"`
	AverageAccesses   float64 `csv:"avg_block_accesses"`
	StorageEfficiency float64 `csv:"storage_efficiency"`
}

// Summary returns one row per engine, in the driver's engine order.
func (d *Driver) Summary() []SummaryRow {
	rows := make([]SummaryRow, len(d.engines))
	for i, engine := range d.engines {
		t := d.tallies[i]
		row := SummaryRow{
			FileSystem:        engine.Name(),
			CompletedOps:      t.completedOps,
			TotalAccesses:     t.totalAccesses,
			StorageEfficiency: engine.StorageEfficiency(),
		}
		if t.completedOps > 0 {
			row.AverageAccesses = float64(t.totalAccesses) / float64(t.completedOps)
		}
		rows[i] = row
	}
	return rows
}

// WriteSummaryCSV writes the summary rows to `w` as CSV with a header row.
func (d *Driver) WriteSummaryCSV(w io.Writer) error {
	rows := d.Summary()
	return gocsv.Marshal(&rows, w)
}

// WriteReport writes a human-readable run summary to `w`: per-engine
// storage efficiency followed by the average block-access cost of the
// read/write queries each engine completed.
func (d *Driver) WriteReport(w io.Writer) error {
	rows := d.Summary()

	if _, err := fmt.Fprintf(w, "Storage efficiency\n"); err != nil {
		return err
	}
	for _, row := range rows {
		_, err := fmt.Fprintf(
			w, "  %-20s %.4f\n", row.FileSystem, row.StorageEfficiency)
		if err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\nAverage block accesses for read/write queries\n")
	if err != nil {
		return err
	}
	for _, row := range rows {
		if row.CompletedOps == 0 {
			_, err = fmt.Fprintf(w, "  %-20s n/a\n", row.FileSystem)
		} else {
			_, err = fmt.Fprintf(
				w, "  %-20s %.2f\n", row.FileSystem, row.AverageAccesses)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
