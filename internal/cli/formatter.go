package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/venvstat/internal/venvstat"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
	// bytesPerMB converts byte counts to megabytes.
	bytesPerMB = 1024 * 1024
)

// MB converts bytes to megabytes.
func MB(size int64) float64 {
	return float64(size) / bytesPerMB
}

// PrintReport writes the size breakdown of one environment, largest package first.
func PrintReport(report *venvstat.Report, writer io.Writer) error {
	if _, err := fmt.Fprintf(writer, "\nTotal environment size: %.2f MB\n\n", MB(report.TotalBytes)); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(writer, "Module summary:"); err != nil {
		return err
	}

	for _, e := range report.Entries {
		if _, err := fmt.Fprintf(writer, "- %s: %.2f MB (%.2f%%)\n",
			e.Name, MB(e.Size), report.Percent(e.Size)); err != nil {
			return err
		}
	}

	return nil
}

// PrintJSON outputs the reports in JSON format.
func PrintJSON(reports []*venvstat.Report, writer io.Writer) error {
	if reports == nil {
		reports = []*venvstat.Report{}
	}

	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintSummary outputs one line per scanned environment in table format.
//
//nolint:forbidigo // This function prints output to the console.
func PrintSummary(reports []*venvstat.Report, reportPath string, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintln(w, "\nEnvironments:\t\t\t")

	var total int64

	for i, r := range reports {
		total += r.TotalBytes
		fmt.Fprintf(w, "  %d) %s\t%d packages\t%s\n",
			i+1, r.Label, len(r.Entries), humanize.IBytes(uint64(r.TotalBytes))) //nolint:gosec // Sizes are never negative
	}

	fmt.Fprintf(w, "\nTotal size:\t%s (%d bytes)\t\n", humanize.IBytes(uint64(total)), total) //nolint:gosec // Sizes are never negative
	fmt.Fprintf(w, "Report:\t%s\t\n", reportPath)

	return w.Flush()
}
