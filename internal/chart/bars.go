package chart

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/idelchi/venvstat/internal/venvstat"
)

const (
	// DefaultTopN is the number of packages charted before grouping the rest.
	DefaultTopN = 15
	// OthersLabel names the bucket holding everything beyond the top N.
	OthersLabel = "Others"
	// bytesPerMB converts byte counts to megabytes.
	bytesPerMB = 1024 * 1024
)

// Bar is one bar of a chart.
type Bar struct {
	// Name is the package name, or OthersLabel.
	Name string
	// Label is the annotated axis label, e.g. "numpy (12.34%)".
	Label string
	// Bytes is the size in bytes.
	Bytes int64
	// MB is the size in megabytes.
	MB float64
	// Percent is the share of the environment total.
	Percent float64
}

func newBar(name string, size, total int64) Bar {
	pct := venvstat.Percent(size, total)

	return Bar{
		Name:    name,
		Label:   fmt.Sprintf("%s (%.2f%%)", name, pct),
		Bytes:   size,
		MB:      float64(size) / bytesPerMB,
		Percent: pct,
	}
}

// Prepare keeps the first topN entries and groups the rest into a single
// OthersLabel bar, which is omitted when it would be empty. Entries are
// expected largest first.
func Prepare(entries []venvstat.Entry, total int64, topN int) []Bar {
	if topN <= 0 {
		topN = DefaultTopN
	}

	n := min(topN, len(entries))
	bars := make([]Bar, 0, n+1)

	for _, e := range entries[:n] {
		bars = append(bars, newBar(e.Name, e.Size, total))
	}

	var other int64
	for _, e := range entries[n:] {
		other += e.Size
	}

	if other > 0 {
		bars = append(bars, newBar(OthersLabel, other, total))
	}

	return bars
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// SanitizeLabel strips every character outside [A-Za-z0-9_] and lowercases the rest.
func SanitizeLabel(label string) string {
	return strings.ToLower(unsafeChars.ReplaceAllString(label, ""))
}

// FileName returns the chart file name for an environment label and run timestamp.
func FileName(label, timestamp string) string {
	return "venv_analysis_" + SanitizeLabel(label) + "_" + timestamp + ".png"
}

// Title returns the chart title.
func Title(label string, topN int) string {
	return fmt.Sprintf("Module Size Distribution in %s (Top %d + Others)", label, topN)
}
