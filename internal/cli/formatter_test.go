package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/idelchi/venvstat/internal/venvstat"
)

func TestPrintReport(t *testing.T) {
	report := &venvstat.Report{
		Entries:    []venvstat.Entry{{Name: "pkgA", Size: 2_000_000}, {Name: "pkgB", Size: 1_000_000}},
		TotalBytes: 3_000_000,
	}

	var buf bytes.Buffer
	if err := PrintReport(report, &buf); err != nil {
		t.Fatalf("PrintReport() error = %v", err)
	}

	want := "\nTotal environment size: 2.86 MB\n\n" +
		"Module summary:\n" +
		"- pkgA: 1.91 MB (66.67%)\n" +
		"- pkgB: 0.95 MB (33.33%)\n"

	if got := buf.String(); got != want {
		t.Errorf("PrintReport() =\n%q\nwant\n%q", got, want)
	}
}

func TestPrintReportZeroTotal(t *testing.T) {
	report := &venvstat.Report{
		Entries: []venvstat.Entry{{Name: "empty_pkg", Size: 0}, {Name: "other", Size: 0}},
	}

	var buf bytes.Buffer
	if err := PrintReport(report, &buf); err != nil {
		t.Fatalf("PrintReport() error = %v", err)
	}

	got := buf.String()
	if strings.Count(got, "(0.00%)") != 2 {
		t.Errorf("PrintReport() = %q, want every percentage 0.00", got)
	}

	if strings.Contains(got, "NaN") {
		t.Errorf("PrintReport() divided by zero: %q", got)
	}
}

func TestPrintJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSON(nil, &buf); err != nil {
		t.Fatalf("PrintJSON() error = %v", err)
	}

	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("PrintJSON(nil) = %q, want []", got)
	}
}

func TestPrintSummary(t *testing.T) {
	reports := []*venvstat.Report{
		{Label: "Global Environment", Entries: make([]venvstat.Entry, 3), TotalBytes: 2048},
		{Label: "Discovered Environment: .venv", Entries: make([]venvstat.Entry, 1), TotalBytes: 1024},
	}

	var buf bytes.Buffer
	if err := PrintSummary(reports, "/tmp/report.txt", &buf); err != nil {
		t.Fatalf("PrintSummary() error = %v", err)
	}

	got := buf.String()
	for _, want := range []string{"1) Global Environment", "3 packages", "2.0 KiB", "3.0 KiB (3072 bytes)", "/tmp/report.txt"} {
		if !strings.Contains(got, want) {
			t.Errorf("PrintSummary() missing %q:\n%s", want, got)
		}
	}
}

func TestMB(t *testing.T) {
	if got := MB(1024 * 1024); got != 1 {
		t.Errorf("MB(1 MiB) = %f, want 1", got)
	}
}
