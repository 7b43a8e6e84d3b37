package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/idelchi/venvstat/internal/chart"
)

func TestCommandDefaults(t *testing.T) {
	cmd := New("v1.2.3").command()

	tests := []struct {
		flag string
		want string
	}{
		{"python", ""},
		{"dir", "."},
		{"output-dir", ""},
		{"top", "15"},
		{"no-chart", "false"},
		{"json", "false"},
		{"debug", "false"},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			f := cmd.Flags().Lookup(tt.flag)
			if f == nil {
				t.Fatalf("flag --%s not defined", tt.flag)
			}

			if f.DefValue != tt.want {
				t.Errorf("--%s default = %q, want %q", tt.flag, f.DefValue, tt.want)
			}
		})
	}

	if chart.DefaultTopN != 15 {
		t.Errorf("DefaultTopN = %d, want 15", chart.DefaultTopN)
	}
}

func TestCommandVersion(t *testing.T) {
	cmd := New("v1.2.3").command()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--version"})

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if got := out.String(); !strings.Contains(got, "v1.2.3") {
		t.Errorf("version output = %q", got)
	}
}

func TestCommandRejectsArgs(t *testing.T) {
	cmd := New("dev").command()
	cmd.SetArgs([]string{"somewhere"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("Execute() error = nil, want error for positional argument")
	}
}

func TestSelectCharts(t *testing.T) {
	logger := newLogger(&bytes.Buffer{}, log.InfoLevel)

	if selectCharts(Options{NoChart: true}, logger).Available() {
		t.Error("selectCharts(NoChart) available, want unavailable")
	}

	if !selectCharts(Options{TopN: 5}, logger).Available() {
		t.Error("selectCharts() unavailable, want available")
	}
}

func TestSelectChartsWarnsOnce(t *testing.T) {
	var buf bytes.Buffer
	selectCharts(Options{NoChart: true}, newLogger(&buf, log.InfoLevel))

	if n := strings.Count(buf.String(), "Graphs will not be generated"); n != 1 {
		t.Errorf("warning logged %d times, want 1:\n%s", n, buf.String())
	}
}
