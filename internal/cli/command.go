// Package cli implements the venvstat command-line interface.
package cli

import (
	"context"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/idelchi/venvstat/internal/chart"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// Options configures a scan.
type Options struct {
	// Python is the interpreter to query. Empty tries python3, then python.
	Python string
	// Dir is searched for sibling environments.
	Dir string
	// OutputDir receives the report and charts. Empty means the executable's directory.
	OutputDir string
	// TopN is the number of packages charted before grouping the rest.
	TopN int
	// NoChart disables chart generation.
	NoChart bool
	// JSON additionally prints the collected reports as JSON on stdout.
	JSON bool
	// Debug enables debug logging.
	Debug bool
}

// Execute runs the CLI until ctx is cancelled.
func (c CLI) Execute(ctx context.Context) error {
	return c.command().ExecuteContext(ctx)
}

// command builds the root command.
func (c CLI) command() *cobra.Command {
	var options Options

	cmd := &cobra.Command{
		Use:   "venvstat",
		Short: "Report the disk footprint of installed Python packages",
		Long: heredoc.Doc(`
			venvstat measures the on-disk size of installed packages in the global
			Python installation, the active virtual environment and every directory
			in the current directory that looks like an environment ("venv", ".venv"
			or any name containing "env").

			A timestamped report (venv_analysis_report_<timestamp>.txt) is written
			next to the executable, together with one bar chart per environment.

			Sizes are static disk usage, not runtime memory.
		`),
		Example: heredoc.Doc(`
			# Scan the usual locations
			venvstat

			# Use a specific interpreter and keep output in the working directory
			venvstat --python /opt/py/bin/python3.12 --output-dir .
		`),
		Version:       c.version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logic(cmd.Context(), options)
		},
	}

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.StringVar(&options.Python, "python", "", "Python interpreter to query (default: python3, then python)")
	flags.StringVar(&options.Dir, "dir", ".", "Directory searched for sibling environments")
	flags.StringVarP(&options.OutputDir, "output-dir", "o", "",
		"Directory for the report and charts (default: next to the executable)")
	flags.IntVarP(&options.TopN, "top", "t", chart.DefaultTopN, "Number of packages charted before grouping into Others")
	flags.BoolVar(&options.NoChart, "no-chart", false, "Do not generate charts")
	flags.BoolVar(&options.JSON, "json", false, "Also print the collected reports as JSON on stdout")
	flags.BoolVar(&options.Debug, "debug", false, "Enable debug output")

	cmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	return cmd
}
