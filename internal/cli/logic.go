package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/venvstat/internal/chart"
	"github.com/idelchi/venvstat/internal/interp"
	"github.com/idelchi/venvstat/internal/venvstat"
)

// TimestampLayout formats the run timestamp used in output file names.
const TimestampLayout = "20060102_150405"

// ReportFileName returns the report file name for a run timestamp.
func ReportFileName(timestamp string) string {
	return "venv_analysis_report_" + timestamp + ".txt"
}

// Introspector reports the facts of the interpreter discovery is anchored to.
type Introspector interface {
	Introspect(ctx context.Context) (venvstat.Interpreter, error)
}

// missingInterpreter is used when no interpreter could be located.
type missingInterpreter struct {
	err error
}

func (m missingInterpreter) Introspect(context.Context) (venvstat.Interpreter, error) {
	return venvstat.Interpreter{}, m.err
}

// runner holds everything one scan needs.
type runner struct {
	options  Options
	logger   *log.Logger
	python   Introspector
	charts   chart.Renderer
	now      func() time.Time
	stdout   io.Writer
	progress func(files, bytes int64)
	clear    func()
}

func logic(ctx context.Context, options Options) error {
	level := log.InfoLevel
	if options.Debug {
		level = log.DebugLevel
	}

	logger := newLogger(os.Stderr, level)

	enableProgress := !options.Debug && isatty.IsTerminal(os.Stderr.Fd())

	r := &runner{
		options: options,
		logger:  logger,
		charts:  selectCharts(options, logger),
		now:     time.Now,
		stdout:  os.Stdout,
		clear:   func() {},
	}

	if r.options.OutputDir == "" {
		r.options.OutputDir = executableDir()
	}

	if python, err := interp.Locate(options.Python); err != nil {
		r.python = missingInterpreter{err: err}
	} else {
		logger.Debug("using interpreter", "path", python.Path)
		r.python = python
	}

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(os.Stderr, "\033[?25l")
		defer fmt.Fprint(os.Stderr, "\033[?25h")

		r.progress = func(files, bytes int64) {
			msg := fmt.Sprintf("Scanning… %d files, %s",
				files, humanize.IBytes(uint64(bytes))) //nolint:gosec // Bytes is always positive
			fmt.Fprintf(os.Stderr, "\r\033[2K%s\r", msg)
		}
		r.clear = func() { fmt.Fprint(os.Stderr, "\r\033[2K\r") }
	}

	return r.run(ctx)
}

// selectCharts decides once whether charts can be produced.
func selectCharts(options Options, logger *log.Logger) chart.Renderer {
	if options.NoChart {
		renderer := chart.Disabled{Reason: "disabled with --no-chart"}
		logger.Warn("Graphs will not be generated", "reason", renderer.Reason)

		return renderer
	}

	return chart.NewPNG(options.TopN)
}

// executableDir returns the directory of the running program, or "." if it
// cannot be determined.
func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}

	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	return filepath.Dir(exe)
}

// run writes the report file. Failing to create it is the only fatal error;
// everything after that is recorded in the report itself.
func (r *runner) run(ctx context.Context) (err error) {
	timestamp := r.now().Format(TimestampLayout)
	reportPath := filepath.Join(r.options.OutputDir, ReportFileName(timestamp))

	file, err := os.Create(reportPath)
	if err != nil {
		return fmt.Errorf("opening report file %s: %w", reportPath, err)
	}

	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing report file %s: %w", reportPath, cerr)
		}
	}()

	out := bufio.NewWriter(file)

	fmt.Fprintf(out, "Results will be saved to: %s\n\n", reportPath)
	fmt.Fprintln(out, "Scanning virtual environments and modules...")

	reports, scanErr := r.scan(ctx, out, timestamp)

	if err := out.Flush(); err != nil {
		return fmt.Errorf("writing report file %s: %w", reportPath, err)
	}

	if scanErr != nil {
		return scanErr
	}

	r.logger.Info("Report written", "path", reportPath, "environments", len(reports))

	if r.options.JSON {
		return PrintJSON(reports, r.stdout)
	}

	return PrintSummary(reports, reportPath, r.stdout)
}

// scan analyzes every discovered environment, writing each section to w.
// Only cancellation of ctx is returned as an error.
func (r *runner) scan(ctx context.Context, w io.Writer, timestamp string) ([]*venvstat.Report, error) {
	in, err := r.python.Introspect(ctx)
	if err != nil {
		r.logger.Error("Could not query a Python interpreter", "err", err)
		fmt.Fprintf(w, "\nCould not query a Python interpreter: %v\n", err)

		return nil, nil
	}

	r.logger.Debug("interpreter",
		"base_prefix", in.BasePrefix, "prefix", in.Prefix, "version", in.Version(), "platform", in.Platform)

	dir, err := filepath.Abs(r.options.Dir)
	if err != nil {
		dir = r.options.Dir
	}

	roots, discoverErr := venvstat.Discover(in, dir)

	var reports []*venvstat.Report

	collect := func(report *venvstat.Report) {
		if report != nil && len(report.Entries) > 0 {
			reports = append(reports, report)
		}
	}

	// Discover always yields the global root first.
	global := roots[0]
	if global.Fallback {
		fmt.Fprintf(w, "Failed to determine global site-packages path via %s. Trying site.getsitepackages()...\n",
			global.BasePath)
	}

	if global.PackageDir == "" {
		fmt.Fprintln(w, "Could not find global site-packages directory.")
	} else {
		report, _, err := r.analyze(ctx, w, global.Label(), global.PackageDir, timestamp)
		if err != nil {
			return reports, err
		}

		collect(report)
	}

	if in.Active() {
		fmt.Fprintln(w, "\nSearching for current local environment...")

		active, ok := findRoot(roots, venvstat.ActiveLocal)

		switch {
		case !ok:
			fmt.Fprintln(w, "Current environment matches global environment.")
		case !venvstat.IsDir(active.PackageDir):
			fmt.Fprintf(w, "Failed to determine site-packages path for current local environment via %s.\n",
				active.BasePath)
		default:
			report, _, err := r.analyze(ctx, w, active.Label(), active.PackageDir, timestamp)
			if err != nil {
				return reports, err
			}

			collect(report)
		}
	}

	fmt.Fprintln(w, "\nSearching for other virtual environments in the current directory...")

	if discoverErr != nil {
		r.logger.Warn("Could not list directory", "dir", dir, "err", discoverErr)
		fmt.Fprintf(w, "Error searching %s: %v\n", dir, discoverErr)
	}

	foundOther := false

	for _, root := range roots {
		if root.Kind != venvstat.Discovered {
			continue
		}

		report, found, err := r.analyze(ctx, w, root.Label(), root.PackageDir, timestamp)
		if err != nil {
			return reports, err
		}

		foundOther = foundOther || found

		collect(report)
	}

	if !foundOther {
		if in.Active() {
			fmt.Fprintln(w, "No other virtual environments found in the current directory besides the active one.")
		} else {
			fmt.Fprintln(w, "No other virtual environments found in the current directory.")
		}
	}

	return reports, nil
}

// analyze writes one environment section. found reports whether the package
// directory exists. Failures other than cancellation are written to w and
// do not affect other environments.
func (r *runner) analyze(
	ctx context.Context,
	w io.Writer,
	label, pkgDir, timestamp string,
) (report *venvstat.Report, found bool, err error) {
	fmt.Fprintf(w, "\n--- Environment Analysis: %s (%s) ---\n", label, pkgDir)

	if !venvstat.IsDir(pkgDir) {
		r.logger.Debug("package directory not found", "label", label, "path", pkgDir)
		fmt.Fprintln(w, "Site-packages directory not found or inaccessible.")

		return nil, false, nil
	}

	r.logger.Info("Scanning", "environment", label)

	report, err = venvstat.BuildReport(ctx, label, pkgDir, venvstat.ScanOptions{
		ProgressHook: r.progress,
		Logger:       r.logger,
	})

	r.clear()

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, true, ctxErr
		}

		r.logger.Warn("Scan failed", "environment", label, "err", err)
		fmt.Fprintf(w, "Error analyzing %s: %v\n", label, err)

		return nil, true, nil
	}

	if report.ErrorCount > 0 {
		r.logger.Warn("Skipped unreadable entries", "environment", label, "count", report.ErrorCount)
	}

	if len(report.Entries) == 0 {
		fmt.Fprintln(w, "No modules found.")

		return report, true, nil
	}

	if err := PrintReport(report, w); err != nil {
		return report, true, err
	}

	r.renderChart(w, report, timestamp)

	return report, true, nil
}

// renderChart writes the chart for report when the capability is available.
func (r *runner) renderChart(w io.Writer, report *venvstat.Report, timestamp string) {
	if !r.charts.Available() {
		return
	}

	path := filepath.Join(r.options.OutputDir, chart.FileName(report.Label, timestamp))

	if err := r.charts.Render(report, path); err != nil {
		r.logger.Warn("Graph generation failed", "environment", report.Label, "err", err)

		return
	}

	fmt.Fprintf(w, "Graph saved to: %s\n", path)
}

// findRoot returns the first root of the given kind.
func findRoot(roots []venvstat.Root, kind venvstat.Kind) (venvstat.Root, bool) {
	for _, root := range roots {
		if root.Kind == kind {
			return root, true
		}
	}

	return venvstat.Root{}, false
}
