package venvstat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// PackageSuffixes are the top-level file suffixes counted as packages: source
// modules and the two packaging metadata conventions.
//
//nolint:gochecknoglobals // Config constant
var PackageSuffixes = []string{".py", ".egg-info", ".dist-info"}

// Entry is one top-level package directory or file.
type Entry struct {
	// Name is the entry's file name inside the package directory.
	Name string `json:"name"`
	// Size is the size in bytes.
	Size int64 `json:"size"`
}

// Report holds the per-package breakdown of one environment.
type Report struct {
	// Label names the environment.
	Label string `json:"label"`
	// PackageDir is the scanned site-packages directory.
	PackageDir string `json:"package_dir"`
	// Entries are sorted by size, largest first.
	Entries []Entry `json:"entries"`
	// TotalBytes is the sum of all entry sizes.
	TotalBytes int64 `json:"total_bytes"`
	// Files is the number of regular files counted.
	Files int64 `json:"files"`
	// ErrorCount is the number of unreadable entries that were skipped.
	ErrorCount int64 `json:"error_count"`
	// Elapsed is the time taken for the scan.
	Elapsed time.Duration `json:"elapsed"`
}

// MarshalJSON encodes Elapsed as a duration string such as "1.5s".
func (r *Report) MarshalJSON() ([]byte, error) {
	type plain Report

	return json.Marshal(struct {
		*plain
		Elapsed string `json:"elapsed"`
	}{
		plain:   (*plain)(r),
		Elapsed: r.Elapsed.String(),
	})
}

// Percent returns the share of size in the report total, or 0 for an empty total.
func (r *Report) Percent(size int64) float64 {
	return Percent(size, r.TotalBytes)
}

// Percent returns 100*size/total, or 0 when total is 0.
func Percent(size, total int64) float64 {
	if total <= 0 {
		return 0
	}

	return 100.0 * float64(size) / float64(total)
}

// ScanOptions configures BuildReport.
type ScanOptions struct {
	// ProgressHook receives (files, bytes) counters while scanning.
	ProgressHook func(files, bytes int64)
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Logger receives debug output. Nil disables it.
	Logger *log.Logger
}

// isPackageFile reports whether a top-level file name counts as a package.
func isPackageFile(name string) bool {
	for _, suffix := range PackageSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}

	return false
}

// BuildReport attributes the contents of pkgDir to its immediate children.
// Directories are measured recursively, files count only when their name has
// one of the PackageSuffixes, and symbolic links are ignored. Unlike Python's
// os.path.isdir and os.walk, a symlinked top-level entry such as an editable
// install linked into site-packages is not followed and contributes nothing.
// Unreadable entries are skipped and counted in ErrorCount.
func BuildReport(ctx context.Context, label, pkgDir string, opt ScanOptions) (*Report, error) {
	logger := opt.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	entries, err := os.ReadDir(pkgDir)
	if err != nil {
		return nil, fmt.Errorf("reading package directory %q: %w", pkgDir, err)
	}

	start := time.Now()

	c := &collector{}

	// Create child context to ensure progress reporter cleanup
	ctx, cancel := context.WithCancel(ctx)

	wait := startProgressReporter(ctx, c, opt.ProgressHook, opt.ProgressInterval)
	defer func() {
		cancel()
		wait()
	}()

	report := &Report{
		Label:      label,
		PackageDir: pkgDir,
		Entries:    make([]Entry, 0, len(entries)),
	}

	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(pkgDir, name)

		switch {
		case entry.Type()&os.ModeSymlink != 0:
			logger.Debug("skipping symlink", "path", path)

			continue
		case entry.IsDir():
			size, err := c.walk(ctx, path)
			if err != nil {
				return nil, err
			}

			report.Entries = append(report.Entries, Entry{Name: name, Size: size})
		case entry.Type().IsRegular() && isPackageFile(name):
			info, err := entry.Info()
			if err != nil {
				c.addError()
				logger.Debug("skipping unreadable file", "path", path, "err", err)

				continue
			}

			c.add(info.Size())
			report.Entries = append(report.Entries, Entry{Name: name, Size: info.Size()})
		default:
			logger.Debug("ignoring top-level file", "path", path)

			continue
		}
	}

	sort.SliceStable(report.Entries, func(i, j int) bool {
		return report.Entries[i].Size > report.Entries[j].Size
	})

	for _, e := range report.Entries {
		report.TotalBytes += e.Size
	}

	usage := c.usage()
	report.Files = usage.Files
	report.ErrorCount = usage.Errors
	report.Elapsed = time.Since(start)

	logger.Debug("scanned environment",
		"label", label, "entries", len(report.Entries), "files", report.Files,
		"errors", report.ErrorCount, "elapsed", report.Elapsed)

	return report, nil
}
