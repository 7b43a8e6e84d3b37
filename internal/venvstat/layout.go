package venvstat

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// Interpreter describes the Python installation a scan is anchored to.
// It is queried once at startup so that discovery is a function of explicit inputs.
type Interpreter struct {
	// BasePrefix is the base (non-virtual) installation root.
	BasePrefix string `json:"base_prefix"`
	// Prefix is the active installation root. Equal to BasePrefix when no
	// virtual environment is active.
	Prefix string `json:"prefix"`
	// Major and Minor are the interpreter version components.
	Major int `json:"major"`
	Minor int `json:"minor"`
	// Platform is the interpreter's sys.platform value. Empty means the host OS.
	Platform string `json:"platform"`
	// SitePackages lists the package directories the base installation reports.
	SitePackages []string `json:"site_packages"`
}

// Windows reports whether the Windows directory layout applies.
func (in Interpreter) Windows() bool {
	if in.Platform == "" {
		return runtime.GOOS == "windows"
	}

	return in.Platform == "win32"
}

// Active reports whether a virtual environment distinct from the base
// installation is active.
func (in Interpreter) Active() bool {
	return in.Prefix != "" && filepath.Clean(in.Prefix) != filepath.Clean(in.BasePrefix)
}

// Version returns the "major.minor" version string.
func (in Interpreter) Version() string {
	return fmt.Sprintf("%d.%d", in.Major, in.Minor)
}

// PackageDir returns the site-packages directory expected beneath root.
// It performs no I/O.
func (in Interpreter) PackageDir(root string) string {
	if in.Windows() {
		return filepath.Join(root, "Lib", "site-packages")
	}

	return filepath.Join(root, "lib", "python"+in.Version(), "site-packages")
}
