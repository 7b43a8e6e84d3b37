package venvstat

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Kind classifies an environment root.
type Kind int

const (
	// Global is the base interpreter installation.
	Global Kind = iota
	// ActiveLocal is the currently activated virtual environment.
	ActiveLocal
	// Discovered is a sibling directory that looks like an environment.
	Discovered
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Global:
		return "global"
	case ActiveLocal:
		return "active"
	case Discovered:
		return "discovered"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name produced by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	for _, candidate := range []Kind{Global, ActiveLocal, Discovered} {
		if candidate.String() == string(text) {
			*k = candidate

			return nil
		}
	}

	return fmt.Errorf("unknown environment kind %q", text)
}

// Root is a candidate installation whose package directory may or may not exist.
type Root struct {
	// Kind is the way the root was found.
	Kind Kind `json:"kind"`
	// Name is the directory name of a discovered root.
	Name string `json:"name,omitempty"`
	// BasePath is the installation root.
	BasePath string `json:"base_path"`
	// PackageDir is the site-packages directory. Empty when a global root has
	// no usable package directory.
	PackageDir string `json:"package_dir"`
	// Fallback is set on a global root whose computed package directory did not
	// exist, so the interpreter's own site-packages list was consulted.
	Fallback bool `json:"fallback,omitempty"`
}

// Label returns the human-readable environment name used in reports and charts.
func (r Root) Label() string {
	switch r.Kind {
	case Global:
		if r.Fallback {
			return "Global Environment (from site.getsitepackages())"
		}

		return "Global Environment"
	case ActiveLocal:
		return "Current Local Environment (activated)"
	default:
		return "Discovered Environment: " + r.Name
	}
}

// LooksLikeEnv reports whether a directory name is an environment candidate:
// "venv", ".venv" or anything containing "env", case-insensitively.
// This deliberately over-matches names such as "envtools".
func LooksLikeEnv(name string) bool {
	lower := strings.ToLower(name)

	return lower == "venv" || lower == ".venv" || strings.Contains(lower, "env")
}

// Discover returns the candidate roots in order: the global installation, the
// active environment if one is active, then every environment-like directory
// directly inside dir. Roots whose resolved package directory was already seen
// are dropped. A failure to list dir is returned together with the roots found
// before it.
func Discover(in Interpreter, dir string) ([]Root, error) {
	seen := make(map[string]struct{})
	roots := make([]Root, 0, 4)

	remember := func(pkgDir string) bool {
		if pkgDir == "" {
			return true
		}

		key := resolve(pkgDir)
		if _, dup := seen[key]; dup {
			return false
		}

		seen[key] = struct{}{}

		return true
	}

	global := globalRoot(in)
	remember(global.PackageDir)
	roots = append(roots, global)

	if in.Active() {
		active := Root{
			Kind:       ActiveLocal,
			BasePath:   in.Prefix,
			PackageDir: in.PackageDir(in.Prefix),
		}
		if remember(active.PackageDir) {
			roots = append(roots, active)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return roots, fmt.Errorf("listing %q: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !LooksLikeEnv(name) {
			continue
		}

		base, err := filepath.Abs(filepath.Join(dir, name))
		if err != nil || !IsDir(base) {
			continue
		}

		root := Root{
			Kind:       Discovered,
			Name:       name,
			BasePath:   base,
			PackageDir: in.PackageDir(base),
		}
		if remember(root.PackageDir) {
			roots = append(roots, root)
		}
	}

	return roots, nil
}

// globalRoot derives the base installation's root, consulting the interpreter's
// site-packages list when the computed directory is missing.
func globalRoot(in Interpreter) Root {
	root := Root{
		Kind:       Global,
		BasePath:   in.BasePrefix,
		PackageDir: in.PackageDir(in.BasePrefix),
	}

	if IsDir(root.PackageDir) {
		return root
	}

	root.Fallback = true
	root.PackageDir = ""

	for _, candidate := range in.SitePackages {
		if within(candidate, in.BasePrefix) && IsDir(candidate) {
			root.PackageDir = candidate

			break
		}
	}

	return root
}

// within reports whether path lies below (or at) base.
func within(path, base string) bool {
	if base == "" {
		return false
	}

	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(path))
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// resolve returns the absolute, symlink-free form of path when it can be
// computed, falling back to the cleaned absolute path.
func resolve(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}

	return abs
}

// IsDir reports whether path exists and is a directory, following symlinks.
func IsDir(path string) bool {
	if path == "" {
		return false
	}

	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
