// Package interp queries a Python interpreter for the facts environment
// discovery needs: base and active prefixes, version, platform and the
// site-packages directories of the base installation.
package interp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/idelchi/venvstat/internal/venvstat"
)

// ErrNoInterpreter is returned when no Python interpreter can be found on PATH.
var ErrNoInterpreter = errors.New("no python interpreter found on PATH")

// DefaultCandidates are the executable names tried, in order, when none is given.
//
//nolint:gochecknoglobals // Config constant
var DefaultCandidates = []string{"python3", "python"}

// introspectScript prints the installation facts as a single JSON object.
const introspectScript = `import json, site, sys
try:
    sp = list(site.getsitepackages())
except Exception:
    sp = []
print(json.dumps({
    "base_prefix": sys.base_prefix,
    "prefix": sys.prefix,
    "version": [sys.version_info[0], sys.version_info[1]],
    "platform": sys.platform,
    "site_packages": sp,
}))`

// facts is the decoded output of introspectScript.
type facts struct {
	BasePrefix   string   `json:"base_prefix"`
	Prefix       string   `json:"prefix"`
	Version      []int    `json:"version"`
	Platform     string   `json:"platform"`
	SitePackages []string `json:"site_packages"`
}

// Python introspects the interpreter at Path.
type Python struct {
	// Path is the interpreter executable.
	Path string
}

// Locate resolves name on PATH. An empty name tries DefaultCandidates.
func Locate(name string) (*Python, error) {
	candidates := DefaultCandidates
	if name != "" {
		candidates = []string{name}
	}

	for _, candidate := range candidates {
		path, err := exec.LookPath(candidate)
		if err == nil {
			return &Python{Path: path}, nil
		}
	}

	return nil, fmt.Errorf("%w (tried %s)", ErrNoInterpreter, strings.Join(candidates, ", "))
}

// Introspect runs the interpreter once and decodes its installation facts.
func (p *Python) Introspect(ctx context.Context) (venvstat.Interpreter, error) {
	//nolint:gosec // Interpreter path comes from PATH lookup or the user's flag
	cmd := exec.CommandContext(ctx, p.Path, "-c", introspectScript)

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return venvstat.Interpreter{}, fmt.Errorf("running %s: %w: %s",
				p.Path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}

		return venvstat.Interpreter{}, fmt.Errorf("running %s: %w", p.Path, err)
	}

	return Decode(out)
}

// Decode parses the script output.
func Decode(data []byte) (venvstat.Interpreter, error) {
	var p facts
	if err := json.Unmarshal(data, &p); err != nil {
		return venvstat.Interpreter{}, fmt.Errorf("decoding interpreter facts: %w", err)
	}

	if p.BasePrefix == "" {
		return venvstat.Interpreter{}, errors.New("interpreter reported an empty base prefix")
	}

	if len(p.Version) < 2 {
		return venvstat.Interpreter{}, fmt.Errorf("interpreter reported version %v, want [major, minor]", p.Version)
	}

	prefix := p.Prefix
	if prefix == "" {
		prefix = p.BasePrefix
	}

	return venvstat.Interpreter{
		BasePrefix:   p.BasePrefix,
		Prefix:       prefix,
		Major:        p.Version[0],
		Minor:        p.Version[1],
		Platform:     p.Platform,
		SitePackages: p.SitePackages,
	}, nil
}
