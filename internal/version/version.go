// Package version provides version management for plotpipe and for the
// gnuplot engines it drives.
package version

import (
	"fmt"
	"regexp"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Build information that can be set at compile time via -ldflags
var (
	// Version is the semantic version of the library and CLI
	Version = "0.3.0"

	// GitCommit is the git commit hash when the binary was built
	GitCommit = "unknown"

	// BuildDate is the date when the binary was built
	BuildDate = "unknown"
)

// EngineQuery is the engine command whose output ParseEngineVersion reads.
const EngineQuery = `print GPVAL_VERSION.".".GPVAL_PATCHLEVEL`

// binaryInlineData is the engine range that accepts binary data on '-'.
var binaryInlineData = mustConstraint(">= 4.6")

// Info represents comprehensive version information
type Info struct {
	Version   string          `json:"version"`
	GitCommit string          `json:"gitCommit"`
	BuildDate string          `json:"buildDate"`
	GoVersion string          `json:"goVersion"`
	Platform  string          `json:"platform"`
	SemVer    *semver.Version `json:"-"`
}

// GetInfo returns comprehensive version information
func GetInfo() (*Info, error) {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("invalid semantic version '%s': %w", Version, err)
	}

	return &Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		SemVer:    sv,
	}, nil
}

// GetFormattedVersion returns a one-line version string
func GetFormattedVersion() string {
	info, err := GetInfo()
	if err != nil {
		return fmt.Sprintf("plotpipe v%s (invalid version)", Version)
	}

	parts := []string{fmt.Sprintf("plotpipe v%s", info.Version)}

	if info.GitCommit != "unknown" && info.GitCommit != "" {
		shortCommit := info.GitCommit
		if len(shortCommit) > 7 {
			shortCommit = shortCommit[:7]
		}
		parts = append(parts, fmt.Sprintf("commit %s", shortCommit))
	}

	if info.BuildDate != "unknown" && info.BuildDate != "" {
		parts = append(parts, fmt.Sprintf("built %s", info.BuildDate))
	}

	return strings.Join(parts, ", ")
}

// GetDetailedVersion returns multi-line version information, including the
// engine version when one is known.
func GetDetailedVersion(engine *semver.Version) string {
	lines := []string{
		GetFormattedVersion(),
		fmt.Sprintf("Go Version: %s", runtime.Version()),
		fmt.Sprintf("Platform: %s/%s", runtime.GOOS, runtime.GOARCH),
	}
	if engine != nil {
		lines = append(lines, fmt.Sprintf("gnuplot: %s", engine.Original()))
	}
	return strings.Join(lines, "\n")
}

// engineVersionPattern matches "5.4.8", "5.4" and "6.0.0rc1".
var engineVersionPattern = regexp.MustCompile(`^(\d+)\.(\d+)(?:\.(\d+))?\s*([A-Za-z][0-9A-Za-z.]*)?$`)

// ParseEngineVersion parses the answer to EngineQuery. The engine writes
// prerelease patch levels as "0rc1"; they become "0-rc1".
func ParseEngineVersion(lines []string) (*semver.Version, error) {
	var text string
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			text = t
			break
		}
	}

	m := engineVersionPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, fmt.Errorf("unrecognized gnuplot version %q", text)
	}

	patch := m[3]
	if patch == "" {
		patch = "0"
	}
	s := fmt.Sprintf("%s.%s.%s", m[1], m[2], patch)
	if m[4] != "" {
		s += "-" + m[4]
	}

	sv, err := semver.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("invalid gnuplot version %q: %w", text, err)
	}
	return sv, nil
}

// SupportsBinaryData reports whether an engine accepts binary inline
// data. An unknown version is assumed capable.
func SupportsBinaryData(engine *semver.Version) bool {
	if engine == nil {
		return true
	}
	// constraints never match prereleases
	release, err := engine.SetPrerelease("")
	if err != nil {
		return true
	}
	return binaryInlineData.Check(&release)
}

func mustConstraint(c string) *semver.Constraints {
	cs, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}
