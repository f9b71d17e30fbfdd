package workspace

import (
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/types"
)

// frameworkDeps maps a marker dependency to the framework it signals.
// Confidence reflects how unambiguous the marker is.
var frameworkDeps = map[string]struct {
	framework  string
	confidence float64
}{
	"@angular/core": {"angular", 0.95},
	"react":         {"react", 0.9},
	"vue":           {"vue", 0.9},
	"next":          {"next", 0.95},
	"jest":          {"jest", 0.85},
	"vitest":        {"vitest", 0.85},
}

// angularFeatures lists features available from a given Angular major
// version. Features gate version-specific guidance in the framework parser.
var angularFeatures = []struct {
	major   int
	feature string
}{
	{14, "standalone"},
	{16, "signals"},
	{17, "control-flow"},
}

// FrameworkSignals derives framework detection signals from the workspace's
// declared dependencies. Sorted by framework name for determinism.
func FrameworkSignals(info *Info) []types.FrameworkSignal {
	var signals []types.FrameworkSignal
	for dep, meta := range frameworkDeps {
		rng, ok := info.Dependencies[dep]
		if !ok {
			continue
		}

		version := normalizeVersionRange(rng)
		sig := types.FrameworkSignal{
			Name:       meta.framework,
			Version:    version,
			Confidence: meta.confidence,
		}
		if meta.framework == "angular" {
			sig.Features = featuresForAngular(version)
		}
		// Next.js implies React; keep both signals but React's guidance is
		// generic enough either way.
		signals = append(signals, sig)
	}

	sort.Slice(signals, func(i, j int) bool { return signals[i].Name < signals[j].Name })
	return signals
}

func featuresForAngular(version string) []string {
	v := version
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return nil
	}
	major := majorOf(v)

	var features []string
	for _, f := range angularFeatures {
		if major >= f.major {
			features = append(features, f.feature)
		}
	}
	return features
}

func majorOf(v string) int {
	m := strings.TrimPrefix(semver.Major(v), "v")
	n := 0
	for _, r := range m {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
