package parsers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/types"
)

// frameworkGuidance holds the baseline guidance emitted for each recognized
// framework. Unrecognized frameworks get a generic sentence; the detection
// signal still carries the name and version.
var frameworkGuidance = map[string]string{
	"angular": "Use standalone components and the built-in control flow syntax where the version supports them. Prefer signals over manual change detection. Keep components small and push logic into injectable services.",
	"react":   "Use function components with hooks; do not add new class components. Keep state minimal and derive what you can during render. Follow the rules of hooks strictly.",
	"vue":     "Use the Composition API with <script setup>. Define props and emits with full type annotations.",
	"next":    "Default to server components; add \"use client\" only where interactivity requires it. Use the app router conventions for layouts and data fetching.",
	"jest":    "Write tests with Jest. Use describe/it blocks, prefer explicit assertions over snapshots, and keep mocks local to the test file.",
	"vitest":  "Write tests with Vitest. Use describe/it blocks and vi.fn() for mocks; avoid global test state.",
}

// FrameworkParser turns precomputed framework detection signals into one
// instruction per detected framework. It never inspects source files; the
// signals arrive from workspace discovery.
type FrameworkParser struct {
	signals []types.FrameworkSignal
}

// NewFrameworkParser creates a framework parser over the given signals.
func NewFrameworkParser(signals []types.FrameworkSignal) *FrameworkParser {
	return &FrameworkParser{signals: signals}
}

func (p *FrameworkParser) Name() string { return "framework" }

// Parse emits one instruction per framework signal, sorted by framework name
// for run-to-run determinism.
func (p *FrameworkParser) Parse(ctx context.Context, workspaceRoot string) ([]types.ParsedInstruction, error) {
	signals := make([]types.FrameworkSignal, len(p.signals))
	copy(signals, p.signals)
	sort.Slice(signals, func(i, j int) bool { return signals[i].Name < signals[j].Name })

	var instrs []types.ParsedInstruction
	for _, sig := range signals {
		name := strings.ToLower(sig.Name)

		var b strings.Builder
		fmt.Fprintf(&b, "This workspace uses %s%s.", displayName(name), versionSuffix(sig.Version))
		if guidance, ok := frameworkGuidance[name]; ok {
			b.WriteString(" ")
			b.WriteString(guidance)
		} else {
			fmt.Fprintf(&b, " Follow the established %s conventions already present in this workspace.", displayName(name))
		}
		if len(sig.Features) > 0 {
			features := make([]string, len(sig.Features))
			copy(features, sig.Features)
			sort.Strings(features)
			fmt.Fprintf(&b, " Enabled features: %s.", strings.Join(features, ", "))
		}

		instrs = append(instrs, types.ParsedInstruction{
			Content:  b.String(),
			Category: types.CategoryFramework,
			Frontmatter: types.Frontmatter{
				Framework:   name,
				Version:     sig.Version,
				Description: fmt.Sprintf("%s-specific guidance", displayName(name)),
				ApplyTo:     lintApplyTo,
			},
		})
	}
	return instrs, nil
}

// versionSuffix renders " 17" for a valid version, preferring the major
// component so guidance stays stable across patch upgrades.
func versionSuffix(version string) string {
	if version == "" {
		return ""
	}
	v := version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if semver.IsValid(v) {
		return " " + strings.TrimPrefix(semver.Major(v), "v")
	}
	return " " + version
}

func displayName(name string) string {
	switch name {
	case "next":
		return "Next.js"
	case "vue":
		return "Vue"
	case "react":
		return "React"
	case "angular":
		return "Angular"
	case "jest":
		return "Jest"
	case "vitest":
		return "Vitest"
	}
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
