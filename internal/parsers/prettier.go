package parsers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/translate"
	"github.com/gregkdunn/ai-context-utilities-sub012/internal/types"
)

// prettierrcNames is the resolution order for the formatter configuration
// file. The first one present wins; package.json's "prettier" key is the
// final fallback.
var prettierrcNames = []string{
	".prettierrc",
	".prettierrc.json",
	".prettierrc.yaml",
	".prettierrc.yml",
}

// PrettierParser translates an effective formatter option set into
// instructions. Unrecognized options are ignored so newer Prettier releases
// do not break generation.
type PrettierParser struct{}

// NewPrettierParser creates a formatter options parser.
func NewPrettierParser() *PrettierParser {
	return &PrettierParser{}
}

func (p *PrettierParser) Name() string { return "prettier" }

// Parse locates the formatter configuration and emits one instruction per
// recognized option.
func (p *PrettierParser) Parse(ctx context.Context, workspaceRoot string) ([]types.ParsedInstruction, error) {
	opts, err := p.loadOptions(workspaceRoot)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		return nil, nil
	}

	names := make([]string, 0, len(opts))
	for name := range opts {
		names = append(names, name)
	}
	sort.Strings(names)

	var instrs []types.ParsedInstruction
	for _, name := range names {
		text, concern, ok := prettierSentence(name, opts[name])
		if !ok {
			continue // forward-compatible: skip unknown options
		}

		instr := types.ParsedInstruction{
			Content:  text,
			Category: types.CategoryFormatting,
			Frontmatter: types.Frontmatter{
				ApplyTo:     lintApplyTo,
				Description: fmt.Sprintf("Derived from Prettier option %s", name),
			},
		}
		if concern != "" {
			instr.Concerns = []string{concern}
		}
		instrs = append(instrs, instr)
	}
	return instrs, nil
}

// loadOptions returns the flat option map, or nil if no formatter
// configuration exists. .prettierrc files may be JSON or YAML; yaml.v3
// parses both.
func (p *PrettierParser) loadOptions(workspaceRoot string) (map[string]interface{}, error) {
	for _, name := range prettierrcNames {
		data, err := os.ReadFile(filepath.Join(workspaceRoot, name))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		var opts map[string]interface{}
		if err := yaml.Unmarshal(data, &opts); err != nil {
			return nil, fmt.Errorf("malformed %s: %w", name, err)
		}
		return opts, nil
	}

	// Fall back to the "prettier" key of package.json.
	data, err := os.ReadFile(filepath.Join(workspaceRoot, "package.json"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read package.json: %w", err)
	}

	var pkg struct {
		Prettier map[string]interface{} `json:"prettier"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("malformed package.json: %w", err)
	}
	if len(pkg.Prettier) == 0 {
		return nil, nil
	}
	return pkg.Prettier, nil
}

// prettierSentence is the static option-to-sentence table. Returns ok=false
// for unrecognized options.
func prettierSentence(name string, value interface{}) (text, concern string, ok bool) {
	switch name {
	case "singleQuote":
		if asBool(value) {
			return "Format string literals with single quotes.", translate.ConcernQuotes, true
		}
		return "Format string literals with double quotes.", translate.ConcernQuotes, true
	case "semi":
		if asBool(value) {
			return "End statements with semicolons.", translate.ConcernSemicolons, true
		}
		return "Omit semicolons at the end of statements.", translate.ConcernSemicolons, true
	case "useTabs":
		if asBool(value) {
			return "Indent with tabs, not spaces.", translate.ConcernIndentation, true
		}
		return "Indent with spaces, not tabs.", translate.ConcernIndentation, true
	case "tabWidth":
		return fmt.Sprintf("Use an indentation width of %d spaces.", asInt(value, 2)), translate.ConcernIndentation, true
	case "printWidth":
		return fmt.Sprintf("Wrap lines longer than %d characters.", asInt(value, 80)), translate.ConcernLineLength, true
	case "trailingComma":
		switch asString(value) {
		case "none":
			return "Omit trailing commas.", translate.ConcernTrailingCommas, true
		case "es5":
			return "Use trailing commas where valid in ES5 (objects, arrays).", translate.ConcernTrailingCommas, true
		default:
			return "Use trailing commas wherever possible, including function arguments.", translate.ConcernTrailingCommas, true
		}
	case "arrowParens":
		if asString(value) == "avoid" {
			return "Omit parentheses around a sole arrow-function parameter.", translate.ConcernArrowParens, true
		}
		return "Wrap arrow-function parameters in parentheses, even a sole parameter.", translate.ConcernArrowParens, true
	case "bracketSpacing":
		if asBool(value) {
			return "Include spaces inside object literal braces.", "", true
		}
		return "Omit spaces inside object literal braces.", "", true
	case "endOfLine":
		switch asString(value) {
		case "crlf":
			return "Use CRLF line endings.", "", true
		case "lf":
			return "Use LF line endings.", "", true
		default:
			return "", "", false
		}
	case "jsxSingleQuote":
		if asBool(value) {
			return "Use single quotes in JSX attributes.", "", true
		}
		return "Use double quotes in JSX attributes.", "", true
	}
	return "", "", false
}

// asBool, asInt, asString tolerate the type differences between JSON and
// YAML decoding of the same document.

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func asInt(v interface{}, def int) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return def
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}
