package translate

import (
	"fmt"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/types"
)

// Concern identifiers shared with the Prettier option table in the parsers
// package. Lint- and formatter-derived guidance about the same concern is
// conflict-checked by the priority manager.
const (
	ConcernQuotes         = "quotes"
	ConcernSemicolons     = "semicolons"
	ConcernIndentation    = "indentation"
	ConcernTrailingCommas = "trailing-commas"
	ConcernLineLength     = "line-length"
	ConcernArrowParens    = "arrow-parens"
)

func builtinEntries() map[string]entry {
	return map[string]entry{
		"quotes": {
			category: types.CategoryLint,
			concern:  ConcernQuotes,
			render: func(sev Severity, options []interface{}) string {
				style := optString(options, 0, "double")
				switch style {
				case "single":
					return fmt.Sprintf("%s use single quotes for string literals.", imperative(sev))
				case "backtick":
					return fmt.Sprintf("%s use template literals (backticks) for strings.", imperative(sev))
				default:
					return fmt.Sprintf("%s use double quotes for string literals.", imperative(sev))
				}
			},
		},
		"semi": {
			category: types.CategoryLint,
			concern:  ConcernSemicolons,
			render: func(sev Severity, options []interface{}) string {
				if optString(options, 0, "always") == "never" {
					return fmt.Sprintf("%s omit semicolons at the end of statements.", imperative(sev))
				}
				return fmt.Sprintf("%s terminate statements with semicolons.", imperative(sev))
			},
		},
		"indent": {
			category: types.CategoryLint,
			concern:  ConcernIndentation,
			render: func(sev Severity, options []interface{}) string {
				if optString(options, 0, "") == "tab" {
					return fmt.Sprintf("%s indent with tabs.", imperative(sev))
				}
				width := int(optNumber(options, 0, 4))
				return fmt.Sprintf("%s indent with %d spaces.", imperative(sev), width)
			},
		},
		"comma-dangle": {
			category: types.CategoryLint,
			concern:  ConcernTrailingCommas,
			render: func(sev Severity, options []interface{}) string {
				mode := optString(options, 0, "never")
				if mode == "never" {
					return fmt.Sprintf("%s omit trailing commas in multiline literals.", imperative(sev))
				}
				return fmt.Sprintf("%s include trailing commas in multiline literals (mode: %s).", imperative(sev), mode)
			},
		},
		"max-len": {
			category: types.CategoryLint,
			concern:  ConcernLineLength,
			render: func(sev Severity, options []interface{}) string {
				limit := int(optNumber(options, 0, 80))
				// Object-form options: [{ "code": 120 }]
				if len(options) > 0 {
					if m, ok := options[0].(map[string]interface{}); ok {
						if n, ok := m["code"].(float64); ok {
							limit = int(n)
						}
					}
				}
				return fmt.Sprintf("Keep lines under %d characters.", limit)
			},
		},
		"arrow-parens": {
			category: types.CategoryLint,
			concern:  ConcernArrowParens,
			render: func(sev Severity, options []interface{}) string {
				if optString(options, 0, "always") == "as-needed" {
					return fmt.Sprintf("%s omit parentheses around a sole arrow-function parameter.", imperative(sev))
				}
				return fmt.Sprintf("%s wrap arrow-function parameters in parentheses, even a sole parameter.", imperative(sev))
			},
		},
		"eqeqeq": {
			category: types.CategoryLint,
			render: func(sev Severity, options []interface{}) string {
				return fmt.Sprintf("%s use strict equality (=== and !==) instead of loose equality.", imperative(sev))
			},
		},
		"no-var": {
			category: types.CategoryLanguage,
			render: func(sev Severity, options []interface{}) string {
				return "Never declare variables with `var`; use `const` or `let`."
			},
		},
		"prefer-const": {
			category: types.CategoryLanguage,
			render: func(sev Severity, options []interface{}) string {
				return "Declare variables with `const` unless they are reassigned."
			},
		},
		"prefer-arrow-callback": {
			category: types.CategoryLint,
			render: func(sev Severity, options []interface{}) string {
				return fmt.Sprintf("%s use arrow functions for callbacks instead of function expressions.", imperative(sev))
			},
		},
		"no-console": {
			category: types.CategoryLint,
			render: func(sev Severity, options []interface{}) string {
				return fmt.Sprintf("%s avoid console logging in committed code.", imperative(sev))
			},
		},
		"no-debugger": {
			category: types.CategoryLint,
			render: func(sev Severity, options []interface{}) string {
				return "Never leave `debugger` statements in committed code."
			},
		},
		"curly": {
			category: types.CategoryLint,
			render: func(sev Severity, options []interface{}) string {
				if optString(options, 0, "all") == "multi-line" {
					return fmt.Sprintf("%s use braces for multiline control-flow bodies.", imperative(sev))
				}
				return fmt.Sprintf("%s use braces for all control-flow bodies, even single statements.", imperative(sev))
			},
		},
		"no-unused-vars": {
			category: types.CategoryLint,
			render: func(sev Severity, options []interface{}) string {
				return "Remove unused variables, imports, and function parameters."
			},
		},
		"object-shorthand": {
			category: types.CategoryLint,
			render: func(sev Severity, options []interface{}) string {
				return fmt.Sprintf("%s use shorthand syntax for object properties and methods.", imperative(sev))
			},
		},
		"prefer-template": {
			category: types.CategoryLint,
			render: func(sev Severity, options []interface{}) string {
				return fmt.Sprintf("%s use template literals instead of string concatenation.", imperative(sev))
			},
		},
		"@typescript-eslint/no-explicit-any": {
			category: types.CategoryLanguage,
			render: func(sev Severity, options []interface{}) string {
				return fmt.Sprintf("%s avoid the `any` type; use precise types or `unknown`.", imperative(sev))
			},
		},
		"@typescript-eslint/explicit-function-return-type": {
			category: types.CategoryLanguage,
			render: func(sev Severity, options []interface{}) string {
				return fmt.Sprintf("%s annotate function return types explicitly.", imperative(sev))
			},
		},
		"@typescript-eslint/no-unused-vars": {
			category: types.CategoryLanguage,
			render: func(sev Severity, options []interface{}) string {
				return "Remove unused variables, imports, and function parameters."
			},
		},
		"@typescript-eslint/no-floating-promises": {
			category: types.CategoryLanguage,
			render: func(sev Severity, options []interface{}) string {
				return fmt.Sprintf("%s await or explicitly handle every promise; do not let promises float.", imperative(sev))
			},
		},
	}
}
