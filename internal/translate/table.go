// Package translate maps normalized lint rule identifiers to natural-language
// instructions for an AI coding assistant. The table is immutable after
// construction and performs no I/O; parsers receive it by injection so tests
// can substitute a smaller table.
package translate

import (
	"fmt"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/types"
)

// Severity is a normalized lint severity. Numeric ESLint severities are
// normalized by the parser before reaching this package.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
	SeverityOff   Severity = "off"
)

// Translation is the result of translating one rule. Translate never fails;
// unknown rules produce a fallback translation instead of an error.
type Translation struct {
	// Text is the natural-language instruction.
	Text string

	// Category is almost always CategoryLint; a few rules are classified as
	// language-level guidance.
	Category types.Category

	// Concern names the configuration concern the rule addresses, for
	// semantic conflict detection. Empty if the rule is not style-conflicting.
	Concern string

	// Fallback is true when the rule id was not recognized and a generic
	// sentence was produced.
	Fallback bool

	// Note carries a defensive-handling remark, e.g. when an "off" severity
	// reached translation despite upstream filtering.
	Note string
}

// renderFunc produces the instruction text for one rule given its severity
// and its raw options array.
type renderFunc func(sev Severity, options []interface{}) string

// entry is one row of the table.
type entry struct {
	category types.Category
	concern  string
	render   renderFunc
}

// Table is the immutable rule-id lookup table.
type Table struct {
	entries map[string]entry
}

// NewTable returns the built-in translation table.
func NewTable() *Table {
	return &Table{entries: builtinEntries()}
}

// NewTableWith returns a table containing only the given rule ids from the
// built-in set. Intended for tests.
func NewTableWith(ruleIDs ...string) *Table {
	all := builtinEntries()
	entries := make(map[string]entry, len(ruleIDs))
	for _, id := range ruleIDs {
		if e, ok := all[id]; ok {
			entries[id] = e
		}
	}
	return &Table{entries: entries}
}

// Translate maps a rule to an instruction. Pure function of its arguments.
//
// Severity "off" should have been filtered upstream; if it arrives anyway it
// is translated as "warn" and the Note field records the anomaly rather than
// silently dropping the rule.
func (t *Table) Translate(ruleID string, severity Severity, options []interface{}) Translation {
	note := ""
	if severity == SeverityOff {
		severity = SeverityWarn
		note = fmt.Sprintf("rule %s reached translation with severity \"off\"; treated as \"warn\"", ruleID)
	}

	e, ok := t.entries[ruleID]
	if !ok {
		return Translation{
			Text:     fmt.Sprintf("Follow the lint rule `%s` (severity: %s).", ruleID, severity),
			Category: types.CategoryLint,
			Fallback: true,
			Note:     note,
		}
	}

	return Translation{
		Text:     e.render(severity, options),
		Category: e.category,
		Concern:  e.concern,
		Note:     note,
	}
}

// Len reports the number of known rules.
func (t *Table) Len() int { return len(t.entries) }

// Knows reports whether ruleID has a dedicated entry.
func (t *Table) Knows(ruleID string) bool {
	_, ok := t.entries[ruleID]
	return ok
}

// imperative picks the instruction opener by severity: errors are hard
// requirements, warnings are preferences.
func imperative(sev Severity) string {
	if sev == SeverityError {
		return "Always"
	}
	return "Prefer to"
}

// optString returns the string at options[i], or def if absent or not a
// string. Rule options arrive as raw JSON values.
func optString(options []interface{}, i int, def string) string {
	if i < len(options) {
		if s, ok := options[i].(string); ok {
			return s
		}
	}
	return def
}

// optNumber returns the number at options[i], or def.
func optNumber(options []interface{}, i int, def float64) float64 {
	if i < len(options) {
		if n, ok := options[i].(float64); ok {
			return n
		}
	}
	return def
}
