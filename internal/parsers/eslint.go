package parsers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gregkdunn/ai-context-utilities-sub012/internal/translate"
	"github.com/gregkdunn/ai-context-utilities-sub012/internal/types"
)

// ESLintRulesPath is the well-known location of the effective lint rule set,
// exported by the external lint tool (e.g. `eslint --print-config`, filtered
// to its "rules" key). The parser does not resolve cascading configs itself.
const ESLintRulesPath = ".aictx/eslint-rules.json"

// lintApplyTo is the applicability pattern attached to lint-derived
// instructions.
var lintApplyTo = []string{"**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx"}

// ESLintParser translates an effective ESLint rule set into instructions.
type ESLintParser struct {
	table *translate.Table
}

// NewESLintParser creates a lint parser using the given translation table.
func NewESLintParser(table *translate.Table) *ESLintParser {
	return &ESLintParser{table: table}
}

func (p *ESLintParser) Name() string { return "eslint" }

// Parse reads the effective rule set and emits one instruction per enabled
// rule. Disabled ("off") rules are dropped here, before translation.
func (p *ESLintParser) Parse(ctx context.Context, workspaceRoot string) ([]types.ParsedInstruction, error) {
	data, err := os.ReadFile(filepath.Join(workspaceRoot, ESLintRulesPath))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read lint rules: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("malformed lint rule set: %w", err)
	}

	// Map iteration order is random; sort rule ids so repeated runs emit
	// identical instruction sequences.
	ruleIDs := make([]string, 0, len(raw))
	for id := range raw {
		ruleIDs = append(ruleIDs, id)
	}
	sort.Strings(ruleIDs)

	var instrs []types.ParsedInstruction
	for _, id := range ruleIDs {
		severity, options, err := decodeRuleEntry(raw[id])
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", id, err)
		}
		if severity == translate.SeverityOff {
			continue
		}

		tr := p.table.Translate(id, severity, options)

		instr := types.ParsedInstruction{
			Content:  tr.Text,
			Category: tr.Category,
			Frontmatter: types.Frontmatter{
				ApplyTo:     lintApplyTo,
				Description: fmt.Sprintf("Derived from ESLint rule %s", id),
			},
		}
		if tr.Concern != "" {
			instr.Concerns = []string{tr.Concern}
		}
		instrs = append(instrs, instr)
	}
	return instrs, nil
}

// decodeRuleEntry narrows one raw rule value into (severity, options).
// ESLint allows either a bare severity or an array whose first element is
// the severity and whose remainder is rule options. Severities may be
// numeric (0/1/2) or the strings "off"/"warn"/"error". The loose typing
// stops here; nothing past this function sees raw JSON.
func decodeRuleEntry(raw json.RawMessage) (translate.Severity, []interface{}, error) {
	var arr []interface{}
	if err := json.Unmarshal(raw, &arr); err == nil {
		if len(arr) == 0 {
			return "", nil, fmt.Errorf("empty rule entry")
		}
		sev, err := normalizeSeverity(arr[0])
		if err != nil {
			return "", nil, err
		}
		return sev, arr[1:], nil
	}

	var scalar interface{}
	if err := json.Unmarshal(raw, &scalar); err != nil {
		return "", nil, fmt.Errorf("unrecognized rule entry: %w", err)
	}
	sev, err := normalizeSeverity(scalar)
	if err != nil {
		return "", nil, err
	}
	return sev, nil, nil
}

func normalizeSeverity(v interface{}) (translate.Severity, error) {
	switch s := v.(type) {
	case string:
		switch s {
		case "off", "warn", "error":
			return translate.Severity(s), nil
		}
		return "", fmt.Errorf("unknown severity %q", s)
	case float64:
		switch int(s) {
		case 0:
			return translate.SeverityOff, nil
		case 1:
			return translate.SeverityWarn, nil
		case 2:
			return translate.SeverityError, nil
		}
		return "", fmt.Errorf("unknown severity %v", s)
	}
	return "", fmt.Errorf("severity has unexpected type %T", v)
}
