package schema

import (
	"encoding/json"
	"fmt"
)

// RuleKind is the closed set of declaration value sources. Unrecognized kinds
// decode to KindUnknown rather than failing, so that a rule table written for
// a newer tool version degrades to schema defaults instead of aborting.
type RuleKind int

const (
	// KindUnknown is any source_kind this version does not recognize.
	// Fields with an unknown kind keep their schema default.
	KindUnknown RuleKind = iota

	// KindContext fills identity, period, submitter and document-count
	// fields from the company context and run inputs.
	KindContext

	// KindSumSales sums a named column over the sales register.
	KindSumSales

	// KindSumPurchases sums a named column over the purchases register.
	KindSumPurchases

	// KindManual takes a caller override, falling back to the rule's
	// default constant.
	KindManual

	// KindExpression derives the value from other declaration fields in a
	// second evaluation pass.
	KindExpression
)

var ruleKindNames = map[string]RuleKind{
	"from_context":         KindContext,
	"sum_sales_column":     KindSumSales,
	"sum_purchases_column": KindSumPurchases,
	"manual_or_constant":   KindManual,
	"expression":           KindExpression,
}

// ParseRuleKind maps a source_kind string to its RuleKind.
func ParseRuleKind(s string) RuleKind {
	if k, ok := ruleKindNames[s]; ok {
		return k
	}
	return KindUnknown
}

// String returns the template-file spelling of the kind.
func (k RuleKind) String() string {
	for name, kind := range ruleKindNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// UnmarshalJSON decodes a source_kind string, mapping unrecognized values to
// KindUnknown.
func (k *RuleKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*k = ParseRuleKind(s)
	return nil
}

// DeclarationRule describes how one declaration field gets its value.
type DeclarationRule struct {
	// Column is the target declaration field's internal name.
	Column string `json:"column"`

	// Kind selects the value source.
	Kind RuleKind `json:"source_kind"`

	// SourceColumn names the register column for the sum kinds.
	SourceColumn string `json:"source_column,omitempty"`

	// DefaultValue is the fallback constant for manual_or_constant rules.
	// A nil pointer means no default was declared.
	DefaultValue *string `json:"default_value,omitempty"`
}

// DeclarationMapping is the full rule table for the declaration row.
type DeclarationMapping struct {
	Rules []DeclarationRule `json:"fields"`
}

// ParseDeclarationMapping decodes a declaration rule table.
func ParseDeclarationMapping(data []byte) (*DeclarationMapping, error) {
	var m DeclarationMapping
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse declaration mapping: %w", err)
	}
	return &m, nil
}

// ByColumn returns a column-keyed lookup over the rules.
func (m *DeclarationMapping) ByColumn() map[string]*DeclarationRule {
	idx := make(map[string]*DeclarationRule, len(m.Rules))
	for i := range m.Rules {
		idx[m.Rules[i].Column] = &m.Rules[i]
	}
	return idx
}
