// Package declaration derives the one-row summary declaration from the two
// register tables, a rule table, and caller-supplied overrides.
//
// Evaluation is two-pass: expression rules may depend on any non-expression
// field, so all context, sum and manual rules resolve first. If expressions
// ever need to depend on each other, this becomes a dependency graph with
// topological evaluation, not a third pass.
package declaration

import (
	"strings"

	"github.com/shopspring/decimal"

	"vatex/internal/logger"
	"vatex/internal/schema"
	"vatex/pkg/models"
)

// Derive computes the declaration table (exactly one schema-complete row).
//
// overrides carries caller-supplied values keyed by declaration field name,
// plus the special "egn" key for the submitter's person identifier.
func Derive(
	sales, purchases *models.Table,
	declSchema *schema.Schema,
	mapping *schema.DeclarationMapping,
	taxPeriod string,
	company models.Company,
	overrides map[string]string,
) *models.Table {
	log := logger.WithComponent("declaration")

	row := make(models.Row, len(declSchema.Fields))
	for i := range declSchema.Fields {
		f := &declSchema.Fields[i]
		switch {
		case f.IsAmount || f.Type == schema.TypeFloat:
			row[f.Name] = decimal.Zero
		case f.Type == schema.TypeString:
			row[f.Name] = ""
		default:
			row[f.Name] = nil
		}
	}

	rules := mapping.ByColumn()

	// Pass 1: everything except expressions.
	for i := range declSchema.Fields {
		f := &declSchema.Fields[i]
		rule, ok := rules[f.Name]
		if !ok {
			continue
		}

		switch rule.Kind {
		case schema.KindContext:
			fillContextField(row, f.Name, sales, purchases, taxPeriod, company, overrides)

		case schema.KindSumSales:
			row[f.Name] = sales.SumColumn(rule.SourceColumn)

		case schema.KindSumPurchases:
			row[f.Name] = purchases.SumColumn(rule.SourceColumn)

		case schema.KindManual:
			if v, ok := overrides[f.Name]; ok {
				row[f.Name] = coerceManual(v, f)
			} else if rule.DefaultValue != nil {
				row[f.Name] = coerceManual(*rule.DefaultValue, f)
			}

		case schema.KindExpression:
			// Pass 2.

		default:
			// Unknown kind: the field keeps its schema default.
			log.Debug().Str("column", f.Name).Msg("Unknown declaration rule kind, keeping schema default")
		}
	}

	// Pass 2: expressions, over already-resolved values.
	for i := range declSchema.Fields {
		f := &declSchema.Fields[i]
		rule, ok := rules[f.Name]
		if !ok || rule.Kind != schema.KindExpression {
			continue
		}
		evalExpression(row, f.Name)
	}

	// An EGN override lands in whichever person-identifier field the schema
	// declares, preferring the more specific name.
	if egn, ok := overrides["egn"]; ok {
		if declSchema.HasField("submitter_egn") {
			row["submitter_egn"] = egn
		} else if declSchema.HasField("egn") {
			row["egn"] = egn
		}
	}

	return &models.Table{Rows: []models.Row{row}}
}

func fillContextField(
	row models.Row,
	name string,
	sales, purchases *models.Table,
	taxPeriod string,
	company models.Company,
	overrides map[string]string,
) {
	switch name {
	case "vat_number":
		row[name] = company.VAT
	case "taxpayer_name":
		row[name] = company.LegalName
	case "tax_period":
		row[name] = taxPeriod
	case "submitter_person":
		if v, ok := overrides["submitter_person"]; ok && v != "" {
			row[name] = v
		} else {
			row[name] = company.DefaultSubmitter
		}
	case "sales_document_count":
		row[name] = sales.Len()
	case "purchases_document_count":
		row[name] = purchases.Len()
	}
}

// evalExpression computes one derived field from already-resolved values.
// The tax-credit policy is full credit only; partial-credit apportionment
// is not applied.
func evalExpression(row models.Row, name string) {
	switch name {
	case "total_tax_credit":
		row[name] = getDecimal(row, "purchases_vat_full_credit")
	case "vat_due":
		due := getDecimal(row, "sales_total_vat").Sub(getDecimal(row, "total_tax_credit"))
		if due.IsNegative() {
			due = decimal.Zero
		}
		row[name] = due
	case "vat_refundable":
		refund := getDecimal(row, "total_tax_credit").Sub(getDecimal(row, "sales_total_vat"))
		if refund.IsNegative() {
			refund = decimal.Zero
		}
		row[name] = refund
	}
}

// coerceManual converts an override or default constant to the field's
// declared type. Numeric fields accept comma decimal separators; unparsable
// values default to zero rather than failing the run.
func coerceManual(value string, f *schema.Field) any {
	if f.Numeric() {
		return ParseDecimal(value)
	}
	return value
}

// ParseDecimal parses a possibly comma-separated decimal string, returning
// zero for anything unparsable.
func ParseDecimal(s string) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func getDecimal(row models.Row, name string) decimal.Decimal {
	if d, ok := models.ToDecimal(row[name]); ok {
		return d
	}
	return decimal.Zero
}
