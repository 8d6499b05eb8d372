package models

import "github.com/shopspring/decimal"

// Row is one materialized output row: internal field name → value. A row is
// always schema-complete; values are decimal.Decimal for amounts, string for
// text, int/int64 for counts, nil for untyped schema defaults.
type Row map[string]any

// Table is an ordered collection of rows belonging to one output schema.
type Table struct {
	Rows []Row
}

// Append adds a row to the table.
func (t *Table) Append(r Row) {
	t.Rows = append(t.Rows, r)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// SumColumn sums a named column across all rows. Missing columns and
// non-numeric values contribute nothing, so an absent column or an empty
// table sums to zero.
func (t *Table) SumColumn(name string) decimal.Decimal {
	sum := decimal.Zero
	for _, row := range t.Rows {
		v, ok := row[name]
		if !ok {
			continue
		}
		if d, ok := ToDecimal(v); ok {
			sum = sum.Add(d)
		}
	}
	return sum
}

// ToDecimal coerces a row value to a decimal. It accepts the numeric types a
// materialized row can carry and reports false for everything else.
func ToDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	default:
		return decimal.Decimal{}, false
	}
}
