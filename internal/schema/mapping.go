package schema

import (
	"encoding/json"
	"fmt"
)

// MappingEntry links one tax-grid code to the output columns it feeds.
// A code may map into either register, both, or (an empty entry) neither.
type MappingEntry struct {
	// TaxGrid is the classification code as it appears on ledger lines.
	TaxGrid string `json:"tax_grid"`

	// SalesColumns are sales-register field ids this code contributes to.
	SalesColumns []int `json:"sales_columns"`

	// PurchaseColumns are purchases-register field ids this code contributes to.
	PurchaseColumns []int `json:"purchases_columns"`
}

// TaxGridMapping is the full tax-code → output-column table.
type TaxGridMapping struct {
	Entries []MappingEntry `json:"tax_grid_mapping"`
}

// ParseTaxGridMapping decodes a tax-grid mapping definition.
func ParseTaxGridMapping(data []byte) (*TaxGridMapping, error) {
	var m TaxGridMapping
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse tax grid mapping: %w", err)
	}
	return &m, nil
}

// Lookup returns the entry for a tax-grid code. Codes absent from the table
// return false; callers skip them silently, the mapping may be intentionally
// partial.
func (m *TaxGridMapping) Lookup(code string) (*MappingEntry, bool) {
	for i := range m.Entries {
		if m.Entries[i].TaxGrid == code {
			return &m.Entries[i], true
		}
	}
	return nil, false
}

// Index returns a code-keyed lookup map over the entries.
func (m *TaxGridMapping) Index() map[string]*MappingEntry {
	idx := make(map[string]*MappingEntry, len(m.Entries))
	for i := range m.Entries {
		idx[m.Entries[i].TaxGrid] = &m.Entries[i]
	}
	return idx
}
