package register

import (
	"strings"

	"vatex/pkg/models"
)

// GroupKey identifies one logical document: the normalized join key, the
// counterparty tax id, and the document date. Lines with a null join key
// still group, with the null itself as the key value.
type GroupKey struct {
	JoinKey     string
	JoinKeyNull bool
	PartnerVAT  string
	Date        string
}

// DocumentGroup is the aggregation unit: every ledger line of one document.
type DocumentGroup struct {
	Key   GroupKey
	Lines []models.LedgerLine
}

// First returns the document's first ledger line, which supplies the
// document-level fields of the output row.
func (g *DocumentGroup) First() *models.LedgerLine {
	return &g.Lines[0]
}

// GroupDocuments partitions ledger lines into document groups. Every line
// lands in exactly one group; groups come out in discovery order, which is
// deterministic for identical input.
//
// Empty counterparty tax ids are replaced with the sentinel id before the
// grouping pass, so a document never splits across an empty id and the
// sentinel.
func GroupDocuments(lines []models.LedgerLine) []*DocumentGroup {
	for i := range lines {
		if lines[i].PartnerVAT == "" {
			lines[i].PartnerVAT = models.MissingPartnerVAT
		}
	}

	groups := make(map[GroupKey]*DocumentGroup)
	var order []GroupKey

	for i := range lines {
		key := GroupKey{
			JoinKey:     lines[i].JoinKey,
			JoinKeyNull: lines[i].JoinKeyNull,
			PartnerVAT:  lines[i].PartnerVAT,
			Date:        lines[i].Date,
		}
		g, ok := groups[key]
		if !ok {
			g = &DocumentGroup{Key: key}
			groups[key] = g
			order = append(order, key)
		}
		g.Lines = append(g.Lines, lines[i])
	}

	result := make([]*DocumentGroup, len(order))
	for i, key := range order {
		result[i] = groups[key]
	}
	return result
}

// ParseTaxTags splits a raw comma-joined tax-grid cell into individual
// codes. Quote characters are stripped before splitting; blank entries are
// dropped, repeated codes are kept.
func ParseTaxTags(raw string) []string {
	clean := strings.NewReplacer("'", "", `"`, "").Replace(raw)

	var tags []string
	for _, part := range strings.Split(clean, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
