// Package register builds the two regulatory register tables from normalized
// ledger lines: documents are grouped, each line's tax-grid codes are fanned
// out through the mapping table, signed amounts are accumulated per output
// column, and one schema-complete row is materialized per qualifying
// document.
package register

import (
	"strconv"

	"github.com/shopspring/decimal"

	"vatex/internal/logger"
	"vatex/internal/schema"
	"vatex/pkg/models"
)

// Kind selects which register a row is materialized for. The goods/service
// description literal differs between the two.
type Kind int

const (
	Sales Kind = iota
	Purchases
)

func (k Kind) description() string {
	if k == Sales {
		return "продажба стока/услуга"
	}
	return "покупка стока/услуга"
}

// Stats summarizes one register-building pass.
type Stats struct {
	Documents    int
	SalesRows    int
	PurchaseRows int
	SkippedTags  int
}

// BuildRegisters runs the full aggregation: group documents, accumulate
// mapped amounts, and materialize one row per document per register that
// received at least one amount.
func BuildRegisters(
	lines []models.LedgerLine,
	mapping *schema.TaxGridMapping,
	salesSchema, purchasesSchema *schema.Schema,
	company models.Company,
) (sales, purchases *models.Table, stats Stats) {
	log := logger.WithComponent("register")

	sales = &models.Table{}
	purchases = &models.Table{}

	mappingIdx := mapping.Index()
	salesNames := salesSchema.NamesByID()
	purchaseNames := purchasesSchema.NamesByID()

	groups := GroupDocuments(lines)
	stats.Documents = len(groups)
	log.Info().Int("lines", len(lines)).Int("documents", len(groups)).Msg("Documents grouped")

	// Row numbers are per register and advance only when a row is emitted.
	salesCounter := 1
	purchaseCounter := 1

	for _, group := range groups {
		salesAmounts, purchaseAmounts, skipped := accumulate(group, mappingIdx)
		stats.SkippedTags += skipped

		if len(salesAmounts) > 0 {
			row := materializeRow(group, salesSchema, salesCounter, company, Sales)
			applyAmounts(row, salesAmounts, salesNames)
			sales.Append(row)
			salesCounter++
		}
		if len(purchaseAmounts) > 0 {
			row := materializeRow(group, purchasesSchema, purchaseCounter, company, Purchases)
			applyAmounts(row, purchaseAmounts, purchaseNames)
			purchases.Append(row)
			purchaseCounter++
		}
	}

	stats.SalesRows = sales.Len()
	stats.PurchaseRows = purchases.Len()

	log.Info().
		Int("sales_rows", stats.SalesRows).
		Int("purchase_rows", stats.PurchaseRows).
		Int("skipped_tags", stats.SkippedTags).
		Msg("Registers built")

	return sales, purchases, stats
}

// accumulate fans out every line of one document through the mapping table
// and sums signed amounts per target field id, separately per register. A
// single line can feed both registers; codes absent from the mapping table
// contribute nothing.
func accumulate(group *DocumentGroup, mapping map[string]*schema.MappingEntry) (salesAmounts, purchaseAmounts map[int]decimal.Decimal, skipped int) {
	salesAmounts = make(map[int]decimal.Decimal)
	purchaseAmounts = make(map[int]decimal.Decimal)

	for i := range group.Lines {
		line := &group.Lines[i]
		amount := ResolveAmount(line)

		for _, tag := range ParseTaxTags(line.TaxTags) {
			entry, ok := mapping[tag]
			if !ok {
				skipped++
				continue
			}
			for _, id := range entry.SalesColumns {
				salesAmounts[id] = salesAmounts[id].Add(amount)
			}
			for _, id := range entry.PurchaseColumns {
				purchaseAmounts[id] = purchaseAmounts[id].Add(amount)
			}
		}
	}
	return salesAmounts, purchaseAmounts, skipped
}

// applyAmounts writes accumulated amounts into the row, resolving field ids
// to internal names through the schema.
func applyAmounts(row models.Row, amounts map[int]decimal.Decimal, names map[int]string) {
	for id, amount := range amounts {
		if name, ok := names[id]; ok {
			row[name] = amount
		}
	}
}

// materializeRow builds one schema-complete output row for a document:
// every declared field gets a type-correct default first, then the
// document-derived and constant fields overwrite their slots.
func materializeRow(group *DocumentGroup, s *schema.Schema, rowNumber int, company models.Company, kind Kind) models.Row {
	row := make(models.Row, len(s.Fields))

	for i := range s.Fields {
		f := &s.Fields[i]
		switch {
		case f.IsAmount || f.Type == schema.TypeFloat:
			row[f.Name] = decimal.Zero
		case f.Type == schema.TypeString:
			row[f.Name] = ""
		default:
			row[f.Name] = nil
		}
	}

	line := group.First()

	row["vat_number"] = company.VAT
	if line.PartnerVAT != "" {
		row["counterparty_vat"] = line.PartnerVAT
	} else {
		row["counterparty_vat"] = models.MissingPartnerVAT
	}
	row["counterparty_name"] = line.PartnerName

	if !line.ParsedDate.IsZero() {
		row["tax_period"] = line.ParsedDate.Format("200601")
		row["document_date"] = line.ParsedDate.Format("02/01/2006")
	} else {
		row["tax_period"] = ""
		row["document_date"] = line.Date
	}

	if !group.Key.JoinKeyNull {
		row["document_number"] = group.Key.JoinKey
	}

	row["journal_row_number"] = strconv.Itoa(rowNumber)

	if line.DocumentType != "" {
		row["document_type"] = padLeft(line.DocumentType, 2, '0')
	} else {
		row["document_type"] = models.MissingDocumentType
	}

	if s.HasField("goods_or_service_description") {
		row["goods_or_service_description"] = kind.description()
	}

	row["branch_number"] = 0

	return row
}

func padLeft(s string, length int, pad rune) string {
	for len([]rune(s)) < length {
		s = string(pad) + s
	}
	return s
}
