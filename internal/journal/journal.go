// Package journal turns the raw ledger export into normalized ledger lines:
// canonical column names, company context, accounting period, and the derived
// document join key every later stage groups by.
package journal

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"vatex/internal/logger"
	"vatex/pkg/models"
)

// Canonical ledger column keys. The ledger-columns template maps each of
// these to a source column of the upstream export; all are required.
const (
	ColCompanyName   = "company_name"
	ColCompanyVAT    = "company_vat"
	ColPartnerName   = "partner_name"
	ColPartnerVAT    = "partner_vat"
	ColTaxTags       = "tax_tag_ids"
	ColDebit         = "debit"
	ColCredit        = "credit"
	ColDate          = "date"
	ColJournalType   = "journal_type"
	ColPurchaseRef   = "purchase_ref"
	ColSalesMoveName = "sales_move_name"
	ColDocumentType  = "document_type"
)

// RequiredColumnKeys lists every canonical key the engine depends on.
var RequiredColumnKeys = []string{
	ColCompanyName,
	ColCompanyVAT,
	ColPartnerName,
	ColPartnerVAT,
	ColTaxTags,
	ColDebit,
	ColCredit,
	ColDate,
	ColJournalType,
	ColPurchaseRef,
	ColSalesMoveName,
	ColDocumentType,
}

const (
	isoDateFormat = "2006-01-02"
	euDateFormat  = "02/01/2006"
)

// Normalize maps the raw table to ledger lines using the canonical column
// mapping. Export artifacts (Unnamed:* columns) are ignored. A missing
// mapping key or a mapped column absent from the file is a fatal data error
// naming every offender.
func Normalize(raw *RawTable, ledgerColumns map[string]string) ([]models.LedgerLine, error) {
	const op = "Normalize"
	log := logger.WithComponent("journal")

	var missingKeys []string
	for _, key := range RequiredColumnKeys {
		if _, ok := ledgerColumns[key]; !ok {
			missingKeys = append(missingKeys, key)
		}
	}
	if len(missingKeys) > 0 {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrMissingColumnMapping, strings.Join(missingKeys, ", "))
	}

	var missingCols []string
	for _, key := range RequiredColumnKeys {
		src := ledgerColumns[key]
		if !raw.HasColumn(src) {
			missingCols = append(missingCols, fmt.Sprintf("%s -> %s", key, src))
		}
	}
	if len(missingCols) > 0 {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrMissingSourceColumn, strings.Join(missingCols, "; "))
	}

	lines := make([]models.LedgerLine, 0, len(raw.Rows))
	for i, row := range raw.Rows {
		cell := func(key string) string {
			return strings.TrimSpace(row[ledgerColumns[key]])
		}

		line := models.LedgerLine{
			CompanyName:   cell(ColCompanyName),
			CompanyVAT:    cell(ColCompanyVAT),
			PartnerName:   cell(ColPartnerName),
			PartnerVAT:    cell(ColPartnerVAT),
			TaxTags:       cell(ColTaxTags),
			Date:          cell(ColDate),
			JournalType:   cell(ColJournalType),
			PurchaseRef:   cell(ColPurchaseRef),
			SalesMoveName: cell(ColSalesMoveName),
			DocumentType:  cell(ColDocumentType),
			Debit:         parseAmountCell(cell(ColDebit), i, ColDebit, log),
			Credit:        parseAmountCell(cell(ColCredit), i, ColCredit, log),
		}
		lines = append(lines, line)
	}

	log.Debug().Int("lines", len(lines)).Msg("Journal normalized")
	return lines, nil
}

// parseAmountCell parses a debit/credit cell. Blank cells are zero;
// unparsable cells default to zero with a warning, never abort the run.
func parseAmountCell(s string, rowIdx int, col string, log zerolog.Logger) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		log.Warn().
			Int("row", rowIdx+2). // 1-based plus header row
			Str("column", col).
			Str("value", s).
			Msg("Unparsable amount cell, defaulting to 0")
		return decimal.Zero
	}
	return d
}

// SelectCompany extracts the reporting company from the journal. The first
// non-empty name and tax id win; finding more than one distinct value is
// reported as a warning and processing continues deterministically.
func SelectCompany(lines []models.LedgerLine, defaultSubmitter string) (models.Company, error) {
	const op = "SelectCompany"
	log := logger.WithComponent("journal")

	names := uniqueNonEmpty(lines, func(l *models.LedgerLine) string { return l.CompanyName })
	vats := uniqueNonEmpty(lines, func(l *models.LedgerLine) string { return l.CompanyVAT })

	if len(names) == 0 || len(vats) == 0 {
		return models.Company{}, fmt.Errorf("%s: %w", op, ErrNoCompany)
	}
	if len(names) > 1 {
		log.Warn().Strs("values", names).Msg("Multiple company names in journal, using the first")
	}
	if len(vats) > 1 {
		log.Warn().Strs("values", vats).Msg("Multiple company tax ids in journal, using the first")
	}

	company := models.Company{
		DisplayName:      names[0],
		LegalName:        names[0],
		VAT:              vats[0],
		VATNumeric:       nonDigits.ReplaceAllString(vats[0], ""),
		DefaultSubmitter: defaultSubmitter,
	}

	log.Info().
		Str("company", company.DisplayName).
		Str("vat", company.VAT).
		Msg("Using company from journal")

	return company, nil
}

var nonDigits = regexp.MustCompile(`\D`)

// AccountingPeriod parses every line's date cell in place and returns the
// period (YYYYMM) of the latest document date. Dates may be ISO (2006-01-02)
// or EU (02/01/2006); a non-empty cell matching neither format is fatal.
func AccountingPeriod(lines []models.LedgerLine) (string, error) {
	const op = "AccountingPeriod"

	var max time.Time
	var bad []string
	seen := false

	for i := range lines {
		raw := lines[i].Date
		if raw == "" {
			continue
		}
		seen = true
		parsed, err := parseDate(raw)
		if err != nil {
			if len(bad) < 3 {
				bad = append(bad, raw)
			}
			continue
		}
		lines[i].ParsedDate = parsed
		if parsed.After(max) {
			max = parsed
		}
	}

	if !seen {
		return "", fmt.Errorf("%s: %w", op, ErrNoDates)
	}
	if len(bad) > 0 {
		return "", fmt.Errorf("%s: %w: first invalid values: %s", op, ErrBadDate, strings.Join(bad, ", "))
	}

	return max.Format("200601"), nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(isoDateFormat, s); err == nil {
		return t, nil
	}
	return time.Parse(euDateFormat, s)
}

// ComputeJoinKeys derives and attaches the document join key of every line:
// purchase journals key on the document reference, sales journals on the move
// name, anything else on a fixed sentinel. Non-null keys are normalized to
// exactly 10 characters (keep the last 10, or left-pad with zeros).
func ComputeJoinKeys(lines []models.LedgerLine) {
	log := logger.WithComponent("journal")

	purchases, sales, other := 0, 0, 0
	unique := make(map[string]struct{})

	for i := range lines {
		var source string
		switch lines[i].JournalType {
		case models.JournalTypePurchase:
			source = lines[i].PurchaseRef
			purchases++
		case models.JournalTypeSales:
			source = lines[i].SalesMoveName
			sales++
		default:
			source = models.UnknownJoinSource
			other++
		}

		if source == "" {
			lines[i].JoinKeyNull = true
			continue
		}
		lines[i].JoinKey = NormalizeJoinKey(source)
		unique[lines[i].JoinKey] = struct{}{}
	}

	log.Info().
		Int("purchase_lines", purchases).
		Int("sales_lines", sales).
		Int("other_lines", other).
		Int("unique_keys", len(unique)).
		Msg("Join keys computed")
}

// NormalizeJoinKey forces a join-key source value to exactly 10 characters:
// longer values keep their last 10 characters, shorter ones are left-padded
// with zeros.
func NormalizeJoinKey(s string) string {
	const keyLen = 10
	runes := []rune(s)
	if len(runes) > keyLen {
		return string(runes[len(runes)-keyLen:])
	}
	return strings.Repeat("0", keyLen-len(runes)) + s
}

func uniqueNonEmpty(lines []models.LedgerLine, get func(*models.LedgerLine) string) []string {
	var values []string
	seen := make(map[string]struct{})
	for i := range lines {
		v := get(&lines[i])
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	return values
}
