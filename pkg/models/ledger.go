package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Canonical journal_type values of the normalized ledger export. Anything
// else is treated as an "other" journal for grouping and amount resolution.
const (
	JournalTypeSales    = "Sales"
	JournalTypePurchase = "Purchase"
)

// Sentinel values mandated by the authority format.
const (
	// MissingPartnerVAT replaces an empty counterparty tax id.
	MissingPartnerVAT = "999999999"

	// MissingDocumentType marks a line without a document-type code.
	MissingDocumentType = "!!"

	// UnknownJoinSource is the join-key source for journals that are
	// neither sales nor purchases.
	UnknownJoinSource = "UNKNOWN"
)

// LedgerLine is one journal entry of the normalized ledger export. It is
// read-only input to the engine; only the derived join key and parsed date
// are attached after reading.
type LedgerLine struct {
	// Company identity (repeated on every line of the export)
	CompanyName string
	CompanyVAT  string

	// Counterparty
	PartnerName string
	PartnerVAT  string

	// TaxTags is the raw comma-joined tax-grid code list.
	TaxTags string

	// Amounts
	Debit  decimal.Decimal
	Credit decimal.Decimal

	// Date is the raw date cell; ParsedDate is filled during period
	// inference and is zero when the cell was empty.
	Date       string
	ParsedDate time.Time

	// Document identification
	JournalType   string
	PurchaseRef   string
	SalesMoveName string
	DocumentType  string

	// JoinKey is the derived, 10-character grouping key. JoinKeyNull is set
	// when the source value was missing; such lines still group, with the
	// null key as the key value.
	JoinKey     string
	JoinKeyNull bool
}

// Company is the reporting company context extracted from the journal.
type Company struct {
	DisplayName string
	LegalName   string

	// VAT is the tax id as printed in the journal; VATNumeric is its
	// digits-only form.
	VAT        string
	VATNumeric string

	// DefaultSubmitter is used for the declaration's submitter field when
	// the caller provides no override.
	DefaultSubmitter string
}
