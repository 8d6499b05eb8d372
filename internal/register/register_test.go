package register_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vatex/internal/register"
	"vatex/internal/schema"
	"vatex/pkg/models"
)

func intPtr(n int) *int { return &n }

// testSalesSchema declares the identifying columns plus two amount columns
// addressable as field ids 11 and 12.
func testSalesSchema() *schema.Schema {
	return &schema.Schema{
		Name: "sales",
		Fields: []schema.Field{
			{ID: 1, Name: "vat_number", Type: schema.TypeString, Length: 15},
			{ID: 2, Name: "tax_period", Type: schema.TypeString, Length: 6},
			{ID: 3, Name: "branch_number", Type: schema.TypeInt, Length: 4},
			{ID: 4, Name: "journal_row_number", Type: schema.TypeString, Length: 15},
			{ID: 5, Name: "document_type", Type: schema.TypeString, Length: 2},
			{ID: 6, Name: "document_number", Type: schema.TypeString, Length: 10},
			{ID: 7, Name: "document_date", Type: schema.TypeString, Length: 10},
			{ID: 8, Name: "counterparty_vat", Type: schema.TypeString, Length: 15},
			{ID: 9, Name: "counterparty_name", Type: schema.TypeString, Length: 50},
			{ID: 10, Name: "goods_or_service_description", Type: schema.TypeString, Length: 30},
			{ID: 11, Name: "total_base", Type: schema.TypeFloat, IsAmount: true, Length: 15, Decimals: intPtr(2)},
			{ID: 12, Name: "vat_charged", Type: schema.TypeFloat, IsAmount: true, Length: 15, Decimals: intPtr(2)},
		},
	}
}

func testPurchasesSchema() *schema.Schema {
	s := testSalesSchema()
	s.Name = "purchases"
	s.Fields[10].Name = "base_full_credit"
	s.Fields[11].Name = "vat_full_credit"
	return s
}

func testMapping() *schema.TaxGridMapping {
	return &schema.TaxGridMapping{Entries: []schema.MappingEntry{
		{TaxGrid: "+11", SalesColumns: []int{11}},
		{TaxGrid: "+21", SalesColumns: []int{12}},
		{TaxGrid: "+31", PurchaseColumns: []int{11}},
		{TaxGrid: "+41", PurchaseColumns: []int{12}},
		{TaxGrid: "+99", SalesColumns: []int{11}, PurchaseColumns: []int{11}},
	}}
}

func testCompany() models.Company {
	return models.Company{DisplayName: "FAC Doema LTD", VAT: "BG123456789"}
}

func TestGroupDocumentsPartition(t *testing.T) {
	lines := []models.LedgerLine{
		{JoinKey: "00000INV-1", PartnerVAT: "BG1", Date: "2025-05-01"},
		{JoinKey: "00000INV-2", PartnerVAT: "BG1", Date: "2025-05-01"},
		{JoinKey: "00000INV-1", PartnerVAT: "BG1", Date: "2025-05-01"},
		{JoinKey: "00000INV-1", PartnerVAT: "BG2", Date: "2025-05-01"},
	}

	groups := register.GroupDocuments(lines)

	require.Len(t, groups, 3)
	total := 0
	for _, g := range groups {
		total += len(g.Lines)
	}
	assert.Equal(t, len(lines), total, "every line lands in exactly one group")

	// Discovery order.
	assert.Equal(t, "00000INV-1", groups[0].Key.JoinKey)
	assert.Equal(t, "BG1", groups[0].Key.PartnerVAT)
	assert.Len(t, groups[0].Lines, 2)
	assert.Equal(t, "00000INV-2", groups[1].Key.JoinKey)
	assert.Equal(t, "BG2", groups[2].Key.PartnerVAT)
}

func TestGroupDocumentsEmptyPartnerVAT(t *testing.T) {
	lines := []models.LedgerLine{
		{JoinKey: "00000INV-1", PartnerVAT: "", Date: "2025-05-01"},
		{JoinKey: "00000INV-1", PartnerVAT: models.MissingPartnerVAT, Date: "2025-05-01"},
	}

	groups := register.GroupDocuments(lines)

	require.Len(t, groups, 1, "empty id and sentinel id must not split a document")
	assert.Equal(t, models.MissingPartnerVAT, groups[0].Key.PartnerVAT)
}

func TestGroupDocumentsNullJoinKey(t *testing.T) {
	lines := []models.LedgerLine{
		{JoinKeyNull: true, PartnerVAT: "BG1", Date: "2025-05-01"},
		{JoinKeyNull: true, PartnerVAT: "BG1", Date: "2025-05-01"},
		{JoinKey: "0000000000", PartnerVAT: "BG1", Date: "2025-05-01"},
	}

	groups := register.GroupDocuments(lines)

	require.Len(t, groups, 2, "null keys group together, apart from real keys")
	assert.True(t, groups[0].Key.JoinKeyNull)
	assert.Len(t, groups[0].Lines, 2)
}

func TestParseTaxTags(t *testing.T) {
	tags := register.ParseTaxTags(`'+11', "+21" , , +11`)

	assert.Equal(t, []string{"+11", "+21", "+11"}, tags)
	assert.Nil(t, register.ParseTaxTags(""))
}

func TestBuildRegistersSingleSaleLine(t *testing.T) {
	date := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)
	lines := []models.LedgerLine{{
		JournalType:  models.JournalTypeSales,
		JoinKey:      "00000INV-1",
		PartnerVAT:   "BG987654321",
		PartnerName:  "Partner OOD",
		Date:         "2025-05-12",
		ParsedDate:   date,
		TaxTags:      "+11",
		Debit:        decimal.NewFromInt(120),
		DocumentType: "1",
	}}

	sales, purchases, stats := register.BuildRegisters(
		lines, testMapping(), testSalesSchema(), testPurchasesSchema(), testCompany())

	require.Equal(t, 1, sales.Len())
	assert.Equal(t, 0, purchases.Len())
	assert.Equal(t, 1, stats.Documents)
	assert.Equal(t, 1, stats.SalesRows)
	assert.Equal(t, 0, stats.SkippedTags)

	row := sales.Rows[0]
	base, ok := models.ToDecimal(row["total_base"])
	require.True(t, ok)
	assert.Equal(t, "-120", base.String(), "sale debit flips sign")

	assert.Equal(t, "BG123456789", row["vat_number"])
	assert.Equal(t, "202505", row["tax_period"])
	assert.Equal(t, "12/05/2025", row["document_date"])
	assert.Equal(t, "00000INV-1", row["document_number"])
	assert.Equal(t, "1", row["journal_row_number"])
	assert.Equal(t, "01", row["document_type"])
	assert.Equal(t, "BG987654321", row["counterparty_vat"])
	assert.Equal(t, "Partner OOD", row["counterparty_name"])
	assert.Equal(t, "продажба стока/услуга", row["goods_or_service_description"])
	assert.Equal(t, 0, row["branch_number"])

	// Schema-complete: the untouched amount column carries a zero default.
	vat, ok := models.ToDecimal(row["vat_charged"])
	require.True(t, ok)
	assert.True(t, vat.IsZero())
}

func TestBuildRegistersFanOutBothRegisters(t *testing.T) {
	lines := []models.LedgerLine{{
		JournalType: models.JournalTypePurchase,
		JoinKey:     "0000000001",
		PartnerVAT:  "BG1",
		Date:        "2025-05-01",
		TaxTags:     "+99",
		Debit:       decimal.NewFromInt(50),
	}}

	sales, purchases, _ := register.BuildRegisters(
		lines, testMapping(), testSalesSchema(), testPurchasesSchema(), testCompany())

	require.Equal(t, 1, sales.Len())
	require.Equal(t, 1, purchases.Len())

	s, _ := models.ToDecimal(sales.Rows[0]["total_base"])
	p, _ := models.ToDecimal(purchases.Rows[0]["base_full_credit"])
	assert.Equal(t, "50", s.String())
	assert.Equal(t, "50", p.String())
}

func TestBuildRegistersAccumulatesAcrossLines(t *testing.T) {
	// Two lines of one purchase document, plus a repeated tag on one line.
	lines := []models.LedgerLine{
		{
			JournalType: models.JournalTypePurchase,
			JoinKey:     "0000000001", PartnerVAT: "BG1", Date: "2025-05-01",
			TaxTags: "+31, +31",
			Debit:   decimal.NewFromInt(10),
		},
		{
			JournalType: models.JournalTypePurchase,
			JoinKey:     "0000000001", PartnerVAT: "BG1", Date: "2025-05-01",
			TaxTags: "+31",
			Credit:  decimal.NewFromInt(4),
		},
	}

	_, purchases, stats := register.BuildRegisters(
		lines, testMapping(), testSalesSchema(), testPurchasesSchema(), testCompany())

	require.Equal(t, 1, purchases.Len())
	got, _ := models.ToDecimal(purchases.Rows[0]["base_full_credit"])
	// 10 + 10 (repeated tag) + (-4) = 16
	assert.Equal(t, "16", got.String())
	assert.Equal(t, 1, stats.Documents)
}

func TestBuildRegistersUnmappedTagSkipped(t *testing.T) {
	lines := []models.LedgerLine{{
		JournalType: models.JournalTypeSales,
		JoinKey:     "0000000001", PartnerVAT: "BG1", Date: "2025-05-01",
		TaxTags: "+77",
		Credit:  decimal.NewFromInt(100),
	}}

	sales, purchases, stats := register.BuildRegisters(
		lines, testMapping(), testSalesSchema(), testPurchasesSchema(), testCompany())

	assert.Equal(t, 0, sales.Len(), "document with no mapped code emits no row")
	assert.Equal(t, 0, purchases.Len())
	assert.Equal(t, 1, stats.SkippedTags)
}

func TestBuildRegistersRowNumbersPerRegister(t *testing.T) {
	lines := []models.LedgerLine{
		{JournalType: models.JournalTypeSales, JoinKey: "0000000001", PartnerVAT: "BG1",
			Date: "2025-05-01", TaxTags: "+11", Credit: decimal.NewFromInt(10)},
		{JournalType: models.JournalTypePurchase, JoinKey: "0000000002", PartnerVAT: "BG1",
			Date: "2025-05-02", TaxTags: "+31", Debit: decimal.NewFromInt(20)},
		{JournalType: models.JournalTypeSales, JoinKey: "0000000003", PartnerVAT: "BG1",
			Date: "2025-05-03", TaxTags: "+11", Credit: decimal.NewFromInt(30)},
	}

	sales, purchases, _ := register.BuildRegisters(
		lines, testMapping(), testSalesSchema(), testPurchasesSchema(), testCompany())

	require.Equal(t, 2, sales.Len())
	require.Equal(t, 1, purchases.Len())
	assert.Equal(t, "1", sales.Rows[0]["journal_row_number"])
	assert.Equal(t, "2", sales.Rows[1]["journal_row_number"])
	assert.Equal(t, "1", purchases.Rows[0]["journal_row_number"], "numbering restarts per register")
}

func TestMaterializedRowDefaults(t *testing.T) {
	lines := []models.LedgerLine{{
		JournalType: models.JournalTypePurchase,
		JoinKeyNull: true,
		PartnerVAT:  "",
		Date:        "bad-date",
		TaxTags:     "+31",
		Debit:       decimal.NewFromInt(5),
	}}

	_, purchases, _ := register.BuildRegisters(
		lines, testMapping(), testSalesSchema(), testPurchasesSchema(), testCompany())

	require.Equal(t, 1, purchases.Len())
	row := purchases.Rows[0]
	assert.Equal(t, models.MissingPartnerVAT, row["counterparty_vat"])
	assert.Equal(t, models.MissingDocumentType, row["document_type"])
	assert.Equal(t, "", row["document_number"], "null join key leaves the number blank")
	assert.Equal(t, "", row["tax_period"])
	assert.Equal(t, "bad-date", row["document_date"], "unparsed dates pass through raw")
	assert.Equal(t, "покупка стока/услуга", row["goods_or_service_description"])
}
