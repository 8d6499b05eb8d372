package fixedwidth_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vatex/internal/fixedwidth"
	"vatex/internal/schema"
	"vatex/pkg/models"
)

func intPtr(n int) *int { return &n }

func amountField(name string, length int) schema.Field {
	return schema.Field{ID: 1, Name: name, Type: schema.TypeFloat, IsAmount: true, Length: length}
}

func TestFormatValueAmount(t *testing.T) {
	f := amountField("total_base", 15)

	got := fixedwidth.FormatValue(decimal.RequireFromString("-120"), &f)

	assert.Equal(t, "        -120.00", got)
	assert.Len(t, got, 15)
}

func TestFormatValueTruncatesFromRight(t *testing.T) {
	f := amountField("total_base", 6)

	got := fixedwidth.FormatValue(decimal.RequireFromString("12345.678"), &f)

	assert.Equal(t, "12345.", got, "overflowing values lose their tail, never abort")
}

func TestFormatValueTextAlignment(t *testing.T) {
	f := schema.Field{Name: "counterparty_name", Type: schema.TypeString, Length: 8}

	assert.Equal(t, "abc     ", fixedwidth.FormatValue("abc", &f))

	f.Align = "right"
	assert.Equal(t, "     abc", fixedwidth.FormatValue("abc", &f))
}

func TestFormatValueFillChar(t *testing.T) {
	f := schema.Field{Name: "branch_number", Type: schema.TypeInt, Length: 4, FillChar: "0"}

	assert.Equal(t, "0000", fixedwidth.FormatValue(0, &f))
	assert.Equal(t, "0012", fixedwidth.FormatValue(12, &f))
}

func TestFormatValueIntRounds(t *testing.T) {
	f := schema.Field{Name: "count", Type: schema.TypeInt, Length: 3}

	assert.Equal(t, "  3", fixedwidth.FormatValue(decimal.RequireFromString("2.6"), &f))
}

func TestFormatValueDecimalsOverride(t *testing.T) {
	f := amountField("coefficient", 7)
	f.Decimals = intPtr(3)

	assert.Equal(t, "  0.350", fixedwidth.FormatValue(decimal.RequireFromString("0.35"), &f))
}

func TestFormatValueNilDefaults(t *testing.T) {
	text := schema.Field{Name: "note", Type: schema.TypeString, Length: 4}
	amt := amountField("total", 6)

	assert.Equal(t, "    ", fixedwidth.FormatValue(nil, &text))
	assert.Equal(t, "  0.00", fixedwidth.FormatValue(nil, &amt))
}

func TestFormatValueTruncatesText(t *testing.T) {
	f := schema.Field{Name: "note", Type: schema.TypeString, Length: 4}

	assert.Equal(t, "прод", fixedwidth.FormatValue("продажба", &f),
		"truncation counts characters, not bytes")
}

func TestEncodeTableLineWidth(t *testing.T) {
	s := &schema.Schema{
		Name: "sales",
		Fields: []schema.Field{
			{ID: 2, Name: "name", Type: schema.TypeString, Length: 10},
			{ID: 1, Name: "period", Type: schema.TypeString, Length: 6},
			{ID: 3, Name: "total", Type: schema.TypeFloat, IsAmount: true, Length: 15},
		},
	}
	table := &models.Table{}
	table.Append(models.Row{"period": "202505", "name": "Partner", "total": decimal.NewFromInt(100)})
	table.Append(models.Row{"period": "202505", "name": "a very long partner name", "total": decimal.Zero})

	lines := fixedwidth.EncodeTable(table, s)

	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Len(t, line, s.LineWidth(), "every line is exactly the schema width")
	}
	assert.Equal(t, "202505Partner            100.00", lines[0],
		"fields concatenate in ordering-id order, not declaration order")
}

func TestWriteFileLegacyEncoding(t *testing.T) {
	s := &schema.Schema{
		Name: "sales",
		Fields: []schema.Field{
			{ID: 1, Name: "description", Type: schema.TypeString, Length: 8},
		},
	}
	table := &models.Table{}
	table.Append(models.Row{"description": "продажба"})
	table.Append(models.Row{"description": "стока"})

	path := filepath.Join(t.TempDir(), "PRODAGBI.TXT")
	require.NoError(t, fixedwidth.WriteFile(path, table, s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// 8 single-byte characters plus CRLF per line: the code page is
	// single-byte, so Cyrillic must not take two bytes as it would in UTF-8.
	require.Len(t, data, 2*(8+2))
	assert.Equal(t, byte('\r'), data[8])
	assert.Equal(t, byte('\n'), data[9])
	assert.Equal(t, byte(0xEF), data[0], "п encodes as 0xEF in Windows-1251")
}
