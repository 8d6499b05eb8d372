package journal_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vatex/internal/journal"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadLedgerFileCSV(t *testing.T) {
	path := writeTempCSV(t, "date,debit,credit\n2025-05-01,100,0\n2025-05-02,0,50\n")

	table, err := journal.ReadLedgerFile(path)

	require.NoError(t, err)
	assert.Equal(t, []string{"date", "debit", "credit"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "100", table.Rows[0]["debit"])
	assert.Equal(t, "50", table.Rows[1]["credit"])
	assert.True(t, table.HasColumn("debit"))
	assert.False(t, table.HasColumn("Debit"))
}

func TestReadLedgerFileRaggedRows(t *testing.T) {
	path := writeTempCSV(t, "date,debit,credit\n2025-05-01,100\n")

	table, err := journal.ReadLedgerFile(path)

	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "", table.Rows[0]["credit"], "short rows pad with empty cells")
}

func TestReadLedgerFileHeaderOnly(t *testing.T) {
	path := writeTempCSV(t, "date,debit,credit\n")

	_, err := journal.ReadLedgerFile(path)

	assert.ErrorIs(t, err, journal.ErrEmptyJournal)
}

func TestReadLedgerFileUnsupportedExtension(t *testing.T) {
	_, err := journal.ReadLedgerFile("journal.pdf")

	assert.ErrorIs(t, err, journal.ErrUnsupportedFormat)
}
