package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"vatex/internal/logger"
)

// RawTable is the journal file as read: a header row plus string cells.
// Cells missing from short rows read as empty strings, matching how the
// upstream export pads ragged rows.
type RawTable struct {
	Headers []string
	Rows    []map[string]string
}

// ReadLedgerFile reads a ledger export from a CSV or XLSX file.
func ReadLedgerFile(path string) (*RawTable, error) {
	const op = "ReadLedgerFile"

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return nil, fmt.Errorf("%s: %w: %s", op, ErrUnsupportedFormat, path)
	}
}

func readCSV(path string) (*RawTable, error) {
	const op = "readCSV"

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open journal: %w", op, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // upstream exports occasionally pad rows unevenly

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read journal CSV: %w", op, err)
	}

	return tableFromRecords(records, path)
}

func readXLSX(path string) (*RawTable, error) {
	const op = "readXLSX"

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open journal workbook: %w", op, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: %w: workbook has no sheets", op, ErrEmptyJournal)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read sheet %s: %w", op, sheets[0], err)
	}

	return tableFromRecords(rows, path)
}

func tableFromRecords(records [][]string, path string) (*RawTable, error) {
	const op = "tableFromRecords"

	if len(records) < 2 {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrEmptyJournal, path)
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	table := &RawTable{Headers: headers}
	for _, record := range records[1:] {
		row := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = record[i]
			} else {
				row[h] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	log := logger.WithComponent("journal")
	log.Debug().
		Str("file", path).
		Int("columns", len(headers)).
		Int("rows", len(table.Rows)).
		Msg("Journal file read")

	return table, nil
}

// HasColumn reports whether the raw table carries the given source column.
func (t *RawTable) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}
