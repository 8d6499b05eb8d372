// Package output places run artifacts on disk: a versioned per-run folder
// and UTF-8 CSV copies of the three tables next to the fixed-width exports.
package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"vatex/internal/logger"
	"vatex/internal/schema"
	"vatex/pkg/models"
)

var folderUnsafe = regexp.MustCompile(`[<>:"/\\|?*]`)

// CreateRunFolder creates the output folder for one run under root, named
// VAT_<CleanCompanyName>_<YYYYMM>_vN where N is one above the highest
// existing version for the same company and period.
func CreateRunFolder(root string, company models.Company, period string) (string, error) {
	const op = "CreateRunFolder"

	name := company.DisplayName
	if name == "" {
		name = company.LegalName
	}
	if name == "" {
		name = "UnknownCompany"
	}
	clean := strings.ReplaceAll(folderUnsafe.ReplaceAllString(name, ""), " ", "_")

	base := fmt.Sprintf("VAT_%s_%s", clean, period)
	version := 1

	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(base) + `_v(\d+)$`)
	entries, err := os.ReadDir(root)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("%s: failed to list output root: %w", op, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if m := pattern.FindStringSubmatch(entry.Name()); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil && v >= version {
				version = v + 1
			}
		}
	}

	path := filepath.Join(root, fmt.Sprintf("%s_v%d", base, version))
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("%s: failed to create output folder: %w", op, err)
	}

	log := logger.WithComponent("output")
	log.Info().Str("folder", path).Msg("Created output folder")
	return path, nil
}

// WriteCSV writes a table as UTF-8 CSV, columns in schema order, amounts at
// two decimals. The CSV copies exist for accountants to eyeball; the
// fixed-width TXT files are the submission artifacts.
func WriteCSV(path string, table *models.Table, s *schema.Schema) error {
	const op = "WriteCSV"

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%s: failed to create %s: %w", op, path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	fields := s.OrderedFields()

	header := make([]string, len(fields))
	for i := range fields {
		header[i] = fields[i].Name
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("%s: failed to write header: %w", op, err)
	}

	record := make([]string, len(fields))
	for _, row := range table.Rows {
		for i := range fields {
			record[i] = csvCell(row[fields[i].Name], &fields[i])
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("%s: failed to write row: %w", op, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%s: failed to flush %s: %w", op, path, err)
	}
	return nil
}

func csvCell(value any, f *schema.Field) string {
	if value == nil {
		return ""
	}
	if f.IsAmount || f.Type == schema.TypeFloat {
		if d, ok := models.ToDecimal(value); ok {
			return d.StringFixed(2)
		}
	}
	switch v := value.(type) {
	case string:
		return v
	case decimal.Decimal:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
