// Package fixedwidth serializes output tables into the authority's
// fixed-width text format: one fixed-length line per row, fields concatenated
// in schema order, every field padded or truncated to its exact declared
// width.
package fixedwidth

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"vatex/internal/logger"
	"vatex/internal/schema"
	"vatex/pkg/models"
)

// The consuming regulatory tooling requires Windows-style line endings and
// a legacy single-byte code page, regardless of platform.
const lineTerminator = "\r\n"

// EncodeTable renders every row of the table as one fixed-width line,
// fields in ascending ordering-id order. Lines carry no terminator; the
// writer appends CRLF.
func EncodeTable(table *models.Table, s *schema.Schema) []string {
	fields := s.OrderedFields()

	lines := make([]string, 0, table.Len())
	for _, row := range table.Rows {
		var b strings.Builder
		b.Grow(s.LineWidth())
		for i := range fields {
			b.WriteString(FormatValue(row[fields[i].Name], &fields[i]))
		}
		lines = append(lines, b.String())
	}
	return lines
}

// FormatValue formats a single value to its field's exact width.
//
// Amounts render as fixed-point with the field's decimal count, integers
// round to whole numbers, text passes through unchanged. Anything longer
// than the declared width is truncated from the right, silently; the format
// has no room for wider values and rejecting a batch over one cell is worse
// than losing its tail.
func FormatValue(value any, f *schema.Field) string {
	align := f.Align
	if align == "" {
		if f.Numeric() {
			align = "right"
		} else {
			align = "left"
		}
	}
	fill := ' '
	if f.FillChar != "" {
		fill = []rune(f.FillChar)[0]
	}

	var s string
	switch {
	case f.IsAmount:
		s = coerceDecimal(value).StringFixed(int32(f.DecimalPlaces()))
	case f.Type == schema.TypeInt:
		s = coerceDecimal(value).Round(0).StringFixed(0)
	case f.Type == schema.TypeFloat:
		s = coerceDecimal(value).StringFixed(int32(f.DecimalPlaces()))
	default:
		s = coerceString(value)
	}

	runes := []rune(s)
	if len(runes) > f.Length {
		runes = runes[:f.Length]
	}
	if len(runes) < f.Length {
		padding := make([]rune, f.Length-len(runes))
		for i := range padding {
			padding[i] = fill
		}
		if align == "right" {
			runes = append(padding, runes...)
		} else {
			runes = append(runes, padding...)
		}
	}

	// Safety pass: whatever happened above, the slot is exactly Length wide.
	if len(runes) > f.Length {
		runes = runes[:f.Length]
	}
	for len(runes) < f.Length {
		runes = append(runes, fill)
	}

	return string(runes)
}

// WriteFile encodes the table and writes it in the legacy code page
// (Windows-1251) with CRLF line endings. Characters outside the code page
// are replaced rather than failing the whole batch.
func WriteFile(path string, table *models.Table, s *schema.Schema) error {
	const op = "WriteFile"

	lines := EncodeTable(table, s)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%s: failed to create %s: %w", op, path, err)
	}
	defer f.Close()

	w := transform.NewWriter(f, encoding.ReplaceUnsupported(charmap.Windows1251.NewEncoder()))
	for _, line := range lines {
		if _, err := w.Write([]byte(line + lineTerminator)); err != nil {
			return fmt.Errorf("%s: failed to write %s: %w", op, path, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%s: failed to flush %s: %w", op, path, err)
	}

	log := logger.WithComponent("fixedwidth")
	log.Info().
		Str("file", path).
		Int("lines", len(lines)).
		Msg("Fixed-width file written")

	return nil
}

// coerceDecimal converts a row value to a decimal for numeric formatting.
// Missing and unparsable values format as zero.
func coerceDecimal(value any) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	if d, ok := models.ToDecimal(value); ok {
		return d
	}
	if s, ok := value.(string); ok {
		if d, err := decimal.NewFromString(strings.TrimSpace(s)); err == nil {
			return d
		}
	}
	return decimal.Zero
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case decimal.Decimal:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
