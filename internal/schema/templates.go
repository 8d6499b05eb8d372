package schema

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"vatex/internal/logger"
)

// Required template files. The templates directory is user-editable;
// accountants adjust mapping tables without touching the binary.
const (
	FileSalesSchema        = "sales_schema.json"
	FilePurchasesSchema    = "purchases_schema.json"
	FileDeclarationSchema  = "declaration_schema.json"
	FileTaxGridMapping     = "tax_grid_mapping.json"
	FileDeclarationMapping = "declaration_mapping.json"
	FileLedgerColumns      = "ledger_columns.json"
)

var requiredTemplates = []string{
	FileSalesSchema,
	FilePurchasesSchema,
	FileDeclarationSchema,
	FileTaxGridMapping,
	FileDeclarationMapping,
	FileLedgerColumns,
}

//go:embed default_templates/*.json
var defaultTemplates embed.FS

// Templates bundles everything loaded from the templates directory.
type Templates struct {
	Sales              *Schema
	Purchases          *Schema
	Declaration        *Schema
	TaxGridMapping     *TaxGridMapping
	DeclarationMapping *DeclarationMapping

	// LedgerColumns maps canonical ledger column keys to the source column
	// names of the upstream export.
	LedgerColumns map[string]string
}

// LoadTemplates reads, guards and parses all template files from dir.
//
// A missing template is restored from the packaged default and a warning is
// logged. A template that is not valid JSON is renamed aside with a
// .broken_<timestamp> suffix and replaced by the default, so a hand-edit gone
// wrong never leaves the tool unusable.
func LoadTemplates(dir string) (*Templates, error) {
	const op = "LoadTemplates"
	log := logger.WithComponent("templates")

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%s: failed to create templates dir: %w", op, err)
	}

	raw := make(map[string][]byte, len(requiredTemplates))
	var missing []string
	for _, name := range requiredTemplates {
		data, err := ensureTemplate(dir, name, log)
		if err != nil {
			missing = append(missing, fmt.Sprintf("%s (%v)", name, err))
			continue
		}
		raw[name] = data
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrTemplateNotFound, strings.Join(missing, "; "))
	}

	t := &Templates{}
	var err error
	if t.Sales, err = ParseSchema(raw[FileSalesSchema]); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, FileSalesSchema, err)
	}
	if t.Purchases, err = ParseSchema(raw[FilePurchasesSchema]); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, FilePurchasesSchema, err)
	}
	if t.Declaration, err = ParseSchema(raw[FileDeclarationSchema]); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, FileDeclarationSchema, err)
	}
	if t.TaxGridMapping, err = ParseTaxGridMapping(raw[FileTaxGridMapping]); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, FileTaxGridMapping, err)
	}
	if t.DeclarationMapping, err = ParseDeclarationMapping(raw[FileDeclarationMapping]); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, FileDeclarationMapping, err)
	}
	if t.LedgerColumns, err = parseLedgerColumns(raw[FileLedgerColumns]); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, FileLedgerColumns, err)
	}

	log.Debug().
		Str("dir", dir).
		Int("sales_fields", len(t.Sales.Fields)).
		Int("purchases_fields", len(t.Purchases.Fields)).
		Int("declaration_fields", len(t.Declaration.Fields)).
		Int("tax_grid_entries", len(t.TaxGridMapping.Entries)).
		Msg("Templates loaded")

	return t, nil
}

// ensureTemplate returns the contents of one template file, restoring the
// packaged default when the file is missing or unparseable.
func ensureTemplate(dir, name string, log zerolog.Logger) ([]byte, error) {
	path := filepath.Join(dir, name)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Warn().Str("template", name).Msg("Template missing, restoring packaged default")
		if err := restoreDefault(path, name); err != nil {
			return nil, err
		}
		return os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	if !json.Valid(data) {
		log.Warn().Str("template", name).Msg("Template is not valid JSON, backing up and restoring default")
		backup := path + ".broken_" + time.Now().Format("20060102_150405")
		if err := os.Rename(path, backup); err != nil {
			return nil, fmt.Errorf("failed to back up broken template: %w", err)
		}
		if err := restoreDefault(path, name); err != nil {
			return nil, err
		}
		return os.ReadFile(path)
	}

	return data, nil
}

// restoreDefault writes the packaged default template to path.
func restoreDefault(path, name string) error {
	data, err := defaultTemplates.ReadFile("default_templates/" + name)
	if err != nil {
		return fmt.Errorf("no packaged default for %s: %w", name, err)
	}
	return os.WriteFile(path, data, 0644)
}

func parseLedgerColumns(data []byte) (map[string]string, error) {
	var cols map[string]string
	if err := json.Unmarshal(data, &cols); err != nil {
		return nil, fmt.Errorf("failed to parse ledger columns: %w", err)
	}
	return cols, nil
}
