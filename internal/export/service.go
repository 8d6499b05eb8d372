// Package export wires the whole pipeline together: read and normalize the
// journal, build the two registers, derive the declaration, and write the
// CSV and fixed-width artifacts into a versioned run folder.
package export

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"vatex/internal/config"
	"vatex/internal/declaration"
	"vatex/internal/fixedwidth"
	"vatex/internal/journal"
	"vatex/internal/logger"
	"vatex/internal/output"
	"vatex/internal/register"
	"vatex/internal/schema"
	"vatex/pkg/models"
)

// Fixed-width artifact names, as the authority's import tooling expects them.
const (
	salesTxt       = "PRODAGBI.TXT"
	purchasesTxt   = "POKUPKI.TXT"
	declarationTxt = "DEKLAR.TXT"
	salesCSV       = "sales_register.csv"
	purchasesCSV   = "purchases_register.csv"
	declarationCSV = "declaration.csv"
)

// Options parameterizes one export run.
type Options struct {
	// JournalPath is the ledger export file (CSV or XLSX).
	JournalPath string

	// Overrides are caller-supplied declaration values keyed by field name,
	// plus "submitter_person" and "egn".
	Overrides map[string]string
}

// Result summarizes a completed run.
type Result struct {
	OutputFolder string
	Period       string
	Company      models.Company
	Stats        register.Stats
	Files        []string
}

// Service runs export pipelines against a fixed configuration.
type Service struct {
	cfg *config.Config
	log zerolog.Logger
}

// NewService creates an export service.
func NewService(cfg *config.Config) *Service {
	return &Service{
		cfg: cfg,
		log: logger.WithComponent("export"),
	}
}

// Run executes one full export. The run either fully succeeds or aborts
// before any output folder is created; per-value problems inside the engine
// degrade to documented defaults instead of failing the batch.
func (s *Service) Run(ctx context.Context, opts Options) (*Result, error) {
	const op = "Run"

	if opts.Overrides == nil {
		opts.Overrides = map[string]string{}
	}

	tpl, err := schema.LoadTemplates(s.cfg.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	raw, err := journal.ReadLedgerFile(opts.JournalPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lines, err := journal.Normalize(raw, tpl.LedgerColumns)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	company, err := journal.SelectCompany(lines, s.cfg.DefaultSubmitter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	period, err := journal.AccountingPeriod(lines)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info().Str("period", period).Msg("Accounting period inferred from journal")

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	journal.ComputeJoinKeys(lines)

	sales, purchases, stats := register.BuildRegisters(
		lines, tpl.TaxGridMapping, tpl.Sales, tpl.Purchases, company)

	decl := declaration.Derive(
		sales, purchases, tpl.Declaration, tpl.DeclarationMapping,
		period, company, opts.Overrides)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	folder, err := output.CreateRunFolder(s.cfg.OutputDir, company, period)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &Result{
		OutputFolder: folder,
		Period:       period,
		Company:      company,
		Stats:        stats,
	}

	artifacts := []struct {
		name   string
		table  *models.Table
		schema *schema.Schema
		txt    bool
	}{
		{salesCSV, sales, tpl.Sales, false},
		{purchasesCSV, purchases, tpl.Purchases, false},
		{declarationCSV, decl, tpl.Declaration, false},
		{salesTxt, sales, tpl.Sales, true},
		{purchasesTxt, purchases, tpl.Purchases, true},
		{declarationTxt, decl, tpl.Declaration, true},
	}
	for _, a := range artifacts {
		path := filepath.Join(folder, a.name)
		if a.txt {
			err = fixedwidth.WriteFile(path, a.table, a.schema)
		} else {
			err = output.WriteCSV(path, a.table, a.schema)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result.Files = append(result.Files, path)
	}

	s.logSummary(decl)
	return result, nil
}

// logSummary logs the declaration's key figures after a successful run.
func (s *Service) logSummary(decl *models.Table) {
	if decl.Len() == 0 {
		return
	}
	row := decl.Rows[0]

	ev := s.log.Info()
	for _, key := range []string{
		"sales_document_count",
		"purchases_document_count",
		"sales_total_vat",
		"purchases_vat_full_credit",
		"total_tax_credit",
		"vat_due",
		"vat_refundable",
	} {
		v, ok := row[key]
		if !ok {
			continue
		}
		if d, ok := v.(decimal.Decimal); ok {
			ev = ev.Str(key, d.StringFixed(2))
		} else {
			ev = ev.Str(key, fmt.Sprint(v))
		}
	}
	ev.Msg("Declaration summary")
}
