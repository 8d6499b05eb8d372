package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vatex/internal/config"
	"vatex/internal/export"
	"vatex/internal/logger"
	"vatex/internal/settings"
)

var exportCmd = &cobra.Command{
	Use:   "export [journal-file]",
	Short: "Build the VAT registers and declaration from a ledger export",
	Long: `Process a journal items export into the sales register, the purchases
register, and the one-row summary declaration.

The journal file may be CSV or XLSX. Company identity and accounting period
are taken from the journal itself. Results land in a versioned folder
(VAT_<Company>_<YYYYMM>_vN) as fixed-width TXT files in the authority's
format plus CSV copies for review.

Declaration fields that are normally typed in by hand (submitter, EGN,
manual cells) can be supplied with flags; submitter and EGN are remembered
between runs when --save-settings is given.`,
	Example: `  # Plain export
  vatex export journal_items.csv

  # Supply the submitter and EGN, remember them for next time
  vatex export journal_items.xlsx --submitter "И. Петрова" --egn 7001011234 --save-settings

  # Override a manual declaration cell
  vatex export journal_items.csv --set partial_credit_coefficient=0.35

  # Templates and output somewhere specific
  vatex export journal_items.csv --templates ./templates --out ./exports`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("templates", "", "Templates directory (default from VATEX_TEMPLATES_DIR)")
	exportCmd.Flags().String("out", "", "Output root directory (default from VATEX_OUTPUT_DIR)")
	exportCmd.Flags().String("submitter", "", "Submitter person for the declaration")
	exportCmd.Flags().String("egn", "", "Submitter EGN for the declaration")
	exportCmd.Flags().StringArray("set", nil, "Manual declaration override, field=value (repeatable)")
	exportCmd.Flags().Bool("save-settings", false, "Remember submitter and EGN for future runs")
}

func runExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("export-cmd")

	journalPath := args[0]
	if _, err := os.Stat(journalPath); err != nil {
		return fmt.Errorf("journal file not found: %s", journalPath)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("templates"); dir != "" {
		cfg.TemplatesDir = dir
	}
	if dir, _ := cmd.Flags().GetString("out"); dir != "" {
		cfg.OutputDir = dir
	}

	submitter, _ := cmd.Flags().GetString("submitter")
	egn, _ := cmd.Flags().GetString("egn")
	sets, _ := cmd.Flags().GetStringArray("set")
	saveSettings, _ := cmd.Flags().GetBool("save-settings")

	// Saved settings fill in whatever the flags left blank.
	saved := settings.Load(cfg.SettingsFile)
	if submitter == "" {
		submitter = saved.SubmitterPerson
	}
	if egn == "" {
		egn = saved.EGN
	}

	overrides := map[string]string{}
	for _, kv := range sets {
		field, value, ok := strings.Cut(kv, "=")
		if !ok || field == "" {
			return fmt.Errorf("invalid --set value %q, expected field=value", kv)
		}
		overrides[field] = value
	}
	if submitter != "" {
		overrides["submitter_person"] = submitter
	}
	if egn != "" {
		overrides["egn"] = egn
	}

	log.Info().
		Str("journal", journalPath).
		Str("templates", cfg.TemplatesDir).
		Int("overrides", len(overrides)).
		Msg("Starting VAT export")

	svc := export.NewService(cfg)
	result, err := svc.Run(context.Background(), export.Options{
		JournalPath: journalPath,
		Overrides:   overrides,
	})
	if err != nil {
		return err
	}

	if saveSettings {
		settings.Save(cfg.SettingsFile, settings.UserSettings{
			SubmitterPerson: submitter,
			EGN:             egn,
		})
	}

	fmt.Printf("Export complete: %s (%s)\n", result.Company.DisplayName, result.Period)
	fmt.Printf("  Documents: %d (sales rows: %d, purchase rows: %d)\n",
		result.Stats.Documents, result.Stats.SalesRows, result.Stats.PurchaseRows)
	fmt.Printf("  Output folder: %s\n", result.OutputFolder)
	for _, f := range result.Files {
		fmt.Printf("    %s\n", f)
	}

	return nil
}
