package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"vatex/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "vatex",
	Short: "vatex - VAT register and declaration exporter",
	Long: `vatex converts a general-ledger export into the two VAT registers
(sales and purchases) and the summary declaration required for submission
to the revenue agency, in its fixed-width text format.

Input is the journal items export (CSV or XLSX); schemas and mapping
tables are plain JSON files in the templates directory and can be adjusted
without rebuilding the tool.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Use 'vatex export <journal-file>' to run an export.")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
