// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/release-resolver/internal/ledger"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the resolution ledger",
}

var ledgerExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored resolutions as YAML or JSON",
	Long: `Export writes every resolution stored in the ledger (or those of one
ticker) to stdout.`,
	RunE: runLedgerExport,
}

func runLedgerExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	ticker, _ := cmd.Flags().GetString("ticker")

	path, _ := cmd.Flags().GetString("ledger")
	if path == "" {
		path = viper.GetString("batch.ledger_path")
	}
	if path == "" {
		return fmt.Errorf("no ledger configured: pass --ledger or set batch.ledger_path")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("ledger %s: %w", path, err)
	}

	store, err := ledger.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Export(cmd.Context(), os.Stdout, format, ticker)
}

func init() {
	ledgerCmd.PersistentFlags().String("ledger", "", "ledger database path (default: batch.ledger_path)")

	ledgerExportCmd.Flags().String("format", ledger.FormatYAML, "export format: yaml or json")
	ledgerExportCmd.Flags().String("ticker", "", "only export this ticker")

	ledgerCmd.AddCommand(ledgerExportCmd)
	rootCmd.AddCommand(ledgerCmd)
}
