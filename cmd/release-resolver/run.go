// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/release-resolver/internal/batch"
)

var runCmd = &cobra.Command{
	Use:   "run <input.csv> <output.csv>",
	Short: "Resolve every row of an input feed",
	Long: `Run reads feed rows (ticker, date, headline) from the input CSV and appends
one output row per input row with the official release timestamp, or an empty
timestamp when no release was confirmed.

The output file is the checkpoint: rerunning with the same output skips the
rows already written and continues with the next one. Interrupting a run
(Ctrl-C) stops after the current row without writing it.`,
	Args: cobra.ExactArgs(2),
	RunE: runBatch,
}

func init() {
	runCmd.Flags().Duration("row-delay", 0, "pause between rows (default 4s)")
	runCmd.Flags().String("field-order", "", "input column order: ticker-date or date-ticker")
	runCmd.Flags().Bool("skip-header", false, "ignore the first input record")
	runCmd.Flags().String("ledger", "", "SQLite ledger of accepted resolutions (disabled when empty)")
	runCmd.Flags().String("summary", "", "write a YAML run summary to this path")
	runCmd.Flags().Bool("browser", false, "add the headless-browser site search provider")

	viper.BindPFlag("batch.row_delay", runCmd.Flags().Lookup("row-delay"))
	viper.BindPFlag("batch.field_order", runCmd.Flags().Lookup("field-order"))
	viper.BindPFlag("batch.skip_header", runCmd.Flags().Lookup("skip-header"))
	viper.BindPFlag("batch.ledger_path", runCmd.Flags().Lookup("ledger"))
	viper.BindPFlag("batch.summary_path", runCmd.Flags().Lookup("summary"))
	viper.BindPFlag("search.enable_browser", runCmd.Flags().Lookup("browser"))

	rootCmd.AddCommand(runCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	inputPath, outputPath := args[0], args[1]

	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("%w: %s", batch.ErrInputMissing, inputPath)
	}

	cfg := loadConfig()
	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proc := &batch.Processor{
		Resolver: p.resolver,
		Config:   cfg.Batch,
		Logger:   logger,
	}
	result, err := proc.Run(ctx, inputPath, outputPath)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, result)
	return nil
}
