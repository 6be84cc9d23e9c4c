// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/release-resolver/pkg/types"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Resolve a single release",
	Long: `Lookup resolves one (ticker, date, headline) triple and prints the accepted
release URL and timestamp. Use --log-level debug to see each provider and
candidate tried.`,
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().String("ticker", "", "ticker symbol")
	lookupCmd.Flags().String("date", "", "feed date (MM/DD/YYYY or YYYY-MM-DD)")
	lookupCmd.Flags().String("headline", "", "release headline")
	lookupCmd.Flags().Bool("json", false, "output the result as JSON")
	lookupCmd.MarkFlagRequired("headline")

	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	ticker, _ := cmd.Flags().GetString("ticker")
	date, _ := cmd.Flags().GetString("date")
	headline, _ := cmd.Flags().GetString("headline")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	p, err := newPipeline(loadConfig())
	if err != nil {
		return err
	}
	defer p.Close()

	row := types.FeedRow{Ticker: ticker, FeedDate: date, Headline: headline}
	info, err := p.resolver.Resolve(cmd.Context(), row)
	if err != nil {
		return err
	}
	return formatLookupOutput(row, info, jsonOutput)
}

func formatLookupOutput(row types.FeedRow, info types.PRInfo, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			types.FeedRow
			Found bool `json:"found"`
			types.PRInfo
		}{row, info.Found(), info})
	}

	if !info.Found() {
		fmt.Println("No matching release found.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "%-10s  %s\n", "URL", info.URL)
	fmt.Fprintf(os.Stdout, "%-10s  %s\n", "Raw", info.RawTimestamp)
	fmt.Fprintf(os.Stdout, "%-10s  %s\n", "Timestamp", info.ISOTimestamp)
	return nil
}
