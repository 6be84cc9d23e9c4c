//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
	pw "github.com/playwright-community/playwright-go"
)

// Resolve builds the CLI and runs a batch: mage resolve data/input/feed.csv data/output/feed.csv
func Resolve(input, output string) error {
	mg.Deps(Build)
	bin := filepath.Join(binDir, binName)
	return sh.RunV(bin, "run", input, output, "--summary", "state/last-run.yaml", "--ledger", "state/ledger.db")
}

// Browsers installs the Chromium build used by the headless-browser site
// search (run --browser).
func Browsers() error {
	if err := pw.Install(&pw.RunOptions{Browsers: []string{"chromium"}}); err != nil {
		return fmt.Errorf("installing playwright browsers: %w", err)
	}
	fmt.Println("Chromium installed.")
	return nil
}
