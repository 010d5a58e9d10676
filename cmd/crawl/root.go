// Package main wires the cobra command tree for the crawl binary:
// persistent flags are read into package-level vars and merged with
// config.Settings at Run time.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "duskcrawl",
	Short: "A concurrent, scope-aware web crawler.",
	Long: `duskcrawl crawls a set of seed URLs under an explicit scope of
included and excluded hostname patterns, respecting per-host rate
limits and an overall page budget, and records one page record per
attempted fetch.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func init() {
	rootCmd.AddCommand(newCrawlCmd())
	rootCmd.AddCommand(newResumeCmd())
	rootCmd.AddCommand(newScopeTestCmd())
}
