package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/duskcrawl/webcrawler/internal/scope"
	"github.com/duskcrawl/webcrawler/internal/urlcanon"
)

var (
	flagScopeTestIn   []string
	flagScopeTestOut  []string
	flagScopeTestURLs []string
)

func newScopeTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scope-test",
		Short: "Evaluate a set of test URLs against an include/exclude scope without crawling",
		RunE:  runScopeTest,
	}
	cmd.Flags().StringArrayVar(&flagScopeTestIn, "in-scope", nil, "hostname include pattern, may repeat")
	cmd.Flags().StringArrayVar(&flagScopeTestOut, "out-scope", nil, "hostname exclude pattern, may repeat")
	cmd.Flags().StringArrayVar(&flagScopeTestURLs, "test-urls", nil, "URL to evaluate, may repeat")
	return cmd
}

func runScopeTest(cmd *cobra.Command, args []string) error {
	if len(flagScopeTestURLs) == 0 {
		return withExitCode(exitUsageError, fmt.Errorf("scope-test: at least one --test-urls is required"))
	}

	s := scope.NewSet()
	for _, p := range flagScopeTestIn {
		s.AddInclude(p)
	}
	for _, p := range flagScopeTestOut {
		s.AddExclude(p)
	}

	for _, raw := range flagScopeTestURLs {
		canonical, err := urlcanon.Normalize(raw)
		if err != nil {
			fmt.Printf("%s\tINVALID\tcould not canonicalize url\n", raw)
			continue
		}
		host := urlcanon.Hostname(canonical)
		exp := s.Explain(host)
		fmt.Printf("%s\t%s\tincludes=%v excludes=%v\n", raw, exp.Decision, exp.MatchedIncludes, exp.MatchedExcludes)
	}
	return nil
}
