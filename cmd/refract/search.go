package main

import (
	"github.com/spf13/cobra"

	"github.com/refract-dev/refract"
)

var (
	flagFuzzy         bool
	flagCaseSensitive bool
	flagLimit         int
	flagKind          string
)

var searchCmd = &cobra.Command{
	Use:   "search <query> [path]",
	Short: "Search the symbol index by name",
	Long:  "Looks up symbols by exact name, or by prefix/substring/subsequence ranking with --fuzzy.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&flagFuzzy, "fuzzy", false, "rank prefix, substring, and subsequence matches")
	searchCmd.Flags().BoolVar(&flagCaseSensitive, "case-sensitive", false, "match case exactly")
	searchCmd.Flags().IntVar(&flagLimit, "limit", 0, "maximum results (default 50)")
	searchCmd.Flags().StringVar(&flagKind, "kind", "", "restrict to one symbol kind (e.g. function, class)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	targetDir, err := resolveTargetDir(args[1:])
	if err != nil {
		return outputError("search", err)
	}

	engine, err := openEngine(targetDir)
	if err != nil {
		return outputError("search", err)
	}
	defer engine.Close()

	results, err := engine.Search(args[0], refract.SearchOptions{
		Fuzzy:         flagFuzzy,
		CaseSensitive: flagCaseSensitive,
		MaxResults:    flagLimit,
	})
	if err != nil {
		return outputError("search", err)
	}

	out := make([]CLISearchResult, 0, len(results))
	for _, r := range results {
		if flagKind != "" && string(r.Entry.Symbol.Kind) != flagKind {
			continue
		}
		out = append(out, CLISearchResult{
			CLISymbol: symbolToCLI(r.Entry.Symbol, r.Entry.File.Language),
			Match:     r.Match.String(),
			Score:     r.Score,
		})
	}
	return outputResult(CLIResult{Command: "search", Results: out})
}
