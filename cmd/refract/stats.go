package main

import (
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [path]",
	Short: "Show index totals",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return outputError("stats", err)
	}

	engine, err := openEngine(targetDir)
	if err != nil {
		return outputError("stats", err)
	}
	defer engine.Close()

	stats, err := engine.Stats()
	if err != nil {
		return outputError("stats", err)
	}

	byKind := make(map[string]int, len(stats.SymbolsByKind))
	for kind, n := range stats.SymbolsByKind {
		byKind[string(kind)] = n
	}
	return outputResult(CLIResult{Command: "stats", Results: CLIStats{
		TotalSymbols:  stats.TotalSymbols,
		TotalFiles:    stats.TotalFiles,
		SymbolsByKind: byKind,
	}})
}
