package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols <file>",
	Short: "List the indexed symbols of a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSymbols,
}

func runSymbols(cmd *cobra.Command, args []string) error {
	file, err := resolveFilePath(args[0])
	if err != nil {
		return outputError("symbols", err)
	}

	engine, err := openEngine(filepath.Dir(file))
	if err != nil {
		return outputError("symbols", err)
	}
	defer engine.Close()

	syms, err := engine.FileSymbols(file)
	if err != nil {
		return outputError("symbols", err)
	}

	language := ""
	if fe, ok := engine.Registry().ForFile(file); ok {
		language = fe.Name()
	}
	out := make([]CLISymbol, 0, len(syms))
	for _, sym := range syms {
		out = append(out, symbolToCLI(sym, language))
	}
	return outputResult(CLIResult{Command: "symbols", Results: out})
}
