package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"
)

var refsCmd = &cobra.Command{
	Use:   "refs <file> <line> <col>",
	Short: "List references to the symbol at a position",
	Long:  "Resolves the identifier at the 1-based line:col position to its declaring symbol and lists every occurrence in the file, classified as definition, declaration, or usage.",
	Args:  cobra.ExactArgs(3),
	RunE:  runRefs,
}

func runRefs(cmd *cobra.Command, args []string) error {
	file, err := resolveFilePath(args[0])
	if err != nil {
		return outputError("refs", err)
	}
	line, col, err := parsePosition(args[1], args[2])
	if err != nil {
		return outputError("refs", err)
	}

	engine, err := openEngine(filepath.Dir(file))
	if err != nil {
		return outputError("refs", err)
	}
	defer engine.Close()

	refs, err := engine.ReferencesAt(context.Background(), file, line, col)
	if err != nil {
		return outputError("refs", err)
	}

	out := make([]CLIReference, 0, len(refs))
	for _, ref := range refs {
		out = append(out, referenceToCLI(ref))
	}
	return outputResult(CLIResult{Command: "refs", Results: out})
}
