package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	flagInlineWrite bool
	flagCheckOnly   bool
)

var inlineCmd = &cobra.Command{
	Use:   "inline <file> <line> <col>",
	Short: "Inline the function declared at a position",
	Long:  "Substitutes the function's body into every call site and removes the declaration. The safety gate refuses functions with side effects, too many call sites, high complexity, or recursion; a refusal lists its reasons and plans no edits.",
	Args:  cobra.ExactArgs(3),
	RunE:  runInline,
}

func init() {
	inlineCmd.Flags().BoolVar(&flagInlineWrite, "write", false, "apply the edits to disk")
	inlineCmd.Flags().BoolVar(&flagCheckOnly, "check", false, "run only the safety gate and report its verdict")
}

func runInline(cmd *cobra.Command, args []string) error {
	file, err := resolveFilePath(args[0])
	if err != nil {
		return outputError("inline", err)
	}
	line, col, err := parsePosition(args[1], args[2])
	if err != nil {
		return outputError("inline", err)
	}

	engine, err := openEngine(filepath.Dir(file))
	if err != nil {
		return outputError("inline", err)
	}
	defer engine.Close()

	ctx := context.Background()

	if flagCheckOnly {
		reasons, err := engine.CanInlineAt(ctx, file, line, col)
		if err != nil {
			return outputError("inline", err)
		}
		return outputResult(CLIResult{Command: "inline", Results: CLIRefactor{
			Success: len(reasons) == 0,
			Errors:  reasons,
		}})
	}

	result, err := engine.InlineAt(ctx, file, line, col)
	if err != nil {
		return outputError("inline", err)
	}

	applied := false
	if result.Success && flagInlineWrite {
		if err := writeEdits(result.Edits); err != nil {
			return outputError("inline", err)
		}
		if err := engine.IndexFiles(ctx, []string{file}); err != nil {
			return outputError("inline", err)
		}
		applied = true
	}
	return outputResult(CLIResult{Command: "inline", Results: CLIRefactor{
		Success:  result.Success,
		Applied:  applied,
		Edits:    editsToCLI(result.Edits),
		Errors:   result.Errors,
		Warnings: result.Warnings,
	}})
}
