package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/refract-dev/refract"
)

var flagWrite bool

var renameCmd = &cobra.Command{
	Use:   "rename <file> <line> <col> <new-name>",
	Short: "Rename the symbol at a position",
	Long:  "Plans a rename of the symbol at the 1-based line:col position across all of its references. Without --write the plan is printed and nothing changes on disk.",
	Args:  cobra.ExactArgs(4),
	RunE:  runRename,
}

func init() {
	renameCmd.Flags().BoolVar(&flagWrite, "write", false, "apply the edits to disk")
}

func runRename(cmd *cobra.Command, args []string) error {
	file, err := resolveFilePath(args[0])
	if err != nil {
		return outputError("rename", err)
	}
	line, col, err := parsePosition(args[1], args[2])
	if err != nil {
		return outputError("rename", err)
	}
	newName := args[3]

	engine, err := openEngine(filepath.Dir(file))
	if err != nil {
		return outputError("rename", err)
	}
	defer engine.Close()

	ctx := context.Background()
	edits, err := engine.RenameAt(ctx, file, line, col, newName)
	if err != nil {
		return outputError("rename", err)
	}

	applied := false
	if flagWrite {
		if err := writeEdits(edits); err != nil {
			return outputError("rename", err)
		}
		// The file changed; bring the index up to date.
		if err := engine.IndexFiles(ctx, []string{file}); err != nil {
			return outputError("rename", err)
		}
		applied = true
	}
	return outputResult(CLIResult{Command: "rename", Results: CLIRefactor{
		Success: true,
		Applied: applied,
		Edits:   editsToCLI(edits),
	}})
}

// writeEdits applies an edit plan to the files it names. Edits are grouped
// per file and spliced in one pass, so a plan either lands fully or the
// failing file is reported before anything later is touched.
func writeEdits(edits []refract.CodeEdit) error {
	byFile := make(map[string][]refract.CodeEdit)
	var order []string
	for _, ed := range edits {
		if _, ok := byFile[ed.FilePath]; !ok {
			order = append(order, ed.FilePath)
		}
		byFile[ed.FilePath] = append(byFile[ed.FilePath], ed)
	}
	for _, path := range order {
		if err := applyToFile(path, byFile[path]); err != nil {
			return err
		}
	}
	return nil
}

func applyToFile(path string, edits []refract.CodeEdit) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	out, err := refract.ApplyEdits(src, edits)
	if err != nil {
		return fmt.Errorf("apply edits to %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
