package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/refract-dev/refract"
)

var (
	flagForce     bool
	flagLanguages string
	flagSerial    bool
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a project for symbol search and refactoring",
	Long:  "Parses source files with tree-sitter front ends, extracts symbols, and writes the index to the SQLite database.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&flagForce, "force", false, "delete database and reindex from scratch")
	indexCmd.Flags().StringVar(&flagLanguages, "languages", "", "comma-separated language filter (e.g. go,typescript)")
	indexCmd.Flags().BoolVar(&flagSerial, "serial", false, "disable the parallel indexing pipeline")
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}

	if flagForce {
		dbPath := resolveDBPath(findRepoRoot(targetDir))
		if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing database for --force: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Cleared database: %s\n", dbPath)
	}

	var opts []refract.Option
	if flagLanguages != "" {
		langs := strings.Split(flagLanguages, ",")
		for i := range langs {
			langs[i] = strings.TrimSpace(langs[i])
		}
		opts = append(opts, refract.WithLanguages(langs...))
	}
	if flagSerial {
		opts = append(opts, refract.WithParallel(false))
	}

	engine, err := openEngine(targetDir, opts...)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer engine.Close()

	if err := engine.IndexDirectory(context.Background(), targetDir); err != nil {
		return fmt.Errorf("indexing: %w", err)
	}

	stats, err := engine.Stats()
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Indexed %s in %s (%d files, %d symbols)\n",
		targetDir, time.Since(start).Round(time.Millisecond), stats.TotalFiles, stats.TotalSymbols)
	return nil
}
