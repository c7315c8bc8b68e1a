package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a project and keep the index up to date",
	Long:  "Performs an initial index pass, then re-indexes files as they change and prunes deleted files. Runs until interrupted.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}

	engine, err := openEngine(targetDir)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer engine.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := engine.IndexDirectory(ctx, targetDir); err != nil {
		return fmt.Errorf("initial index: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Watching %s (ctrl-c to stop)\n", targetDir)

	if err := engine.Watch(ctx, targetDir); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
