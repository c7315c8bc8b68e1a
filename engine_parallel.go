package refract

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/refract-dev/refract/internal/index"
	"github.com/refract-dev/refract/internal/lang"
	"github.com/refract-dev/refract/internal/syntax"
)

// workItem holds everything a parallel indexing worker needs.
type workItem struct {
	path     string
	language string
	frontend lang.Frontend
	content  []byte
	hash     string

	// Filled by the worker.
	symbols   []*syntax.Symbol
	lineCount int
	failed    bool
}

// indexFilesParallel indexes files with a three-phase pipeline:
//
//	Phase A (serial):   read content, hash check against the store.
//	Phase B (parallel): parse and extract via worker pool.
//	Phase C (serial):   commit to SQLite and the in-memory index.
//
// SQLite writes stay on one goroutine; tree-sitter parsers are created
// per call inside the front ends, so workers never share parser state.
func (e *Engine) indexFilesParallel(ctx context.Context, paths []string) error {
	// ---- Phase A: serial preparation ----
	var items []*workItem
	for _, path := range paths {
		fe := e.frontendFor(path)
		if fe == nil {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("prepare %s: %w", path, err)
		}
		hash := fmt.Sprintf("%x", sha256.Sum256(content))
		existing, err := e.store.FileByPath(path)
		if err != nil {
			return fmt.Errorf("prepare %s: %w", path, err)
		}
		if existing != nil && existing.Hash == hash {
			continue // unchanged
		}
		items = append(items, &workItem{
			path:     path,
			language: fe.Name(),
			frontend: fe,
			content:  content,
			hash:     hash,
		})
	}
	if len(items) == 0 {
		return nil
	}

	// ---- Phase B: parallel extraction ----
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(runtime.NumCPU(), len(items)))

	var mu sync.Mutex
	var failed []error
	for _, item := range items {
		item := item
		g.Go(func() error {
			tree, err := item.frontend.Parse(gctx, item.content, item.path)
			if err != nil {
				mu.Lock()
				failed = append(failed, fmt.Errorf("index %s: %w", item.path, err))
				mu.Unlock()
				item.failed = true
				return nil // keep indexing the rest
			}
			symbols, err := item.frontend.ExtractSymbols(tree)
			if err != nil {
				mu.Lock()
				failed = append(failed, fmt.Errorf("index %s: %w", item.path, err))
				mu.Unlock()
				item.failed = true
				return nil
			}
			item.symbols = symbols
			item.lineCount = bytes.Count(item.content, []byte{'\n'}) + 1
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// ---- Phase C: serial commit ----
	for _, item := range items {
		if item.failed {
			continue
		}
		if err := e.store.ReplaceFileSymbols(item.path, item.language, item.hash, item.lineCount, item.symbols); err != nil {
			return fmt.Errorf("persist %s: %w", item.path, err)
		}
		e.index.ReplaceFile(item.path, item.symbols, index.FileMeta{Path: item.path, Language: item.language})
		e.log.Debug("indexed file", "path", item.path, "language", item.language, "symbols", len(item.symbols))
	}

	if len(failed) > 0 {
		for _, err := range failed {
			e.log.Warn("index file failed", "error", err)
		}
		return fmt.Errorf("indexing had %d error(s): %w", len(failed), failed[0])
	}
	return nil
}
