package refract

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/refract-dev/refract/internal/index"
	"github.com/refract-dev/refract/internal/lang"
	"github.com/refract-dev/refract/internal/refactor"
	"github.com/refract-dev/refract/internal/resolve"
	"github.com/refract-dev/refract/internal/store"
	"github.com/refract-dev/refract/internal/syntax"
)

// skipDirs are directory names never descended into during discovery.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
}

// Engine orchestrates the refract pipeline: file discovery, change
// detection, parsing through language front ends, symbol indexing, and
// the rename and inline refactoring planners.
type Engine struct {
	store    *store.Store
	index    *index.SymbolIndex
	registry *lang.Registry
	cfg      *Config
	log      *slog.Logger

	languages map[string]bool // nil means all languages

	// useParallel enables the worker-pool indexing pipeline.
	useParallel bool

	// loaded tracks whether the in-memory index has been hydrated from
	// the store. Guarded by loadMu; indexing marks it true as a side
	// effect since a fresh index pass supersedes hydration.
	loadMu sync.Mutex
	loaded bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLanguages restricts which languages the Engine will process.
func WithLanguages(languages ...string) Option {
	return func(e *Engine) {
		e.languages = make(map[string]bool, len(languages))
		for _, l := range languages {
			e.languages[l] = true
		}
	}
}

// WithParallel controls parallel indexing. When true (default), IndexFiles
// parses and extracts with a worker pool and commits results serially. Set
// to false for serial mode.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// WithConfig supplies a loaded project configuration. Without it the Engine
// runs on defaults.
func WithConfig(cfg *Config) Option {
	return func(e *Engine) {
		if cfg != nil {
			e.cfg = cfg
		}
	}
}

// WithRegistry replaces the built-in front-end registry, letting callers
// add or substitute languages.
func WithRegistry(reg *lang.Registry) Option {
	return func(e *Engine) {
		if reg != nil {
			e.registry = reg
		}
	}
}

// WithLogger sets the structured logger used for diagnostics. The default
// discards everything below warning.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New creates an Engine backed by a SQLite database at dbPath.
func New(dbPath string, opts ...Option) (*Engine, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("refract: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("refract: migrate: %w", err)
	}

	e := &Engine{
		store:       s,
		index:       index.New(),
		registry:    lang.NewRegistry(),
		cfg:         DefaultConfig(),
		log:         slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
		useParallel: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.languages == nil && len(e.cfg.Languages) > 0 {
		e.languages = make(map[string]bool, len(e.cfg.Languages))
		for _, l := range e.cfg.Languages {
			e.languages[l] = true
		}
	}
	return e, nil
}

// Close releases the database and the tree-sitter front ends.
func (e *Engine) Close() error {
	e.registry.Dispose()
	return e.store.Close()
}

// Store returns the underlying SQLite store for direct access.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Index returns the in-memory symbol index.
func (e *Engine) Index() *index.SymbolIndex {
	return e.index
}

// Registry returns the language front-end registry.
func (e *Engine) Registry() *lang.Registry {
	return e.registry
}

// ensureLoaded hydrates the in-memory index from the store once per Engine.
func (e *Engine) ensureLoaded() error {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()
	if e.loaded {
		return nil
	}
	if err := e.store.LoadIndex(e.index); err != nil {
		return fmt.Errorf("refract: load index: %w", err)
	}
	e.loaded = true
	return nil
}

// markLoaded records that the index reflects current state without a
// hydration pass (a full index run just wrote it).
func (e *Engine) markLoaded() {
	e.loadMu.Lock()
	e.loaded = true
	e.loadMu.Unlock()
}

// frontendFor returns the front end claiming path's extension, or nil when
// the file is unsupported or filtered out by the language restriction.
func (e *Engine) frontendFor(path string) lang.Frontend {
	fe, ok := e.registry.ForFile(path)
	if !ok {
		return nil
	}
	if e.languages != nil && !e.languages[fe.Name()] {
		return nil
	}
	return fe
}

// ParseFile reads and parses a single file through its front end, returning
// the normalized tree and its extracted symbols. The tree is not cached;
// refactoring always works against fresh source.
func (e *Engine) ParseFile(ctx context.Context, path string) (*syntax.Tree, []*syntax.Symbol, error) {
	fe := e.frontendFor(path)
	if fe == nil {
		return nil, nil, fmt.Errorf("refract: %s: unsupported file: %w", path, ErrInvalidArgument)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("refract: read file: %w", err)
	}
	tree, err := fe.Parse(ctx, content, path)
	if err != nil {
		return nil, nil, fmt.Errorf("refract: parse %s: %w", path, err)
	}
	symbols, err := fe.ExtractSymbols(tree)
	if err != nil {
		return nil, nil, fmt.Errorf("refract: extract %s: %w", path, err)
	}
	return tree, symbols, nil
}

// IndexFiles indexes the given paths, skipping unsupported and unchanged
// files. Parallel mode is used unless disabled via WithParallel(false).
func (e *Engine) IndexFiles(ctx context.Context, paths []string) error {
	defer e.markLoaded()
	if e.useParallel {
		return e.indexFilesParallel(ctx, paths)
	}
	return e.indexFilesSerial(ctx, paths)
}

func (e *Engine) indexFilesSerial(ctx context.Context, paths []string) error {
	var errs []error
	for _, path := range paths {
		if err := e.indexFile(ctx, path); err != nil {
			e.log.Warn("index file failed", "path", path, "error", err)
			errs = append(errs, fmt.Errorf("index %s: %w", path, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("indexing had %d error(s): %w", len(errs), errs[0])
	}
	return nil
}

func (e *Engine) indexFile(ctx context.Context, path string) error {
	fe := e.frontendFor(path)
	if fe == nil {
		return nil // unsupported extension or filtered out
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	hash := fmt.Sprintf("%x", sha256.Sum256(content))

	existing, err := e.store.FileByPath(path)
	if err != nil {
		return fmt.Errorf("lookup file: %w", err)
	}
	if existing != nil && existing.Hash == hash {
		return nil // unchanged
	}

	tree, err := fe.Parse(ctx, content, path)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	symbols, err := fe.ExtractSymbols(tree)
	if err != nil {
		return fmt.Errorf("extract symbols: %w", err)
	}

	lineCount := bytes.Count(content, []byte{'\n'}) + 1
	if err := e.store.ReplaceFileSymbols(path, fe.Name(), hash, lineCount, symbols); err != nil {
		return fmt.Errorf("persist symbols: %w", err)
	}
	e.index.ReplaceFile(path, symbols, index.FileMeta{Path: path, Language: fe.Name()})
	e.log.Debug("indexed file", "path", path, "language", fe.Name(), "symbols", len(symbols))
	return nil
}

// IndexDirectory discovers supported files under root (honoring .gitignore
// and the configured ignore list) and indexes them.
func (e *Engine) IndexDirectory(ctx context.Context, root string) error {
	paths, err := e.listFiles(root)
	if err != nil {
		return err
	}
	return e.IndexFiles(ctx, paths)
}

// listFiles walks root collecting files with a registered front end. Hidden
// directories and the built-in skip list are pruned; a .gitignore at root is
// honored when present.
func (e *Engine) listFiles(root string) ([]string, error) {
	var matcher *gitignore.GitIgnore
	if m, err := gitignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		matcher = m
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			if matcher != nil && path != root && matcher.MatchesPath(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher != nil && matcher.MatchesPath(rel) {
			return nil
		}
		if e.cfg.ignored(rel) {
			return nil
		}
		if e.frontendFor(path) != nil {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}

// RemoveFile drops a file from the index and the store, for deletions
// observed by the watcher or reported by callers.
func (e *Engine) RemoveFile(path string) error {
	e.index.RemoveFile(path)
	if err := e.store.DeleteFile(path); err != nil {
		return fmt.Errorf("refract: remove %s: %w", path, err)
	}
	return nil
}

// Search queries the symbol index. The index is hydrated from the store on
// first use.
func (e *Engine) Search(query string, opts index.SearchOptions) ([]index.SearchResult, error) {
	if err := e.ensureLoaded(); err != nil {
		return nil, err
	}
	return e.index.Search(query, opts), nil
}

// Find returns all indexed symbols with the exact name.
func (e *Engine) Find(name string) ([]*syntax.Symbol, error) {
	if err := e.ensureLoaded(); err != nil {
		return nil, err
	}
	return e.index.Find(name), nil
}

// FileSymbols returns the indexed symbols of one file in document order.
func (e *Engine) FileSymbols(path string) ([]*syntax.Symbol, error) {
	if err := e.ensureLoaded(); err != nil {
		return nil, err
	}
	return e.index.FileSymbols(path), nil
}

// Stats reports index-wide totals.
func (e *Engine) Stats() (index.Stats, error) {
	if err := e.ensureLoaded(); err != nil {
		return index.Stats{}, err
	}
	return e.index.Stats(), nil
}

// ReferencesAt resolves the symbol at a 0-based line/column position and
// returns every reference to it in the file, classified and in document
// order.
func (e *Engine) ReferencesAt(ctx context.Context, path string, line, col int) ([]*syntax.Reference, error) {
	tree, symbols, err := e.ParseFile(ctx, path)
	if err != nil {
		return nil, err
	}
	pos := syntax.Position{Line: line, Column: col}
	sym, err := resolve.SymbolAt(tree, symbols, pos)
	if err != nil {
		return nil, err
	}
	return resolve.References(tree, sym), nil
}

// RenameAt plans a rename of the symbol at a 0-based line/column position.
// The returned edits cover every reference or none; nothing is written to
// disk.
func (e *Engine) RenameAt(ctx context.Context, path string, line, col int, newName string) ([]syntax.CodeEdit, error) {
	tree, symbols, err := e.ParseFile(ctx, path)
	if err != nil {
		return nil, err
	}
	pos := syntax.Position{Line: line, Column: col}
	return refactor.Rename(tree, symbols, pos, newName)
}

// CanInlineAt runs only the inline safety gate for the function at a
// position, returning the rejection reasons (empty when inlining is safe).
func (e *Engine) CanInlineAt(ctx context.Context, path string, line, col int) ([]string, error) {
	tree, symbols, err := e.ParseFile(ctx, path)
	if err != nil {
		return nil, err
	}
	pos := syntax.Position{Line: line, Column: col}
	return refactor.CanInline(tree, symbols, pos, e.cfg.inlineOptions())
}

// InlineAt plans inlining the function declared at a 0-based line/column
// position into its call sites. An unsafe inline yields a result with
// Success false and the gate's reasons, not an error.
func (e *Engine) InlineAt(ctx context.Context, path string, line, col int) (*refactor.InlineResult, error) {
	tree, symbols, err := e.ParseFile(ctx, path)
	if err != nil {
		return nil, err
	}
	pos := syntax.Position{Line: line, Column: col}
	return refactor.Inline(tree, symbols, pos, e.cfg.inlineOptions())
}

// ApplyEdits splices an edit plan into source text, returning the rewritten
// bytes. Edits are applied back to front so earlier offsets stay valid; it
// is the helper the CLI uses for --write.
func ApplyEdits(src []byte, edits []syntax.CodeEdit) ([]byte, error) {
	sorted := make([]syntax.CodeEdit, len(edits))
	copy(sorted, edits)
	refactor.SortEdits(sorted)

	out := append([]byte(nil), src...)
	for i := len(sorted) - 1; i >= 0; i-- {
		ed := sorted[i]
		start, end := ed.Range.Start.Offset, ed.Range.End.Offset
		if start < 0 || end < start || end > len(out) {
			return nil, fmt.Errorf("refract: edit out of bounds [%d:%d): %w", start, end, ErrInvalidArgument)
		}
		out = append(out[:start], append([]byte(ed.NewText), out[end:]...)...)
	}
	return out, nil
}

// touch bumps a file's last-indexed timestamp; used by the watcher to record
// rescans that found no content change.
func (e *Engine) touch(path string) {
	_, _ = e.store.DB().Exec("UPDATE files SET last_indexed = ? WHERE path = ?", time.Now(), path)
}
