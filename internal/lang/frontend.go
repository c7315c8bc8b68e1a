// Package lang contains the per-language front ends: tree-sitter parsers
// that turn source text into the normalized AST and initial symbol list the
// engines operate on. The engines never depend on which front end supplied
// a tree.
package lang

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/refract-dev/refract/internal/syntax"
)

// Report is the result of a front end self-check.
type Report struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// Frontend is the capability set every supported language implements:
// parse, extract-symbols, validate, dispose.
type Frontend interface {
	// Name is the canonical language name ("javascript", "go", ...).
	Name() string
	// Extensions lists the file extensions the front end claims, with dots.
	Extensions() []string
	// Parse turns source code into a normalized tree. Positions are 0-based
	// line/column with byte offsets.
	Parse(ctx context.Context, code []byte, filePath string) (*syntax.Tree, error)
	// ExtractSymbols produces the initial symbol list for a parsed tree,
	// building the tree's scope table as a side effect.
	ExtractSymbols(tree *syntax.Tree) ([]*syntax.Symbol, error)
	// Validate checks the front end is usable (grammar loaded).
	Validate() Report
	// Dispose releases parser resources. The front end is unusable after.
	Dispose()
}

// Registry maps languages and file extensions to front ends. Registries are
// explicitly constructed and passed by reference so tests can instantiate
// independent ones; there is no process-wide registry.
type Registry struct {
	byName map[string]Frontend
	byExt  map[string]Frontend
}

// NewRegistry returns a registry with the built-in front ends installed:
// javascript, typescript, go, python.
func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]Frontend),
		byExt:  make(map[string]Frontend),
	}
	r.Register(NewJavaScript())
	r.Register(NewTypeScript())
	r.Register(NewGo())
	r.Register(NewPython())
	return r
}

// Register installs a front end, replacing any previous claim on its name
// and extensions.
func (r *Registry) Register(f Frontend) {
	r.byName[f.Name()] = f
	for _, ext := range f.Extensions() {
		r.byExt[strings.ToLower(ext)] = f
	}
}

// ForFile returns the front end claiming the file's extension.
func (r *Registry) ForFile(path string) (Frontend, bool) {
	f, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// ForLanguage returns the front end with the given canonical name.
func (r *Registry) ForLanguage(name string) (Frontend, bool) {
	f, ok := r.byName[name]
	return f, ok
}

// Languages lists the registered language names, sorted.
func (r *Registry) Languages() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispose releases every registered front end.
func (r *Registry) Dispose() {
	for _, f := range r.byName {
		f.Dispose()
	}
}
