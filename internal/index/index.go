// Package index provides the project-wide symbol index: an in-memory,
// mutable collection of symbols keyed by exact name and by owning file,
// with exact and fuzzy search. It is the only component whose state
// outlives a single parse.
package index

import (
	"sync"

	"github.com/refract-dev/refract/internal/syntax"
)

// FileMeta identifies the file owning an indexed symbol.
type FileMeta struct {
	Path     string
	Language string
}

// Entry pairs a symbol with its owning file metadata.
type Entry struct {
	Symbol *syntax.Symbol
	File   FileMeta
}

// Stats summarizes index contents.
type Stats struct {
	TotalSymbols  int
	TotalFiles    int
	SymbolsByKind map[syntax.SymbolKind]int
}

// SymbolIndex is safe for concurrent use: readers take the read lock,
// writers serialize under the write lock, and the name and file maps are
// always updated together so a reader never observes an entry present in
// one and absent in the other.
type SymbolIndex struct {
	mu       sync.RWMutex
	byName   map[string][]*Entry
	byFile   map[string][]*Entry
	byKind   map[syntax.SymbolKind]int
	versions map[string]int
	total    int
}

// New returns an empty index.
func New() *SymbolIndex {
	return &SymbolIndex{
		byName:   make(map[string][]*Entry),
		byFile:   make(map[string][]*Entry),
		byKind:   make(map[syntax.SymbolKind]int),
		versions: make(map[string]int),
	}
}

// Add inserts one symbol. Many symbols may share a name. Symbols with an
// empty name are ignored.
func (x *SymbolIndex) Add(sym *syntax.Symbol, meta FileMeta) {
	if sym == nil || sym.Name == "" {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.add(sym, meta)
	x.versions[meta.Path]++
}

// AddAll inserts a batch of symbols for one file, bumping the file's
// version once.
func (x *SymbolIndex) AddAll(syms []*syntax.Symbol, meta FileMeta) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, sym := range syms {
		if sym == nil || sym.Name == "" {
			continue
		}
		x.add(sym, meta)
	}
	x.versions[meta.Path]++
}

func (x *SymbolIndex) add(sym *syntax.Symbol, meta FileMeta) {
	e := &Entry{Symbol: sym, File: meta}
	x.byName[sym.Name] = append(x.byName[sym.Name], e)
	x.byFile[meta.Path] = append(x.byFile[meta.Path], e)
	x.byKind[sym.Kind]++
	x.total++
}

// Remove deletes the entries matching name owned by filePath. Removing a
// non-existent entry is a no-op.
func (x *SymbolIndex) Remove(name, filePath string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	removed := x.filterOut(x.byName, name, func(e *Entry) bool { return e.File.Path == filePath })
	x.prune(x.byFile, filePath, func(e *Entry) bool { return e.Symbol.Name == name })
	if removed > 0 {
		x.versions[filePath]++
	}
}

// RemoveFile deletes every symbol owned by filePath and returns how many
// were removed. Used on re-parse or file deletion.
func (x *SymbolIndex) RemoveFile(filePath string) int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.removeFile(filePath)
}

func (x *SymbolIndex) removeFile(filePath string) int {
	entries := x.byFile[filePath]
	if len(entries) == 0 {
		return 0
	}
	for _, e := range entries {
		x.filterOut(x.byName, e.Symbol.Name, func(cand *Entry) bool { return cand == e })
	}
	delete(x.byFile, filePath)
	x.versions[filePath]++
	return len(entries)
}

// filterOut removes entries under key matching the predicate, maintaining
// the kind counters and total. Returns the number removed. Each logical
// entry lives in both byName and byFile, so exactly one of the two passes
// of a removal goes through filterOut; the other uses prune.
func (x *SymbolIndex) filterOut(m map[string][]*Entry, key string, match func(*Entry) bool) int {
	entries := m[key]
	if len(entries) == 0 {
		return 0
	}
	kept := entries[:0]
	removed := 0
	for _, e := range entries {
		if match(e) {
			x.byKind[e.Symbol.Kind]--
			x.total--
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) == 0 {
		delete(m, key)
	} else {
		m[key] = kept
	}
	return removed
}

// prune removes entries under key matching the predicate without touching
// the counters, for the second map of a removal already accounted for by
// filterOut.
func (x *SymbolIndex) prune(m map[string][]*Entry, key string, match func(*Entry) bool) {
	entries := m[key]
	if len(entries) == 0 {
		return
	}
	kept := entries[:0]
	for _, e := range entries {
		if !match(e) {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		delete(m, key)
	} else {
		m[key] = kept
	}
}

// Update replaces the entries for the symbol's name in its file with the
// given symbol: remove-then-add for that name/file pair, leaving unrelated
// symbols untouched.
func (x *SymbolIndex) Update(sym *syntax.Symbol, meta FileMeta) {
	if sym == nil || sym.Name == "" {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.filterOut(x.byName, sym.Name, func(e *Entry) bool { return e.File.Path == meta.Path })
	x.prune(x.byFile, meta.Path, func(e *Entry) bool { return e.Symbol.Name == sym.Name })
	x.add(sym, meta)
	x.versions[meta.Path]++
}

// ReplaceFile atomically swaps every symbol owned by filePath for the given
// batch, as one write. Used when a file is re-parsed.
func (x *SymbolIndex) ReplaceFile(filePath string, syms []*syntax.Symbol, meta FileMeta) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.removeFile(filePath)
	for _, sym := range syms {
		if sym == nil || sym.Name == "" {
			continue
		}
		x.add(sym, meta)
	}
}

// Find returns the symbols with exactly the given name, across all files.
func (x *SymbolIndex) Find(name string) []*syntax.Symbol {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return symbolsOf(x.byName[name])
}

// FindByKind returns every symbol of the given kind.
func (x *SymbolIndex) FindByKind(kind syntax.SymbolKind) []*syntax.Symbol {
	x.mu.RLock()
	defer x.mu.RUnlock()
	var out []*syntax.Symbol
	for _, entries := range x.byFile {
		for _, e := range entries {
			if e.Symbol.Kind == kind {
				out = append(out, e.Symbol)
			}
		}
	}
	return out
}

// FileSymbols returns the symbols owned by filePath.
func (x *SymbolIndex) FileSymbols(filePath string) []*syntax.Symbol {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return symbolsOf(x.byFile[filePath])
}

// SymbolsInScope returns the symbols of filePath whose recorded scope is
// identical to the given scope ID. Scope identity is per parse, so the
// owning file disambiguates.
func (x *SymbolIndex) SymbolsInScope(filePath string, scope syntax.ScopeID) []*syntax.Symbol {
	x.mu.RLock()
	defer x.mu.RUnlock()
	var out []*syntax.Symbol
	for _, e := range x.byFile[filePath] {
		if e.Symbol.Scope == scope {
			out = append(out, e.Symbol)
		}
	}
	return out
}

// Version returns the current version counter for filePath; versions
// increment on every mutation touching the file.
func (x *SymbolIndex) Version(filePath string) int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.versions[filePath]
}

// Stats returns current totals.
func (x *SymbolIndex) Stats() Stats {
	x.mu.RLock()
	defer x.mu.RUnlock()
	byKind := make(map[syntax.SymbolKind]int, len(x.byKind))
	for k, n := range x.byKind {
		if n > 0 {
			byKind[k] = n
		}
	}
	return Stats{TotalSymbols: x.total, TotalFiles: len(x.byFile), SymbolsByKind: byKind}
}

// Clear removes everything, including version counters.
func (x *SymbolIndex) Clear() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.byName = make(map[string][]*Entry)
	x.byFile = make(map[string][]*Entry)
	x.byKind = make(map[syntax.SymbolKind]int)
	x.versions = make(map[string]int)
	x.total = 0
}

func symbolsOf(entries []*Entry) []*syntax.Symbol {
	if len(entries) == 0 {
		return nil
	}
	out := make([]*syntax.Symbol, len(entries))
	for i, e := range entries {
		out[i] = e.Symbol
	}
	return out
}
