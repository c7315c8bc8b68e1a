package store

import "time"

// File is one indexed source file.
type File struct {
	ID          int64
	Path        string
	Language    string
	Hash        string
	LineCount   int
	Version     int
	LastIndexed time.Time
}

// SymbolRow is the persisted form of a symbol. Scope identity and
// declaration-node handles are per-parse and are not persisted; hydrated
// symbols carry neither.
type SymbolRow struct {
	ID          int64
	FileID      int64
	Name        string
	Kind        string
	Modifiers   []string
	StartLine   int
	StartCol    int
	StartOffset int
	EndLine     int
	EndCol      int
	EndOffset   int
}
