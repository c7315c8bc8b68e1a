package refract

import (
	"github.com/refract-dev/refract/internal/index"
	"github.com/refract-dev/refract/internal/lang"
	"github.com/refract-dev/refract/internal/refactor"
	"github.com/refract-dev/refract/internal/syntax"
)

// Public type aliases for the internal data-model types used in the Engine
// API. These are Go type aliases (=) — identical to the internal types at
// compile time, so external consumers use these names with no conversion.

type Position = syntax.Position
type Range = syntax.Range
type Location = syntax.Location
type Scope = syntax.Scope
type ScopeID = syntax.ScopeID
type Symbol = syntax.Symbol
type SymbolKind = syntax.SymbolKind
type Reference = syntax.Reference
type CodeEdit = syntax.CodeEdit
type EditKind = syntax.EditKind

type Frontend = lang.Frontend
type Registry = lang.Registry

type SymbolIndex = index.SymbolIndex
type SearchOptions = index.SearchOptions
type SearchResult = index.SearchResult
type IndexStats = index.Stats
type FileMeta = index.FileMeta

type InlineOptions = refactor.InlineOptions
type InlineResult = refactor.InlineResult

// Error taxonomy re-exports; test with errors.Is.
var (
	ErrInvalidArgument   = syntax.ErrInvalidArgument
	ErrSymbolNotFound    = syntax.ErrSymbolNotFound
	ErrInvalidIdentifier = syntax.ErrInvalidIdentifier
	ErrInvariant         = syntax.ErrInvariant
)
