package syntax

import "fmt"

// SymbolKind is the closed enumeration of declaration kinds.
type SymbolKind string

const (
	SymbolClass     SymbolKind = "class"
	SymbolInterface SymbolKind = "interface"
	SymbolFunction  SymbolKind = "function"
	SymbolVariable  SymbolKind = "variable"
	SymbolConstant  SymbolKind = "constant"
	SymbolType      SymbolKind = "type"
	SymbolEnum      SymbolKind = "enum"
	SymbolModule    SymbolKind = "module"
	SymbolNamespace SymbolKind = "namespace"
)

// IsTypeLike reports whether the kind names a type declaration. Type-like
// symbols resolve file-globally rather than through the lexical scope chain.
func (k SymbolKind) IsTypeLike() bool {
	switch k {
	case SymbolClass, SymbolInterface, SymbolType, SymbolEnum:
		return true
	}
	return false
}

// SymbolKinds lists every kind, in a stable order, for validation and stats.
var SymbolKinds = []SymbolKind{
	SymbolClass, SymbolInterface, SymbolFunction, SymbolVariable,
	SymbolConstant, SymbolType, SymbolEnum, SymbolModule, SymbolNamespace,
}

// Symbol is a named declaration produced by a front end for one parse.
// Location.Range contains the identifier token that names the symbol. Decl
// is the opaque handle of the declaring identifier node; the engines compare
// it for identity only.
type Symbol struct {
	Name      string
	Kind      SymbolKind
	Location  Location
	Scope     ScopeID
	Modifiers []string
	Decl      NodeID
}

// NewSymbol constructs a Symbol. Construction is total except that the name
// must be non-empty.
func NewSymbol(name string, kind SymbolKind, loc Location, scope ScopeID, modifiers ...string) (*Symbol, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: symbol name is empty", ErrInvalidArgument)
	}
	return &Symbol{
		Name:      name,
		Kind:      kind,
		Location:  loc,
		Scope:     scope,
		Modifiers: modifiers,
		Decl:      NoNode,
	}, nil
}

// HasModifier reports whether the symbol carries the named modifier.
func (s *Symbol) HasModifier(m string) bool {
	for _, mod := range s.Modifiers {
		if mod == m {
			return true
		}
	}
	return false
}

// RefKind classifies an identifier occurrence.
type RefKind string

const (
	// RefDefinition is the symbol's own declaring identifier.
	RefDefinition RefKind = "definition"
	// RefDeclaration is a new binding site in a sub-scope enumerated as part
	// of the same logical symbol (a parameter, a destructured binding).
	RefDeclaration RefKind = "declaration"
	// RefUsage is any other occurrence resolving to the symbol.
	RefUsage RefKind = "usage"
)

// Reference is one identifier occurrence resolved to a symbol.
type Reference struct {
	Symbol   *Symbol
	Location Location
	Kind     RefKind
	Node     NodeID
}

// EditKind classifies a planned source edit.
type EditKind string

const (
	EditRename  EditKind = "rename"
	EditExtract EditKind = "extract"
	EditInline  EditKind = "inline"
	EditDelete  EditKind = "delete"
)

// CodeEdit is one planned text replacement. Edits are never applied by the
// engines; they are returned as a plan for the caller to apply.
type CodeEdit struct {
	FilePath string
	Range    Range
	NewText  string
	Kind     EditKind
}
