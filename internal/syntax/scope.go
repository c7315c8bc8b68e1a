package syntax

// ScopeKind classifies a lexical region.
type ScopeKind string

const (
	ScopeGlobal    ScopeKind = "global"
	ScopeNamespace ScopeKind = "namespace"
	ScopeClass     ScopeKind = "class"
	ScopeFunction  ScopeKind = "function"
	ScopeBlock     ScopeKind = "block"
)

// ScopeID addresses a scope record within a ScopeTable. Scopes are compared
// by identity (same table, same ID), never structurally.
type ScopeID int

// NoScope is the absent-parent value.
const NoScope ScopeID = -1

// Scope is one lexical region. Parent is a non-owning back-reference into
// the same table; the table owns the tree top-down for one parse. Node is
// the AST node that opened the scope (NoNode for the global scope of a file
// whose root was synthesized).
type Scope struct {
	ID     ScopeID
	Kind   ScopeKind
	Name   string
	Parent ScopeID
	Node   NodeID
}

// ScopeTable is an arena of scope records for one parse. Index-based
// addressing keeps the parent back-references cycle-free by construction:
// a scope's parent always has a smaller ID.
type ScopeTable struct {
	scopes []Scope
}

// NewScopeTable returns an empty arena.
func NewScopeTable() *ScopeTable {
	return &ScopeTable{}
}

// NewScope appends a scope record and returns its ID. The name may be empty
// for anonymous scopes (blocks, arrow functions).
func (t *ScopeTable) NewScope(kind ScopeKind, name string, parent ScopeID) ScopeID {
	id := ScopeID(len(t.scopes))
	t.scopes = append(t.scopes, Scope{ID: id, Kind: kind, Name: name, Parent: parent, Node: NoNode})
	return id
}

// Get returns the scope record for id, or nil for NoScope or an out-of-range
// ID.
func (t *ScopeTable) Get(id ScopeID) *Scope {
	if id < 0 || int(id) >= len(t.scopes) {
		return nil
	}
	return &t.scopes[id]
}

// SetNode records the AST node that opened the scope.
func (t *ScopeTable) SetNode(id ScopeID, node NodeID) {
	if s := t.Get(id); s != nil {
		s.Node = node
	}
}

// IsAncestor reports whether anc is a strict ancestor of desc.
func (t *ScopeTable) IsAncestor(anc, desc ScopeID) bool {
	s := t.Get(desc)
	if s == nil {
		return false
	}
	for p := s.Parent; p != NoScope; {
		if p == anc {
			return true
		}
		ps := t.Get(p)
		if ps == nil {
			return false
		}
		p = ps.Parent
	}
	return false
}

// Len returns the number of scopes in the table.
func (t *ScopeTable) Len() int { return len(t.scopes) }
