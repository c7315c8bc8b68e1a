package lang

import (
	"fmt"

	"github.com/refract-dev/refract/internal/syntax"
)

// extractSymbols builds the scope tree for a normalized parse and collects
// the declared symbols. It is language-independent: every front end maps its
// grammar onto the normalized vocabulary first, so one extractor serves all
// of them.
func extractSymbols(tree *syntax.Tree) ([]*syntax.Symbol, error) {
	if tree == nil || tree.Root == nil {
		return nil, fmt.Errorf("%w: nil tree", syntax.ErrInvalidArgument)
	}

	global := tree.Scopes.NewScope(syntax.ScopeGlobal, "", syntax.NoScope)
	tree.Scopes.SetNode(global, tree.Root.ID)

	e := &extractor{tree: tree}
	e.visit(tree.Root, global)
	return e.symbols, nil
}

type extractor struct {
	tree    *syntax.Tree
	symbols []*syntax.Symbol
}

func (e *extractor) visit(n *syntax.Node, scope syntax.ScopeID) {
	for _, c := range n.Children {
		switch c.Kind {
		case syntax.KindFunction:
			inner := e.openScope(syntax.ScopeFunction, c, scope)
			if name := declIdent(c); name != nil {
				e.declare(name, syntax.SymbolFunction, scope, functionModifiers(c)...)
			}
			e.declareParams(c, inner)
			e.visit(c, inner)

		case syntax.KindClass:
			e.namedDecl(c, syntax.SymbolClass, syntax.ScopeClass, scope)
		case syntax.KindInterface:
			e.namedDecl(c, syntax.SymbolInterface, syntax.ScopeClass, scope)
		case syntax.KindEnum:
			e.namedDecl(c, syntax.SymbolEnum, syntax.ScopeClass, scope)
		case syntax.KindNamespace:
			e.namedDecl(c, syntax.SymbolNamespace, syntax.ScopeNamespace, scope)
		case syntax.KindTypeAlias:
			if name := declIdent(c); name != nil {
				e.declare(name, syntax.SymbolType, scope)
			}
			e.visit(c, scope)

		case syntax.KindBlock:
			inner := e.openScope(syntax.ScopeBlock, c, scope)
			e.visit(c, inner)

		case syntax.KindVarDecl:
			kind := syntax.SymbolVariable
			if c.Prop(syntax.PropKind) == "const" {
				kind = syntax.SymbolConstant
			}
			for _, d := range c.Children {
				if d.Kind == syntax.KindIdentifier && d.Prop(syntax.PropRole) == syntax.RoleDecl {
					e.declare(d, kind, scope, c.Prop(syntax.PropKind))
				}
			}
			e.visit(c, scope)

		case syntax.KindImport:
			for _, d := range c.Children {
				if d.Kind == syntax.KindIdentifier && d.Prop(syntax.PropRole) == syntax.RoleDecl {
					e.declare(d, syntax.SymbolModule, scope, "import")
				}
			}

		case syntax.KindParameter:
			// Parameters are declared by the enclosing function case.

		default:
			e.visit(c, scope)
		}
	}
}

// namedDecl declares a class-like symbol and recurses into its own scope.
func (e *extractor) namedDecl(n *syntax.Node, kind syntax.SymbolKind, scopeKind syntax.ScopeKind, scope syntax.ScopeID) {
	inner := e.openScope(scopeKind, n, scope)
	if name := declIdent(n); name != nil {
		e.declare(name, kind, scope)
	}
	e.visit(n, inner)
}

func (e *extractor) openScope(kind syntax.ScopeKind, n *syntax.Node, parent syntax.ScopeID) syntax.ScopeID {
	id := e.tree.Scopes.NewScope(kind, n.Prop(syntax.PropName), parent)
	e.tree.Scopes.SetNode(id, n.ID)
	return id
}

func (e *extractor) declareParams(fn *syntax.Node, scope syntax.ScopeID) {
	for _, c := range fn.Children {
		if c.Kind != syntax.KindParameter {
			continue
		}
		for _, id := range c.Children {
			if id.Kind == syntax.KindIdentifier && id.Prop(syntax.PropRole) == syntax.RoleDecl {
				e.declare(id, syntax.SymbolVariable, scope, "parameter")
			}
		}
	}
}

func (e *extractor) declare(ident *syntax.Node, kind syntax.SymbolKind, scope syntax.ScopeID, modifiers ...string) {
	sym, err := syntax.NewSymbol(ident.Text, kind,
		syntax.Location{FilePath: e.tree.FilePath, Range: ident.Range}, scope, modifiers...)
	if err != nil {
		return
	}
	sym.Decl = ident.ID
	e.symbols = append(e.symbols, sym)
}

// declIdent returns the declaring name identifier of a declaration node:
// the decl-role child whose text matches the node's recorded name.
func declIdent(n *syntax.Node) *syntax.Node {
	name := n.Prop(syntax.PropName)
	for _, c := range n.Children {
		if c.Prop(syntax.PropRole) != syntax.RoleDecl {
			continue
		}
		if c.Kind == syntax.KindIdentifier || c.Kind == syntax.KindPropertyKey {
			if name == "" || c.Text == name {
				return c
			}
		}
	}
	return nil
}

func functionModifiers(fn *syntax.Node) []string {
	var mods []string
	if fn.Prop(syntax.PropAsync) == "true" {
		mods = append(mods, "async")
	}
	return mods
}
