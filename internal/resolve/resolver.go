// Package resolve decides, for every identifier-like occurrence in a
// normalized AST, whether it denotes a given declared symbol, accounting for
// nested scopes and shadowing.
package resolve

import (
	"fmt"
	"sort"

	"github.com/refract-dev/refract/internal/syntax"
)

// References returns every occurrence in tree that resolves to sym,
// classified as definition, declaration, or usage, in document order. An
// empty result means no references were found, not an error; References
// never fails for a well-formed tree.
func References(tree *syntax.Tree, sym *syntax.Symbol) []*syntax.Reference {
	if tree == nil || tree.Root == nil || sym == nil || sym.Name == "" {
		return nil
	}

	symContainer := declContainer(tree, sym)

	var refs []*syntax.Reference
	syntax.Walk(tree.Root, func(n *syntax.Node) bool {
		// Identifiers never occur below string or comment nodes in a
		// well-formed normalized tree; skipping the subtree also guards
		// against front ends that tokenize their contents.
		if n.Kind == syntax.KindString || n.Kind == syntax.KindComment {
			return false
		}
		if n.Kind != syntax.KindIdentifier || n.Text != sym.Name {
			return true
		}
		if n.Prop(syntax.PropRole) == syntax.RoleImported {
			return true
		}
		if !resolves(tree, sym, symContainer, n) {
			return true
		}
		refs = append(refs, &syntax.Reference{
			Symbol:   sym,
			Location: syntax.Location{FilePath: tree.FilePath, Range: n.Range},
			Kind:     classify(sym, n),
			Node:     n.ID,
		})
		return true
	})

	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].Location.Range.Start.Before(refs[j].Location.Range.Start)
	})
	return refs
}

// resolves applies the scope relationship and shadowing rules of the engine
// to one candidate occurrence.
func resolves(tree *syntax.Tree, sym *syntax.Symbol, symContainer, occ *syntax.Node) bool {
	// Type-like declarations resolve file-globally: any same-named
	// occurrence in the file denotes them.
	if sym.Kind.IsTypeLike() {
		return true
	}

	occContainer := container(occ)
	if symContainer == nil || occContainer == nil {
		return false
	}

	// The symbol's container must be the occurrence's container or a strict
	// ancestor of it.
	if !sameOrAncestorContainer(symContainer, occContainer) {
		return false
	}

	// Shadowing check: an intervening scope that declares the same name
	// before the occurrence blocks resolution.
	for c := occContainer; c != nil && c != symContainer; c = container(c) {
		if shadows(tree, c, sym, occ) {
			return false
		}
	}
	return true
}

// classify determines the reference kind for a resolved occurrence.
func classify(sym *syntax.Symbol, occ *syntax.Node) syntax.RefKind {
	if occ.ID == sym.Decl {
		return syntax.RefDefinition
	}
	if occ.Prop(syntax.PropRole) == syntax.RoleDecl {
		return syntax.RefDeclaration
	}
	return syntax.RefUsage
}

// container returns the nearest strict ancestor of n that encloses a scope
// for value bindings: a function, a block, or the whole file.
func container(n *syntax.Node) *syntax.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		switch p.Kind {
		case syntax.KindFunction, syntax.KindBlock, syntax.KindSourceFile:
			return p
		}
	}
	return nil
}

// declContainer returns the scope container in which the symbol's binding is
// visible. A function or class name binds in the scope enclosing the
// declaration, not inside it, so the container is taken one level up when
// the declaring identifier is the declaration's own name child.
func declContainer(tree *syntax.Tree, sym *syntax.Symbol) *syntax.Node {
	decl := tree.NodeByID(sym.Decl)
	if decl == nil {
		// No declaration handle (e.g. a hydrated symbol): fall back to the
		// file root.
		return tree.Root
	}
	if p := decl.Parent; p != nil && isNameChild(decl, p) {
		switch p.Kind {
		case syntax.KindFunction, syntax.KindClass, syntax.KindInterface,
			syntax.KindEnum, syntax.KindNamespace:
			return container(p)
		}
	}
	return container(decl)
}

// isNameChild reports whether ident is the name identifier of decl.
func isNameChild(ident, decl *syntax.Node) bool {
	return ident.Prop(syntax.PropRole) == syntax.RoleDecl &&
		decl.Prop(syntax.PropName) == ident.Text
}

// sameOrAncestorContainer reports whether anc equals desc or is one of its
// enclosing containers.
func sameOrAncestorContainer(anc, desc *syntax.Node) bool {
	for c := desc; c != nil; c = container(c) {
		if c == anc {
			return true
		}
	}
	return false
}

// shadows reports whether scopeNode directly declares a parameter or local
// variable named like sym, at or before occ, that is not the symbol itself.
// The occurrence being that binding identifier counts: in `function f(x)`
// the parameter x is a new binding, never a reference to an outer x.
// Declarations inside nested functions or blocks belong to those scopes and
// are not consulted.
func shadows(tree *syntax.Tree, scopeNode *syntax.Node, sym *syntax.Symbol, occ *syntax.Node) bool {
	found := false
	scanOwnDeclarations(scopeNode, func(ident *syntax.Node) bool {
		if ident.Text != sym.Name || ident.ID == sym.Decl {
			return true
		}
		if ident.ID == occ.ID || ident.Range.Start.Before(occ.Range.Start) {
			found = true
			return false
		}
		return true
	})
	return found
}

// scanOwnDeclarations visits the binding identifiers declared directly in
// scopeNode: parameters when it is a function, declarator names of variable
// declarations in its immediate statement list, and names of nested
// function declarations. fn returns false to stop the scan.
func scanOwnDeclarations(scopeNode *syntax.Node, fn func(*syntax.Node) bool) {
	stop := false
	var visit func(n *syntax.Node, top bool)
	visit = func(n *syntax.Node, top bool) {
		if stop {
			return
		}
		for _, c := range n.Children {
			switch c.Kind {
			case syntax.KindFunction:
				// The nested function's name binds here; its body does not.
				if name := functionName(c); name != nil && !fn(name) {
					stop = true
					return
				}
			case syntax.KindBlock:
				// Nested block: its declarations shadow only within itself,
				// except for a function's own body block which shares the
				// function scope's parameter region.
				if top && scopeNode.Kind == syntax.KindFunction {
					visit(c, false)
				}
			case syntax.KindParameter:
				for _, pc := range c.Children {
					if pc.Kind == syntax.KindIdentifier && pc.Prop(syntax.PropRole) == syntax.RoleDecl {
						if !fn(pc) {
							stop = true
							return
						}
					}
				}
			case syntax.KindVarDecl:
				for _, pc := range c.Children {
					if pc.Kind == syntax.KindIdentifier && pc.Prop(syntax.PropRole) == syntax.RoleDecl {
						if !fn(pc) {
							stop = true
							return
						}
					}
				}
			default:
				visit(c, false)
			}
		}
	}
	visit(scopeNode, true)
}

// functionName returns the declaring name identifier of a function node, or
// nil for anonymous functions.
func functionName(fn *syntax.Node) *syntax.Node {
	name := fn.Prop(syntax.PropName)
	if name == "" {
		return nil
	}
	for _, c := range fn.Children {
		if c.Kind == syntax.KindIdentifier && c.Text == name && c.Prop(syntax.PropRole) == syntax.RoleDecl {
			return c
		}
	}
	return nil
}

// SymbolAt locates the symbol whose declaring identifier or one of whose
// references covers pos. The position must fall within an identifier token;
// otherwise SymbolAt fails with ErrSymbolNotFound.
func SymbolAt(tree *syntax.Tree, symbols []*syntax.Symbol, pos syntax.Position) (*syntax.Symbol, error) {
	if tree == nil || tree.Root == nil {
		return nil, fmt.Errorf("%w: nil tree", syntax.ErrInvalidArgument)
	}
	n := syntax.NodeAt(tree.Root, pos)
	if n == nil || (n.Kind != syntax.KindIdentifier && n.Kind != syntax.KindPropertyKey) {
		return nil, fmt.Errorf("%w: no identifier at %s:%s", syntax.ErrSymbolNotFound, tree.FilePath, pos)
	}

	// Fast path: the position is on a declaring identifier.
	for _, sym := range symbols {
		if sym.Decl == n.ID {
			return sym, nil
		}
	}

	// Otherwise resolve each same-named symbol and look for this occurrence
	// among its references.
	for _, sym := range symbols {
		if sym.Name != n.Text {
			continue
		}
		for _, ref := range References(tree, sym) {
			if ref.Node == n.ID {
				return sym, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q at %s:%s", syntax.ErrSymbolNotFound, n.Text, tree.FilePath, pos)
}

// Container exposes the occurrence scope container computation for the
// refactoring engines.
func Container(n *syntax.Node) *syntax.Node { return container(n) }

// BoundInScopeChain reports whether name is bound anywhere in the scope
// chain enclosing n, from its nearest container up to the file root.
func BoundInScopeChain(tree *syntax.Tree, n *syntax.Node, name string) bool {
	for c := container(n); c != nil; c = container(c) {
		bound := false
		scanOwnDeclarations(c, func(ident *syntax.Node) bool {
			if ident.Text == name {
				bound = true
				return false
			}
			return true
		})
		if bound {
			return true
		}
	}
	return false
}
