package refactor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/refract-dev/refract/internal/syntax"
)

// treeBuilder hand-builds normalized trees over a literal source, so the
// refactoring strategies can be tested without a grammar in the loop.
type treeBuilder struct {
	t    *testing.T
	src  string
	tree *syntax.Tree
	root *syntax.Node
}

func newTree(t *testing.T, language, src string) *treeBuilder {
	t.Helper()
	ext := "js"
	switch language {
	case "python":
		ext = "py"
	case "go":
		ext = "go"
	case "typescript":
		ext = "ts"
	}
	tree := syntax.NewTree("main."+ext, language, []byte(src))
	b := &treeBuilder{t: t, src: src, tree: tree}
	b.root = tree.NewNode(syntax.KindSourceFile,
		syntax.Range{Start: b.pos(0), End: b.pos(len(src))}, src)
	tree.Root = b.root
	return b
}

// span returns the range of the occ-th (0-based) occurrence of literal.
func (b *treeBuilder) span(literal string, occ int) syntax.Range {
	b.t.Helper()
	off := -1
	from := 0
	for i := 0; i <= occ; i++ {
		idx := strings.Index(b.src[from:], literal)
		require.GreaterOrEqual(b.t, idx, 0, "occurrence %d of %q not found", occ, literal)
		off = from + idx
		from = off + len(literal)
	}
	return syntax.Range{Start: b.pos(off), End: b.pos(off + len(literal))}
}

func (b *treeBuilder) pos(off int) syntax.Position {
	line, col := 0, 0
	for _, r := range b.src[:off] {
		if r == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return syntax.Position{Line: line, Column: col, Offset: off}
}

func (b *treeBuilder) node(parent *syntax.Node, kind syntax.NodeKind, literal string, occ int) *syntax.Node {
	b.t.Helper()
	n := b.tree.NewNode(kind, b.span(literal, occ), literal)
	parent.AddChild(n)
	return n
}

func (b *treeBuilder) ident(parent *syntax.Node, name string, occ int, role string) *syntax.Node {
	n := b.node(parent, syntax.KindIdentifier, name, occ)
	if role != "" {
		n.SetProp(syntax.PropRole, role)
	}
	return n
}

func (b *treeBuilder) symbol(name string, kind syntax.SymbolKind, decl *syntax.Node) *syntax.Symbol {
	b.t.Helper()
	sym, err := syntax.NewSymbol(name, kind, syntax.Location{FilePath: b.tree.FilePath, Range: decl.Range}, syntax.NoScope)
	require.NoError(b.t, err)
	sym.Decl = decl.ID
	return sym
}

// fixtureFn describes a simple function declaration to build.
type fixtureFn struct {
	decl  string // full declaration text
	name  string
	occ   int    // occurrence of the name identifier
	param string // single parameter name, "" for none
	pOcc  int
	body  string // body block text including braces
	async bool
}

// addFunction builds a function node with name, optional parameter, and body
// block, returning the function node, its name identifier, and its body.
func (b *treeBuilder) addFunction(f fixtureFn) (fn, name, body *syntax.Node) {
	b.t.Helper()
	fn = b.node(b.root, syntax.KindFunction, f.decl, 0)
	fn.SetProp(syntax.PropName, f.name)
	if f.async {
		fn.SetProp(syntax.PropAsync, "true")
	}
	name = b.ident(fn, f.name, f.occ, syntax.RoleDecl)
	if f.param != "" {
		p := b.node(fn, syntax.KindParameter, f.param, f.pOcc)
		p.SetProp(syntax.PropName, f.param)
		b.ident(p, f.param, f.pOcc, syntax.RoleDecl)
	}
	body = b.node(fn, syntax.KindBlock, f.body, 0)
	return fn, name, body
}

// addCall builds a call node with a callee identifier and optional argument
// text nodes. callOcc disambiguates call text that also appears inside the
// function's own declaration, e.g. "tick()" in "function tick() {".
func (b *treeBuilder) addCall(parent *syntax.Node, callText string, callOcc int, callee string, calleeOcc int, args ...string) *syntax.Node {
	b.t.Helper()
	call := b.node(parent, syntax.KindCall, callText, callOcc)
	b.ident(call, callee, calleeOcc, "")
	for _, arg := range args {
		b.node(call, syntax.KindArgument, arg, 0)
	}
	return call
}
