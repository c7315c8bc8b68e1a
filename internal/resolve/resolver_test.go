package resolve

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refract-dev/refract/internal/syntax"
)

// treeBuilder hand-builds normalized trees over a literal source so resolver
// behavior can be pinned down without a grammar in the loop. Node ranges are
// computed from real substring positions, keeping document order honest.
type treeBuilder struct {
	t    *testing.T
	src  string
	tree *syntax.Tree
	root *syntax.Node
}

func newTree(t *testing.T, language, src string) *treeBuilder {
	t.Helper()
	tree := syntax.NewTree("main."+extFor(language), language, []byte(src))
	b := &treeBuilder{t: t, src: src, tree: tree}
	b.root = tree.NewNode(syntax.KindSourceFile, b.spanAll(), src)
	tree.Root = b.root
	return b
}

func extFor(language string) string {
	switch language {
	case "python":
		return "py"
	case "go":
		return "go"
	case "typescript":
		return "ts"
	default:
		return "js"
	}
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

func (b *treeBuilder) spanAll() syntax.Range {
	return syntax.Range{Start: b.pos(0), End: b.pos(len(b.src))}
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

// node allocates a child of parent spanning the occ-th occurrence of literal.
func (b *treeBuilder) node(parent *syntax.Node, kind syntax.NodeKind, literal string, occ int) *syntax.Node {
	b.t.Helper()
	n := b.tree.NewNode(kind, b.span(literal, occ), literal)
	parent.AddChild(n)
	return n
}

// ident allocates an identifier child; role may be empty.
func (b *treeBuilder) ident(parent *syntax.Node, name string, occ int, role string) *syntax.Node {
	n := b.node(parent, syntax.KindIdentifier, name, occ)
	if role != "" {
		n.SetProp(syntax.PropRole, role)
	}
	return n
}

// symbol builds a Symbol declared by the given identifier node.
func (b *treeBuilder) symbol(name string, kind syntax.SymbolKind, decl *syntax.Node) *syntax.Symbol {
	b.t.Helper()
	sym, err := syntax.NewSymbol(name, kind, syntax.Location{FilePath: b.tree.FilePath, Range: decl.Range}, syntax.NoScope)
	require.NoError(b.t, err)
	sym.Decl = decl.ID
	return sym
}

func refKinds(refs []*syntax.Reference) []syntax.RefKind {
	kinds := make([]syntax.RefKind, 0, len(refs))
	for _, r := range refs {
		kinds = append(kinds, r.Kind)
	}
	return kinds
}

// =============================================================================
// References
// =============================================================================

func TestReferences_SimpleVariable(t *testing.T) {
	t.Parallel()
	b := newTree(t, "javascript", "const total = 1;\nuse(total);\nlog(total);\n")

	decl := b.node(b.root, syntax.KindVarDecl, "const total = 1;", 0)
	declIdent := b.ident(decl, "total", 0, syntax.RoleDecl)

	use := b.node(b.root, syntax.KindCall, "use(total)", 0)
	b.ident(use, "use", 0, "")
	b.ident(use, "total", 1, "")

	log := b.node(b.root, syntax.KindCall, "log(total)", 0)
	b.ident(log, "log", 0, "")
	b.ident(log, "total", 2, "")

	sym := b.symbol("total", syntax.SymbolConstant, declIdent)
	refs := References(b.tree, sym)

	require.Len(t, refs, 3)
	assert.Equal(t, []syntax.RefKind{syntax.RefDefinition, syntax.RefUsage, syntax.RefUsage}, refKinds(refs))
	for i := 1; i < len(refs); i++ {
		assert.True(t, refs[i-1].Location.Range.Start.Before(refs[i].Location.Range.Start), "document order")
	}
}

func TestReferences_ShadowedByParameter(t *testing.T) {
	t.Parallel()
	src := "let x = 1;\nfunction f(x) {\n  return x + 1;\n}\nsend(x);\n"
	b := newTree(t, "javascript", src)

	outerDecl := b.node(b.root, syntax.KindVarDecl, "let x = 1;", 0)
	outerIdent := b.ident(outerDecl, "x", 0, syntax.RoleDecl)

	fn := b.node(b.root, syntax.KindFunction, "function f(x) {\n  return x + 1;\n}", 0)
	fn.SetProp(syntax.PropName, "f")
	// "f" occurrence 0 is the one inside the word "function".
	b.ident(fn, "f", 1, syntax.RoleDecl)
	param := b.node(fn, syntax.KindParameter, "x", 1)
	param.SetProp(syntax.PropName, "x")
	paramIdent := b.ident(param, "x", 1, syntax.RoleDecl)
	body := b.node(fn, syntax.KindBlock, "{\n  return x + 1;\n}", 0)
	ret := b.node(body, syntax.KindReturn, "return x + 1;", 0)
	b.ident(ret, "x", 2, "")

	send := b.node(b.root, syntax.KindCall, "send(x)", 0)
	b.ident(send, "send", 0, "")
	b.ident(send, "x", 3, "")

	outer := b.symbol("x", syntax.SymbolVariable, outerIdent)
	inner := b.symbol("x", syntax.SymbolVariable, paramIdent)

	outerRefs := References(b.tree, outer)
	require.Len(t, outerRefs, 2, "the parameter shadows x inside f")
	assert.Equal(t, syntax.RefDefinition, outerRefs[0].Kind)
	assert.Equal(t, syntax.RefUsage, outerRefs[1].Kind)
	assert.Equal(t, 4, outerRefs[1].Location.Range.Start.Line)

	innerRefs := References(b.tree, inner)
	require.Len(t, innerRefs, 2)
	assert.Equal(t, syntax.RefDefinition, innerRefs[0].Kind)
	assert.Equal(t, syntax.RefUsage, innerRefs[1].Kind)
	assert.Equal(t, 2, innerRefs[1].Location.Range.Start.Line)
}

func TestReferences_TypeLikeResolvesFileGlobally(t *testing.T) {
	t.Parallel()
	src := "p = new Processor();\nclass Processor {\n}\n"
	b := newTree(t, "javascript", src)

	assign := b.node(b.root, syntax.KindAssignment, "p = new Processor()", 0)
	b.ident(assign, "p", 0, "")
	call := b.node(assign, syntax.KindCall, "new Processor()", 0)
	b.ident(call, "Processor", 0, "")

	cls := b.node(b.root, syntax.KindClass, "class Processor {\n}", 0)
	cls.SetProp(syntax.PropName, "Processor")
	clsIdent := b.ident(cls, "Processor", 1, syntax.RoleDecl)

	sym := b.symbol("Processor", syntax.SymbolClass, clsIdent)
	refs := References(b.tree, sym)

	require.Len(t, refs, 2, "use-before-declare still resolves for type-like symbols")
	assert.Equal(t, syntax.RefUsage, refs[0].Kind)
	assert.Equal(t, syntax.RefDefinition, refs[1].Kind)
}

func TestReferences_SkipsStringsAndComments(t *testing.T) {
	t.Parallel()
	src := "let name = 1;\nsay(\"name\");\n// name\nname;\n"
	b := newTree(t, "javascript", src)

	decl := b.node(b.root, syntax.KindVarDecl, "let name = 1;", 0)
	declIdent := b.ident(decl, "name", 0, syntax.RoleDecl)

	say := b.node(b.root, syntax.KindCall, "say(\"name\")", 0)
	b.ident(say, "say", 0, "")
	str := b.node(say, syntax.KindString, "\"name\"", 0)
	b.ident(str, "name", 1, "") // tokenized string content must stay invisible

	comment := b.node(b.root, syntax.KindComment, "// name", 0)
	b.ident(comment, "name", 2, "")

	stmt := b.node(b.root, syntax.KindExprStmt, "name;", 0)
	b.ident(stmt, "name", 3, "")

	sym := b.symbol("name", syntax.SymbolVariable, declIdent)
	refs := References(b.tree, sym)

	require.Len(t, refs, 2)
	assert.Equal(t, syntax.RefDefinition, refs[0].Kind)
	assert.Equal(t, syntax.RefUsage, refs[1].Kind)
	assert.Equal(t, 3, refs[1].Location.Range.Start.Line)
}

func TestReferences_SkipsImportedRole(t *testing.T) {
	t.Parallel()
	src := "let original = 1;\nimport { original as alias } from \"mod\";\nalias();\n"
	b := newTree(t, "javascript", src)

	decl := b.node(b.root, syntax.KindVarDecl, "let original = 1;", 0)
	declIdent := b.ident(decl, "original", 0, syntax.RoleDecl)

	imp := b.node(b.root, syntax.KindImport, "import { original as alias } from \"mod\";", 0)
	b.ident(imp, "original", 1, syntax.RoleImported)
	aliasIdent := b.ident(imp, "alias", 0, syntax.RoleDecl)

	call := b.node(b.root, syntax.KindCall, "alias()", 0)
	b.ident(call, "alias", 1, "")

	origRefs := References(b.tree, b.symbol("original", syntax.SymbolVariable, declIdent))
	require.Len(t, origRefs, 1, "the imported external name is not an occurrence")
	assert.Equal(t, syntax.RefDefinition, origRefs[0].Kind)

	aliasRefs := References(b.tree, b.symbol("alias", syntax.SymbolModule, aliasIdent))
	require.Len(t, aliasRefs, 2)
	assert.Equal(t, syntax.RefDefinition, aliasRefs[0].Kind)
	assert.Equal(t, syntax.RefUsage, aliasRefs[1].Kind)
}

func TestReferences_FunctionNameVisibleAtTopLevel(t *testing.T) {
	t.Parallel()
	src := "function ping() {\n  return 1;\n}\nping();\n"
	b := newTree(t, "javascript", src)

	fn := b.node(b.root, syntax.KindFunction, "function ping() {\n  return 1;\n}", 0)
	fn.SetProp(syntax.PropName, "ping")
	nameIdent := b.ident(fn, "ping", 0, syntax.RoleDecl)
	b.node(fn, syntax.KindBlock, "{\n  return 1;\n}", 0)

	// "ping()" occurrence 0 is inside "function ping() {".
	call := b.node(b.root, syntax.KindCall, "ping()", 1)
	b.ident(call, "ping", 1, "")

	sym := b.symbol("ping", syntax.SymbolFunction, nameIdent)
	refs := References(b.tree, sym)

	require.Len(t, refs, 2, "a function's name binds in the enclosing scope")
	assert.Equal(t, syntax.RefDefinition, refs[0].Kind)
	assert.Equal(t, syntax.RefUsage, refs[1].Kind)
}

func TestReferences_NilInputs(t *testing.T) {
	t.Parallel()
	b := newTree(t, "javascript", "let x = 1;\n")
	decl := b.node(b.root, syntax.KindVarDecl, "let x = 1;", 0)
	ident := b.ident(decl, "x", 0, syntax.RoleDecl)
	sym := b.symbol("x", syntax.SymbolVariable, ident)

	assert.Nil(t, References(nil, sym))
	assert.Nil(t, References(b.tree, nil))
}

// =============================================================================
// SymbolAt
// =============================================================================

func TestSymbolAt_OnDeclarationAndUsage(t *testing.T) {
	t.Parallel()
	src := "const total = 1;\nuse(total);\n"
	b := newTree(t, "javascript", src)

	decl := b.node(b.root, syntax.KindVarDecl, "const total = 1;", 0)
	declIdent := b.ident(decl, "total", 0, syntax.RoleDecl)
	use := b.node(b.root, syntax.KindCall, "use(total)", 0)
	b.ident(use, "use", 0, "")
	useIdent := b.ident(use, "total", 1, "")

	sym := b.symbol("total", syntax.SymbolConstant, declIdent)
	symbols := []*syntax.Symbol{sym}

	got, err := SymbolAt(b.tree, symbols, declIdent.Range.Start)
	require.NoError(t, err)
	assert.Same(t, sym, got)

	got, err = SymbolAt(b.tree, symbols, useIdent.Range.Start)
	require.NoError(t, err)
	assert.Same(t, sym, got)
}

func TestSymbolAt_ShadowedPositionPicksInnerSymbol(t *testing.T) {
	t.Parallel()
	src := "let x = 1;\nfunction f(x) {\n  return x;\n}\n"
	b := newTree(t, "javascript", src)

	outerDecl := b.node(b.root, syntax.KindVarDecl, "let x = 1;", 0)
	outerIdent := b.ident(outerDecl, "x", 0, syntax.RoleDecl)

	fn := b.node(b.root, syntax.KindFunction, "function f(x) {\n  return x;\n}", 0)
	fn.SetProp(syntax.PropName, "f")
	b.ident(fn, "f", 1, syntax.RoleDecl)
	param := b.node(fn, syntax.KindParameter, "x", 1)
	param.SetProp(syntax.PropName, "x")
	paramIdent := b.ident(param, "x", 1, syntax.RoleDecl)
	body := b.node(fn, syntax.KindBlock, "{\n  return x;\n}", 0)
	ret := b.node(body, syntax.KindReturn, "return x;", 0)
	bodyUse := b.ident(ret, "x", 2, "")

	outer := b.symbol("x", syntax.SymbolVariable, outerIdent)
	inner := b.symbol("x", syntax.SymbolVariable, paramIdent)
	symbols := []*syntax.Symbol{outer, inner}

	got, err := SymbolAt(b.tree, symbols, bodyUse.Range.Start)
	require.NoError(t, err)
	assert.Same(t, inner, got)
}

func TestSymbolAt_NotFound(t *testing.T) {
	t.Parallel()
	src := "const total = 1;\n"
	b := newTree(t, "javascript", src)
	decl := b.node(b.root, syntax.KindVarDecl, "const total = 1;", 0)
	declIdent := b.ident(decl, "total", 0, syntax.RoleDecl)
	sym := b.symbol("total", syntax.SymbolConstant, declIdent)

	// Position on the keyword, not an identifier.
	_, err := SymbolAt(b.tree, []*syntax.Symbol{sym}, syntax.Position{Line: 0, Column: 1, Offset: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, syntax.ErrSymbolNotFound)

	_, err = SymbolAt(nil, nil, syntax.Position{})
	assert.ErrorIs(t, err, syntax.ErrInvalidArgument)
}

// =============================================================================
// Scope chain helpers
// =============================================================================

func TestBoundInScopeChain(t *testing.T) {
	t.Parallel()
	src := "let temp = 1;\nfunction f() {\n  go();\n}\n"
	b := newTree(t, "javascript", src)

	decl := b.node(b.root, syntax.KindVarDecl, "let temp = 1;", 0)
	b.ident(decl, "temp", 0, syntax.RoleDecl)

	fn := b.node(b.root, syntax.KindFunction, "function f() {\n  go();\n}", 0)
	fn.SetProp(syntax.PropName, "f")
	b.ident(fn, "f", 1, syntax.RoleDecl)
	body := b.node(fn, syntax.KindBlock, "{\n  go();\n}", 0)
	call := b.node(body, syntax.KindCall, "go()", 0)
	callee := b.ident(call, "go", 0, "")

	assert.True(t, BoundInScopeChain(b.tree, callee, "temp"), "bound at file level")
	assert.True(t, BoundInScopeChain(b.tree, callee, "f"), "function names bind in their parent")
	assert.False(t, BoundInScopeChain(b.tree, callee, "missing"))
}
