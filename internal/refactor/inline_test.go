package refactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refract-dev/refract/internal/syntax"
)

func TestInline_ExpressionContext(t *testing.T) {
	t.Parallel()
	src := "function square(x) {\n  return x * x;\n}\nconst result = square(value);\n"
	b := newTree(t, "javascript", src)

	fn, name, body := b.addFunction(fixtureFn{
		decl: "function square(x) {\n  return x * x;\n}", name: "square", occ: 0,
		param: "x", pOcc: 0,
		body: "{\n  return x * x;\n}",
	})
	ret := b.node(body, syntax.KindReturn, "return x * x;", 0)
	b.ident(ret, "x", 1, "")
	b.ident(ret, "x", 2, "")

	varDecl := b.node(b.root, syntax.KindVarDecl, "const result = square(value);", 0)
	b.ident(varDecl, "result", 0, syntax.RoleDecl)
	call := b.addCall(varDecl, "square(value)", 0, "square", 1, "value")

	symbols := []*syntax.Symbol{b.symbol("square", syntax.SymbolFunction, name)}
	result, err := Inline(b.tree, symbols, name.Range.Start, InlineOptions{})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)

	require.Len(t, result.Edits, 2)
	assert.Equal(t, syntax.EditInline, result.Edits[0].Kind)
	assert.Equal(t, call.Range, result.Edits[0].Range)
	assert.Equal(t, "value * value", result.Edits[0].NewText, "argument substituted, return stripped")
	assert.Equal(t, syntax.EditDelete, result.Edits[1].Kind, "declaration removal comes last")
	assert.Equal(t, fn.Range, result.Edits[1].Range)
	assert.Empty(t, result.Edits[1].NewText)
}

func TestInline_MissingArgumentDefaults(t *testing.T) {
	t.Parallel()
	src := "function pad(q) {\n  return q + 1;\n}\nconst out = pad();\n"
	b := newTree(t, "javascript", src)

	_, name, body := b.addFunction(fixtureFn{
		decl: "function pad(q) {\n  return q + 1;\n}", name: "pad", occ: 0,
		param: "q", pOcc: 0,
		body: "{\n  return q + 1;\n}",
	})
	ret := b.node(body, syntax.KindReturn, "return q + 1;", 0)
	b.ident(ret, "q", 1, "")

	varDecl := b.node(b.root, syntax.KindVarDecl, "const out = pad();", 0)
	b.ident(varDecl, "out", 0, syntax.RoleDecl)
	b.addCall(varDecl, "pad()", 0, "pad", 1)

	symbols := []*syntax.Symbol{b.symbol("pad", syntax.SymbolFunction, name)}
	result, err := Inline(b.tree, symbols, name.Range.Start, InlineOptions{})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "undefined + 1", result.Edits[0].NewText)
}

func TestInline_ZeroCallSites(t *testing.T) {
	t.Parallel()
	src := "function unused() {\n  return 0;\n}\n"
	b := newTree(t, "javascript", src)
	fn, name, _ := b.addFunction(fixtureFn{
		decl: "function unused() {\n  return 0;\n}", name: "unused", occ: 0,
		body: "{\n  return 0;\n}",
	})

	symbols := []*syntax.Symbol{b.symbol("unused", syntax.SymbolFunction, name)}
	result, err := Inline(b.tree, symbols, name.Range.Start, InlineOptions{})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.Edits, 1, "nothing to substitute, only the deletion")
	assert.Equal(t, syntax.EditDelete, result.Edits[0].Kind)
	assert.Equal(t, fn.Range, result.Edits[0].Range)
}

func TestInline_ConflictRenaming(t *testing.T) {
	t.Parallel()
	src := "function make() {\n  let temp = 1;\n  return temp;\n}\nlet temp = 5;\nlet out = make();\n"
	b := newTree(t, "javascript", src)

	_, name, body := b.addFunction(fixtureFn{
		decl: "function make() {\n  let temp = 1;\n  return temp;\n}", name: "make", occ: 0,
		body: "{\n  let temp = 1;\n  return temp;\n}",
	})
	local := b.node(body, syntax.KindVarDecl, "let temp = 1;", 0)
	b.ident(local, "temp", 0, syntax.RoleDecl)
	ret := b.node(body, syntax.KindReturn, "return temp;", 0)
	b.ident(ret, "temp", 1, "")

	rootDecl := b.node(b.root, syntax.KindVarDecl, "let temp = 5;", 0)
	b.ident(rootDecl, "temp", 2, syntax.RoleDecl)

	outDecl := b.node(b.root, syntax.KindVarDecl, "let out = make();", 0)
	b.ident(outDecl, "out", 0, syntax.RoleDecl)
	// "make()" occurrence 0 is inside the declaration "function make() {".
	b.addCall(outDecl, "make()", 1, "make", 1)

	symbols := []*syntax.Symbol{b.symbol("make", syntax.SymbolFunction, name)}
	result, err := Inline(b.tree, symbols, name.Range.Start, InlineOptions{})
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, "let temp_inline = 1;\nreturn temp_inline;", result.Edits[0].NewText)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], `"temp"`)
	assert.Contains(t, result.Warnings[0], `"temp_inline"`)
	assert.Contains(t, result.Warnings[0], "already bound at call site")
}

func TestInline_AsyncWrapsInIIFE(t *testing.T) {
	t.Parallel()
	src := "async function fetchIt() {\n  return await go();\n}\nlet p = fetchIt();\n"
	b := newTree(t, "javascript", src)

	_, name, body := b.addFunction(fixtureFn{
		decl: "async function fetchIt() {\n  return await go();\n}", name: "fetchIt", occ: 0,
		body: "{\n  return await go();\n}", async: true,
	})
	ret := b.node(body, syntax.KindReturn, "return await go();", 0)
	b.addCall(ret, "go()", 0, "go", 0)

	varDecl := b.node(b.root, syntax.KindVarDecl, "let p = fetchIt();", 0)
	b.ident(varDecl, "p", 0, syntax.RoleDecl)
	b.addCall(varDecl, "fetchIt()", 1, "fetchIt", 1)

	symbols := []*syntax.Symbol{b.symbol("fetchIt", syntax.SymbolFunction, name)}
	result, err := Inline(b.tree, symbols, name.Range.Start, InlineOptions{})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "(async () => { return await go(); })()", result.Edits[0].NewText,
		"await stays valid inside the wrapping closure")
}

func TestInline_RejectsSideEffects(t *testing.T) {
	t.Parallel()
	src := "function log2(x) {\n  console.log(x);\n  return x;\n}\nlet y = log2(3);\n"
	b := newTree(t, "javascript", src)

	_, name, body := b.addFunction(fixtureFn{
		decl: "function log2(x) {\n  console.log(x);\n  return x;\n}", name: "log2", occ: 0,
		param: "x", pOcc: 0,
		body: "{\n  console.log(x);\n  return x;\n}",
	})
	b.addCall(body, "console.log(x)", 0, "console.log", 0, "x")
	varDecl := b.node(b.root, syntax.KindVarDecl, "let y = log2(3);", 0)
	b.ident(varDecl, "y", 0, syntax.RoleDecl)
	b.addCall(varDecl, "log2(3)", 0, "log2", 1, "3")

	symbols := []*syntax.Symbol{b.symbol("log2", syntax.SymbolFunction, name)}
	result, err := Inline(b.tree, symbols, name.Range.Start, InlineOptions{})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Errors, "function has side effects")
	assert.Empty(t, result.Edits, "a refusal plans nothing")
}

func TestInline_RejectsNonLocalAssignment(t *testing.T) {
	t.Parallel()
	src := "function bump() {\n  counter = counter + 1;\n  return counter;\n}\nbump();\n"
	b := newTree(t, "javascript", src)

	_, name, body := b.addFunction(fixtureFn{
		decl: "function bump() {\n  counter = counter + 1;\n  return counter;\n}", name: "bump", occ: 0,
		body: "{\n  counter = counter + 1;\n  return counter;\n}",
	})
	assign := b.node(body, syntax.KindAssignment, "counter = counter + 1", 0)
	b.ident(assign, "counter", 0, "")

	stmt := b.node(b.root, syntax.KindExprStmt, "bump();", 0)
	b.addCall(stmt, "bump()", 1, "bump", 1)

	symbols := []*syntax.Symbol{b.symbol("bump", syntax.SymbolFunction, name)}
	reasons, err := CanInline(b.tree, symbols, name.Range.Start, InlineOptions{})
	require.NoError(t, err)
	assert.Contains(t, reasons, "function has side effects")
}

func TestInline_RejectsRecursion(t *testing.T) {
	t.Parallel()
	src := "function loop(n) {\n  return loop(n - 1);\n}\n"
	b := newTree(t, "javascript", src)

	_, name, body := b.addFunction(fixtureFn{
		decl: "function loop(n) {\n  return loop(n - 1);\n}", name: "loop", occ: 0,
		param: "n", pOcc: 0,
		body: "{\n  return loop(n - 1);\n}",
	})
	ret := b.node(body, syntax.KindReturn, "return loop(n - 1);", 0)
	b.addCall(ret, "loop(n - 1)", 0, "loop", 1, "n - 1")

	symbols := []*syntax.Symbol{b.symbol("loop", syntax.SymbolFunction, name)}
	reasons, err := CanInline(b.tree, symbols, name.Range.Start, InlineOptions{})
	require.NoError(t, err)
	assert.Contains(t, reasons, "function is recursive")
}

func TestInline_RejectsTooManyCallSites(t *testing.T) {
	t.Parallel()
	src := "function tick() {\n  return 1;\n}\ntick();\ntick();\n"
	b := newTree(t, "javascript", src)

	_, name, _ := b.addFunction(fixtureFn{
		decl: "function tick() {\n  return 1;\n}", name: "tick", occ: 0,
		body: "{\n  return 1;\n}",
	})
	// "tick()" occurrence 0 is inside the declaration "function tick() {".
	s1 := b.node(b.root, syntax.KindExprStmt, "tick();", 0)
	b.addCall(s1, "tick()", 1, "tick", 1)
	s2 := b.node(b.root, syntax.KindExprStmt, "tick();", 1)
	b.addCall(s2, "tick()", 2, "tick", 2)

	symbols := []*syntax.Symbol{b.symbol("tick", syntax.SymbolFunction, name)}
	reasons, err := CanInline(b.tree, symbols, name.Range.Start, InlineOptions{MaxCallSites: 1})
	require.NoError(t, err)
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "2 call sites, exceeding the inline threshold of 1")
}

func TestInline_RejectsComplexity(t *testing.T) {
	t.Parallel()
	src := "function judge(v) {\n  if (v) {\n    return 1;\n  } else {\n    return 2;\n  }\n}\n"
	b := newTree(t, "javascript", src)

	_, name, body := b.addFunction(fixtureFn{
		decl: "function judge(v) {\n  if (v) {\n    return 1;\n  } else {\n    return 2;\n  }\n}", name: "judge", occ: 0,
		param: "v", pOcc: 0,
		body: "{\n  if (v) {\n    return 1;\n  } else {\n    return 2;\n  }\n}",
	})
	ifNode := b.node(body, syntax.KindIf, "if (v) {\n    return 1;\n  } else {\n    return 2;\n  }", 0)
	ifNode.SetProp(syntax.PropElse, "true")

	symbols := []*syntax.Symbol{b.symbol("judge", syntax.SymbolFunction, name)}
	reasons, err := CanInline(b.tree, symbols, name.Range.Start, InlineOptions{MaxComplexity: 2})
	require.NoError(t, err)
	require.Len(t, reasons, 1)
	assert.Contains(t, reasons[0], "function too complex")
}

func TestInline_NotAFunction(t *testing.T) {
	t.Parallel()
	src := "const total = 1;\n"
	b := newTree(t, "javascript", src)
	decl := b.node(b.root, syntax.KindVarDecl, "const total = 1;", 0)
	declIdent := b.ident(decl, "total", 0, syntax.RoleDecl)

	symbols := []*syntax.Symbol{b.symbol("total", syntax.SymbolConstant, declIdent)}
	_, err := Inline(b.tree, symbols, declIdent.Range.Start, InlineOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, syntax.ErrInvalidArgument)
}

func TestCanInline_Safe(t *testing.T) {
	t.Parallel()
	src := "function twice(v) {\n  return v + v;\n}\nlet r = twice(2);\n"
	b := newTree(t, "javascript", src)

	_, name, body := b.addFunction(fixtureFn{
		decl: "function twice(v) {\n  return v + v;\n}", name: "twice", occ: 0,
		param: "v", pOcc: 0,
		body: "{\n  return v + v;\n}",
	})
	ret := b.node(body, syntax.KindReturn, "return v + v;", 0)
	b.ident(ret, "v", 1, "")
	b.ident(ret, "v", 2, "")

	varDecl := b.node(b.root, syntax.KindVarDecl, "let r = twice(2);", 0)
	// "r" occurrence 0 sits inside the "return" keyword.
	b.ident(varDecl, "r", 1, syntax.RoleDecl)
	b.addCall(varDecl, "twice(2)", 0, "twice", 1, "2")

	symbols := []*syntax.Symbol{b.symbol("twice", syntax.SymbolFunction, name)}
	reasons, err := CanInline(b.tree, symbols, name.Range.Start, InlineOptions{})
	require.NoError(t, err)
	assert.Empty(t, reasons)
}

func TestInlineOptions_Defaults(t *testing.T) {
	t.Parallel()
	opts := InlineOptions{}.withDefaults()
	assert.Equal(t, 10, opts.MaxCallSites)
	assert.Equal(t, 8, opts.MaxComplexity)
	assert.NotEmpty(t, opts.SideEffectCallees)

	custom := InlineOptions{MaxCallSites: 3, MaxComplexity: 2, SideEffectCallees: []string{}}.withDefaults()
	assert.Equal(t, 3, custom.MaxCallSites)
	assert.Equal(t, 2, custom.MaxComplexity)
	assert.Empty(t, custom.SideEffectCallees, "an explicit empty list disables the callee check")
}
