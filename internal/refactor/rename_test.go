package refactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refract-dev/refract/internal/syntax"
)

func TestValidIdentifier(t *testing.T) {
	t.Parallel()
	tests := []struct {
		language string
		name     string
		want     bool
	}{
		{"javascript", "total", true},
		{"javascript", "$el", true},
		{"javascript", "_x9", true},
		{"javascript", "9lives", false},
		{"javascript", "with", false},
		{"javascript", "", false},
		{"javascript", "a-b", false},
		{"typescript", "interface", false},
		{"typescript", "$store", true},
		{"go", "$x", false},
		{"go", "count", true},
		{"go", "func", false},
		{"python", "lambda", false},
		{"python", "método", true},
		{"unknown", "$ok", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidIdentifier(tt.language, tt.name),
			"ValidIdentifier(%q, %q)", tt.language, tt.name)
	}
}

func TestRename_AllReferences(t *testing.T) {
	t.Parallel()
	src := "const total = 1;\nuse(total);\nlog(total);\n"
	b := newTree(t, "javascript", src)

	decl := b.node(b.root, syntax.KindVarDecl, "const total = 1;", 0)
	declIdent := b.ident(decl, "total", 0, syntax.RoleDecl)
	useCall := b.addCall(b.root, "use(total)", 0, "use", 0)
	b.ident(useCall, "total", 1, "")
	logCall := b.addCall(b.root, "log(total)", 0, "log", 0)
	b.ident(logCall, "total", 2, "")

	sym := b.symbol("total", syntax.SymbolConstant, declIdent)
	edits, err := Rename(b.tree, []*syntax.Symbol{sym}, declIdent.Range.Start, "sum")
	require.NoError(t, err)

	require.Len(t, edits, 3, "every reference gets exactly one edit")
	for _, ed := range edits {
		assert.Equal(t, syntax.EditRename, ed.Kind)
		assert.Equal(t, "sum", ed.NewText)
		assert.Equal(t, b.tree.FilePath, ed.FilePath)
	}
	for i := 1; i < len(edits); i++ {
		assert.True(t, edits[i-1].Range.Start.Before(edits[i].Range.Start), "sorted by position")
	}
}

func TestRename_ShadowedOccurrencesUntouched(t *testing.T) {
	t.Parallel()
	src := "let x = 1;\nfunction f(x) {\n  return x;\n}\nsend(x);\n"
	b := newTree(t, "javascript", src)

	outerDecl := b.node(b.root, syntax.KindVarDecl, "let x = 1;", 0)
	outerIdent := b.ident(outerDecl, "x", 0, syntax.RoleDecl)
	_, _, body := b.addFunction(fixtureFn{
		decl: "function f(x) {\n  return x;\n}", name: "f", occ: 1,
		param: "x", pOcc: 1,
		body: "{\n  return x;\n}",
	})
	ret := b.node(body, syntax.KindReturn, "return x;", 0)
	b.ident(ret, "x", 2, "")
	send := b.addCall(b.root, "send(x)", 0, "send", 0)
	b.ident(send, "x", 3, "")

	sym := b.symbol("x", syntax.SymbolVariable, outerIdent)
	edits, err := Rename(b.tree, []*syntax.Symbol{sym}, outerIdent.Range.Start, "y")
	require.NoError(t, err)

	require.Len(t, edits, 2, "the shadowed parameter and body usage stay")
	assert.Equal(t, 0, edits[0].Range.Start.Line)
	assert.Equal(t, 4, edits[1].Range.Start.Line)
}

func TestRename_InvalidIdentifier(t *testing.T) {
	t.Parallel()
	src := "const total = 1;\n"
	b := newTree(t, "javascript", src)
	decl := b.node(b.root, syntax.KindVarDecl, "const total = 1;", 0)
	declIdent := b.ident(decl, "total", 0, syntax.RoleDecl)
	sym := b.symbol("total", syntax.SymbolConstant, declIdent)

	for _, bad := range []string{"9lives", "while", "a b", ""} {
		edits, err := Rename(b.tree, []*syntax.Symbol{sym}, declIdent.Range.Start, bad)
		require.Error(t, err, "newName %q", bad)
		assert.ErrorIs(t, err, syntax.ErrInvalidIdentifier)
		assert.Empty(t, edits, "failed rename plans nothing")
	}
}

func TestRename_SymbolNotFound(t *testing.T) {
	t.Parallel()
	src := "const total = 1;\n"
	b := newTree(t, "javascript", src)
	decl := b.node(b.root, syntax.KindVarDecl, "const total = 1;", 0)
	declIdent := b.ident(decl, "total", 0, syntax.RoleDecl)
	sym := b.symbol("total", syntax.SymbolConstant, declIdent)

	// Position on the "const" keyword.
	_, err := Rename(b.tree, []*syntax.Symbol{sym}, syntax.Position{Line: 0, Column: 1, Offset: 1}, "sum")
	require.Error(t, err)
	assert.ErrorIs(t, err, syntax.ErrSymbolNotFound)
}

func TestSortEdits(t *testing.T) {
	t.Parallel()
	edits := []syntax.CodeEdit{
		{FilePath: "b.js", Range: syntax.Range{Start: syntax.Position{Line: 1}}},
		{FilePath: "a.js", Range: syntax.Range{Start: syntax.Position{Line: 9}}},
		{FilePath: "a.js", Range: syntax.Range{Start: syntax.Position{Line: 2}}},
	}
	SortEdits(edits)
	assert.Equal(t, "a.js", edits[0].FilePath)
	assert.Equal(t, 2, edits[0].Range.Start.Line)
	assert.Equal(t, 9, edits[1].Range.Start.Line)
	assert.Equal(t, "b.js", edits[2].FilePath)
}
