package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refract-dev/refract"
	"github.com/refract-dev/refract/internal/syntax"
)

func TestParsePosition(t *testing.T) {
	line, col, err := parsePosition("10", "5")
	require.NoError(t, err)
	assert.Equal(t, 9, line, "wire positions are 1-based, engine positions 0-based")
	assert.Equal(t, 4, col)

	line, col, err = parsePosition(" 1 ", "1")
	require.NoError(t, err)
	assert.Zero(t, line)
	assert.Zero(t, col)

	for _, bad := range [][2]string{
		{"0", "1"},  // below the 1-based floor
		{"1", "0"},
		{"-3", "1"},
		{"x", "1"},
		{"1", ""},
	} {
		_, _, err := parsePosition(bad[0], bad[1])
		assert.Error(t, err, "line=%q col=%q", bad[0], bad[1])
	}
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, validateFormat("json"))
	assert.NoError(t, validateFormat("text"))
	assert.Error(t, validateFormat("yaml"))
	assert.Error(t, validateFormat(""))
}

func TestResolveDBPath(t *testing.T) {
	orig := flagDB
	defer func() { flagDB = orig }()

	flagDB = ""
	assert.Equal(t, filepath.Join("/repo", ".refract", "index.db"), resolveDBPath("/repo"))

	flagDB = "custom.db"
	assert.Equal(t, filepath.Join("/repo", "custom.db"), resolveDBPath("/repo"), "relative --db is repo-rooted")

	flagDB = "/abs/path.db"
	assert.Equal(t, "/abs/path.db", resolveDBPath("/repo"))
}

func TestSymbolToCLI(t *testing.T) {
	sym := &refract.Symbol{
		Name:      "handler",
		Kind:      syntax.SymbolFunction,
		Modifiers: []string{"async"},
		Location: refract.Location{
			FilePath: "a.js",
			Range: refract.Range{
				Start: refract.Position{Line: 0, Column: 9, Offset: 9},
				End:   refract.Position{Line: 0, Column: 16, Offset: 16},
			},
		},
	}
	cli := symbolToCLI(sym, "javascript")
	assert.Equal(t, "handler", cli.Name)
	assert.Equal(t, "function", cli.Kind)
	assert.Equal(t, 1, cli.StartLine, "output is 1-based")
	assert.Equal(t, 10, cli.StartCol)
	assert.Equal(t, 17, cli.EndCol)
	assert.Equal(t, "javascript", cli.Language)
}

func TestEditToCLI(t *testing.T) {
	ed := refract.CodeEdit{
		FilePath: "a.js",
		Kind:     syntax.EditRename,
		Range: refract.Range{
			Start: refract.Position{Line: 2, Column: 0},
			End:   refract.Position{Line: 2, Column: 3},
		},
		NewText: "sum",
	}
	cli := editToCLI(ed)
	assert.Equal(t, "rename", cli.Kind)
	assert.Equal(t, 3, cli.StartLine)
	assert.Equal(t, 1, cli.StartCol)
	assert.Equal(t, "sum", cli.NewText)
}

func TestOutputResultText_Symbols(t *testing.T) {
	var buf bytes.Buffer
	err := outputResultText(&buf, CLIResult{Command: "symbols", Results: []CLISymbol{
		{Name: "square", Kind: "function", File: "math.js", StartLine: 1},
	}})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "square")
	assert.Contains(t, out, "math.js")
}

func TestOutputResultText_RefactorRefused(t *testing.T) {
	var buf bytes.Buffer
	err := outputResultText(&buf, CLIResult{Command: "inline", Results: CLIRefactor{
		Success: false,
		Errors:  []string{"function has side effects"},
	}})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Refused:")
	assert.Contains(t, out, "function has side effects")
}

func TestOutputResultText_RefactorPlanned(t *testing.T) {
	var buf bytes.Buffer
	err := outputResultText(&buf, CLIResult{Command: "rename", Results: CLIRefactor{
		Success: true,
		Edits:   []CLIEdit{{File: "a.js", Kind: "rename", StartLine: 1, StartCol: 10, EndLine: 1, EndCol: 16, NewText: "pow2"}},
	}})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "a.js:1:10")
	assert.Contains(t, out, "re-run with --write")
}

func TestOutputResultText_Stats(t *testing.T) {
	var buf bytes.Buffer
	err := outputResultText(&buf, CLIResult{Command: "stats", Results: CLIStats{
		TotalFiles:    2,
		TotalSymbols:  5,
		SymbolsByKind: map[string]int{"function": 3, "class": 2},
	}})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Files: 2")
	assert.Contains(t, out, "Symbols: 5")
	assert.Contains(t, out, "class: 2")
}
