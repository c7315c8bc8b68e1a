// Package refactor implements the rename and inline-function refactoring
// strategies on top of the reference resolver. Both produce edit plans; the
// caller applies them.
package refactor

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/refract-dev/refract/internal/resolve"
	"github.com/refract-dev/refract/internal/syntax"
)

// identPattern is the identifier shape shared by the supported languages:
// a letter, underscore, or dollar sign followed by letters, digits,
// underscores, or dollar signs. Go and Python forbid '$'; their keyword
// tables reject it via langIdent below.
var identPattern = regexp.MustCompile(`^[\p{L}_$][\p{L}\p{Nd}_$]*$`)

var strictIdentPattern = regexp.MustCompile(`^[\p{L}_][\p{L}\p{Nd}_]*$`)

// reservedWords holds, per language, the words that cannot be used as
// identifiers.
var reservedWords = map[string]map[string]bool{
	"javascript": wordSet("break case catch class const continue debugger default delete do else enum export extends false finally for function if import in instanceof let new null return static super switch this throw true try typeof var void while with yield await"),
	"typescript": wordSet("break case catch class const continue debugger default delete do else enum export extends false finally for function if import in instanceof interface let new null return static super switch this throw true try type typeof var void while with yield await"),
	"go":         wordSet("break case chan const continue default defer else fallthrough for func go goto if import interface map package range return select struct switch type var"),
	"python":     wordSet("False None True and as assert async await break class continue def del elif else except finally for from global if import in is lambda nonlocal not or pass raise return try while with yield"),
}

func wordSet(words string) map[string]bool {
	set := make(map[string]bool)
	start := 0
	for i := 0; i <= len(words); i++ {
		if i == len(words) || words[i] == ' ' {
			if i > start {
				set[words[start:i]] = true
			}
			start = i + 1
		}
	}
	return set
}

// ValidIdentifier reports whether name is a syntactically legal identifier
// for the given language. Unknown languages use the permissive shared shape.
func ValidIdentifier(language, name string) bool {
	if name == "" {
		return false
	}
	pattern := identPattern
	switch language {
	case "go", "python":
		pattern = strictIdentPattern
	}
	if !pattern.MatchString(name) {
		return false
	}
	return !reservedWords[language][name]
}

// Rename produces the edit plan renaming the symbol at pos to newName: one
// rename edit per resolved reference, in document order. It fails with
// ErrSymbolNotFound when pos does not fall within an identifier resolving to
// a declared symbol, and with ErrInvalidIdentifier when newName is not a
// legal identifier for the tree's language. On failure no edits are
// returned.
func Rename(tree *syntax.Tree, symbols []*syntax.Symbol, pos syntax.Position, newName string) ([]syntax.CodeEdit, error) {
	sym, err := resolve.SymbolAt(tree, symbols, pos)
	if err != nil {
		return nil, err
	}
	if !ValidIdentifier(tree.Language, newName) {
		return nil, fmt.Errorf("%w: %q is not a legal %s identifier", syntax.ErrInvalidIdentifier, newName, tree.Language)
	}

	refs := resolve.References(tree, sym)
	edits := make([]syntax.CodeEdit, 0, len(refs))
	for _, ref := range refs {
		edits = append(edits, syntax.CodeEdit{
			FilePath: ref.Location.FilePath,
			Range:    ref.Location.Range,
			NewText:  newName,
			Kind:     syntax.EditRename,
		})
	}
	SortEdits(edits)
	return edits, nil
}

// SortEdits orders edits by file path, then by range start. Within a file
// rename edits are non-overlapping by construction (identifier-level
// granularity).
func SortEdits(edits []syntax.CodeEdit) {
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].FilePath != edits[j].FilePath {
			return edits[i].FilePath < edits[j].FilePath
		}
		return edits[i].Range.Start.Before(edits[j].Range.Start)
	})
}
