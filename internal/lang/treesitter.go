package lang

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/refract-dev/refract/internal/syntax"
)

// convertFunc maps one concrete CST node (and, recursively, its subtree)
// into normalized nodes attached under parent.
type convertFunc func(c *cstConverter, cst *sitter.Node, parent *syntax.Node)

// tsFrontend is the shared tree-sitter front end: grammar plus a
// language-specific conversion function. A fresh parser is created per
// Parse call, so front ends are safe for concurrent parsing.
type tsFrontend struct {
	name     string
	exts     []string
	grammar  *sitter.Language
	convert  convertFunc
	disposed bool
}

func (f *tsFrontend) Name() string         { return f.name }
func (f *tsFrontend) Extensions() []string { return f.exts }

func (f *tsFrontend) Parse(ctx context.Context, code []byte, filePath string) (*syntax.Tree, error) {
	if f.disposed {
		return nil, fmt.Errorf("%w: front end %s is disposed", syntax.ErrInvalidArgument, f.name)
	}
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(f.grammar)

	cst, err := parser.ParseCtx(ctx, nil, code)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filePath, err)
	}
	defer cst.Close()

	tree := syntax.NewTree(filePath, f.name, code)
	root := tree.NewNode(syntax.KindSourceFile, rangeOf(cst.RootNode()), string(code))
	tree.Root = root

	c := &cstConverter{tree: tree, src: code, convert: f.convert}
	c.convertChildren(cst.RootNode(), root)
	return tree, nil
}

func (f *tsFrontend) ExtractSymbols(tree *syntax.Tree) ([]*syntax.Symbol, error) {
	return extractSymbols(tree)
}

func (f *tsFrontend) Validate() Report {
	r := Report{Valid: true}
	if f.grammar == nil {
		r.Valid = false
		r.Errors = append(r.Errors, fmt.Sprintf("%s: grammar not loaded", f.name))
	}
	if f.disposed {
		r.Valid = false
		r.Errors = append(r.Errors, fmt.Sprintf("%s: front end disposed", f.name))
	}
	return r
}

func (f *tsFrontend) Dispose() { f.disposed = true }

// cstConverter carries the per-parse state of a CST-to-normalized-AST
// conversion.
type cstConverter struct {
	tree    *syntax.Tree
	src     []byte
	convert convertFunc
}

// rangeOf translates tree-sitter's 0-based points and byte offsets into the
// engine's convention.
func rangeOf(cst *sitter.Node) syntax.Range {
	return syntax.Range{
		Start: syntax.Position{
			Line:   int(cst.StartPoint().Row),
			Column: int(cst.StartPoint().Column),
			Offset: int(cst.StartByte()),
		},
		End: syntax.Position{
			Line:   int(cst.EndPoint().Row),
			Column: int(cst.EndPoint().Column),
			Offset: int(cst.EndByte()),
		},
	}
}

// add allocates a normalized node for cst and attaches it under parent.
func (c *cstConverter) add(parent *syntax.Node, cst *sitter.Node, kind syntax.NodeKind) *syntax.Node {
	n := c.tree.NewNode(kind, rangeOf(cst), cst.Content(c.src))
	parent.AddChild(n)
	return n
}

// ident attaches an identifier node for cst with the given role ("" for
// plain occurrences).
func (c *cstConverter) ident(parent *syntax.Node, cst *sitter.Node, role string) *syntax.Node {
	n := c.add(parent, cst, syntax.KindIdentifier)
	if role != "" {
		n.SetProp(syntax.PropRole, role)
	}
	return n
}

// convertChildren converts every named child of cst under parent.
func (c *cstConverter) convertChildren(cst *sitter.Node, parent *syntax.Node) {
	for i := 0; i < int(cst.NamedChildCount()); i++ {
		c.convert(c, cst.NamedChild(i), parent)
	}
}

// convertChildrenExcept converts the named children of cst under parent,
// skipping the given CST nodes (already handled by the caller).
func (c *cstConverter) convertChildrenExcept(cst *sitter.Node, parent *syntax.Node, skip ...*sitter.Node) {
	for i := 0; i < int(cst.NamedChildCount()); i++ {
		child := cst.NamedChild(i)
		skipped := false
		for _, s := range skip {
			if s != nil && child.StartByte() == s.StartByte() && child.EndByte() == s.EndByte() {
				skipped = true
				break
			}
		}
		if !skipped {
			c.convert(c, child, parent)
		}
	}
}

// passthrough attaches an "other" node for cst and converts its children.
func (c *cstConverter) passthrough(cst *sitter.Node, parent *syntax.Node) *syntax.Node {
	n := c.add(parent, cst, syntax.KindOther)
	c.convertChildren(cst, n)
	return n
}

// convertCall normalizes a call: the callee subtree first, then one
// argument node per argument carrying its source text.
func (c *cstConverter) convertCall(cst *sitter.Node, parent *syntax.Node, calleeField, argsField string) *syntax.Node {
	call := c.add(parent, cst, syntax.KindCall)
	callee := cst.ChildByFieldName(calleeField)
	if callee != nil {
		c.convert(c, callee, call)
	}
	if args := cst.ChildByFieldName(argsField); args != nil {
		for i := 0; i < int(args.NamedChildCount()); i++ {
			arg := args.NamedChild(i)
			wrapper := c.add(call, arg, syntax.KindArgument)
			c.convert(c, arg, wrapper)
		}
	}
	return call
}
