package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/refract-dev/refract/internal/syntax"
)

// NewPython returns the Python front end.
func NewPython() Frontend {
	return &tsFrontend{
		name:    "python",
		exts:    []string{".py", ".pyi"},
		grammar: python.GetLanguage(),
		convert: convertPython,
	}
}

func convertPython(c *cstConverter, cst *sitter.Node, parent *syntax.Node) {
	switch cst.Type() {
	case "function_definition":
		convertPyFunction(c, cst, parent)
	case "class_definition":
		n := c.add(parent, cst, syntax.KindClass)
		if name := cst.ChildByFieldName("name"); name != nil {
			n.SetProp(syntax.PropName, name.Content(c.src))
			c.ident(n, name, syntax.RoleDecl)
		}
		if body := cst.ChildByFieldName("body"); body != nil {
			convertPython(c, body, n)
		}

	case "block":
		n := c.add(parent, cst, syntax.KindBlock)
		c.convertChildren(cst, n)

	case "assignment":
		// A plain assignment introduces (or rebinds) a name in the current
		// scope, matching Python's local-by-default binding rule.
		convertPyAssignment(c, cst, parent)
	case "augmented_assignment":
		n := c.add(parent, cst, syntax.KindAssignment)
		c.convertChildren(cst, n)

	case "identifier":
		// Python has no distinct member-key token; the attribute field of
		// an attribute access is the key.
		if p := cst.Parent(); p != nil && p.Type() == "attribute" {
			if attr := p.ChildByFieldName("attribute"); attr != nil &&
				attr.StartByte() == cst.StartByte() && attr.EndByte() == cst.EndByte() {
				c.add(parent, cst, syntax.KindPropertyKey)
				return
			}
		}
		c.ident(parent, cst, "")

	case "string", "concatenated_string":
		c.add(parent, cst, syntax.KindString)
	case "comment":
		c.add(parent, cst, syntax.KindComment)

	case "call":
		c.convertCall(cst, parent, "function", "arguments")

	case "expression_statement":
		// Python wraps assignments in expression statements; unwrap a sole
		// assignment child so statement context detection stays uniform.
		if cst.NamedChildCount() == 1 && cst.NamedChild(0).Type() == "assignment" {
			convertPyAssignment(c, cst.NamedChild(0), parent)
			return
		}
		n := c.add(parent, cst, syntax.KindExprStmt)
		c.convertChildren(cst, n)
	case "return_statement":
		n := c.add(parent, cst, syntax.KindReturn)
		c.convertChildren(cst, n)
	case "raise_statement":
		n := c.add(parent, cst, syntax.KindThrow)
		c.convertChildren(cst, n)

	case "if_statement":
		n := c.add(parent, cst, syntax.KindIf)
		if cst.ChildByFieldName("alternative") != nil {
			n.SetProp(syntax.PropElse, "true")
		}
		c.convertChildren(cst, n)
	case "for_statement":
		n := c.add(parent, cst, syntax.KindFor)
		c.convertChildren(cst, n)
	case "while_statement":
		n := c.add(parent, cst, syntax.KindWhile)
		c.convertChildren(cst, n)
	case "try_statement":
		n := c.add(parent, cst, syntax.KindTry)
		c.convertChildren(cst, n)
	case "except_clause":
		n := c.add(parent, cst, syntax.KindCatch)
		c.convertChildren(cst, n)

	case "import_statement", "import_from_statement":
		convertPyImport(c, cst, parent)

	default:
		c.passthrough(cst, parent)
	}
}

func convertPyFunction(c *cstConverter, cst *sitter.Node, parent *syntax.Node) {
	fn := c.add(parent, cst, syntax.KindFunction)
	if strings.HasPrefix(strings.TrimSpace(fn.Text), "async") {
		fn.SetProp(syntax.PropAsync, "true")
	}
	if name := cst.ChildByFieldName("name"); name != nil {
		fn.SetProp(syntax.PropName, name.Content(c.src))
		c.ident(fn, name, syntax.RoleDecl)
	}
	if params := cst.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			convertPyParameter(c, params.NamedChild(i), fn)
		}
	}
	if body := cst.ChildByFieldName("body"); body != nil {
		convertPython(c, body, fn)
	}
}

func convertPyParameter(c *cstConverter, cst *sitter.Node, fn *syntax.Node) {
	param := c.add(fn, cst, syntax.KindParameter)
	pattern := cst
	switch cst.Type() {
	case "default_parameter", "typed_default_parameter":
		if n := cst.ChildByFieldName("name"); n != nil {
			pattern = n
		}
		if v := cst.ChildByFieldName("value"); v != nil {
			param.SetProp(syntax.PropDefault, v.Content(c.src))
		}
	case "typed_parameter", "list_splat_pattern", "dictionary_splat_pattern":
		if cst.NamedChildCount() > 0 {
			pattern = cst.NamedChild(0)
		}
	}
	if pattern.Type() == "identifier" {
		param.SetProp(syntax.PropName, pattern.Content(c.src))
		c.ident(param, pattern, syntax.RoleDecl)
	}
}

func convertPyAssignment(c *cstConverter, cst *sitter.Node, parent *syntax.Node) {
	decl := c.add(parent, cst, syntax.KindVarDecl)
	decl.SetProp(syntax.PropKind, "assign")
	left := cst.ChildByFieldName("left")
	if left != nil {
		if left.Type() == "identifier" {
			c.ident(decl, left, syntax.RoleDecl)
		} else {
			convertPython(c, left, decl)
		}
	}
	if right := cst.ChildByFieldName("right"); right != nil {
		convertPython(c, right, decl)
	}
}

func convertPyImport(c *cstConverter, cst *sitter.Node, parent *syntax.Node) {
	imp := c.add(parent, cst, syntax.KindImport)
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case "aliased_import":
				if name := child.ChildByFieldName("name"); name != nil {
					c.ident(imp, name, syntax.RoleImported)
				}
				if alias := child.ChildByFieldName("alias"); alias != nil {
					c.ident(imp, alias, syntax.RoleDecl)
				}
			case "dotted_name":
				// An unaliased import binds its first component.
				if child.NamedChildCount() > 0 && child.NamedChild(0).Type() == "identifier" {
					c.ident(imp, child.NamedChild(0), syntax.RoleDecl)
				}
			case "identifier":
				c.ident(imp, child, syntax.RoleDecl)
			default:
				walk(child)
			}
		}
	}
	walk(cst)
}
