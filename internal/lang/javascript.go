package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	ts "github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/refract-dev/refract/internal/syntax"
)

// NewJavaScript returns the JavaScript front end.
func NewJavaScript() Frontend {
	return &tsFrontend{
		name:    "javascript",
		exts:    []string{".js", ".jsx", ".mjs", ".cjs"},
		grammar: javascript.GetLanguage(),
		convert: convertJS,
	}
}

// NewTypeScript returns the TypeScript front end. The grammar is a superset
// of JavaScript's, so conversion shares convertJS with a handful of
// TypeScript-only constructs layered on top.
func NewTypeScript() Frontend {
	return &tsFrontend{
		name:    "typescript",
		exts:    []string{".ts", ".tsx"},
		grammar: ts.GetLanguage(),
		convert: convertJS,
	}
}

// convertJS maps the javascript/typescript CST onto the normalized
// vocabulary.
func convertJS(c *cstConverter, cst *sitter.Node, parent *syntax.Node) {
	switch cst.Type() {
	case "function_declaration", "generator_function_declaration",
		"function_expression", "generator_function", "arrow_function",
		"method_definition":
		convertJSFunction(c, cst, parent)

	case "class_declaration", "class", "abstract_class_declaration":
		convertJSNamedDecl(c, cst, parent, syntax.KindClass)
	case "interface_declaration":
		convertJSNamedDecl(c, cst, parent, syntax.KindInterface)
	case "enum_declaration":
		convertJSNamedDecl(c, cst, parent, syntax.KindEnum)
	case "type_alias_declaration":
		convertJSNamedDecl(c, cst, parent, syntax.KindTypeAlias)
	case "internal_module", "module":
		convertJSNamedDecl(c, cst, parent, syntax.KindNamespace)

	case "statement_block", "class_body", "enum_body":
		n := c.add(parent, cst, syntax.KindBlock)
		c.convertChildren(cst, n)

	case "lexical_declaration", "variable_declaration":
		convertJSVarDecl(c, cst, parent)

	case "identifier", "shorthand_property_identifier",
		"shorthand_property_identifier_pattern", "statement_identifier",
		"type_identifier":
		c.ident(parent, cst, "")

	case "property_identifier", "private_property_identifier":
		c.add(parent, cst, syntax.KindPropertyKey)

	case "string", "template_string", "regex":
		c.add(parent, cst, syntax.KindString)
	case "comment":
		c.add(parent, cst, syntax.KindComment)

	case "call_expression", "new_expression":
		c.convertCall(cst, parent, "function", "arguments")

	case "expression_statement":
		n := c.add(parent, cst, syntax.KindExprStmt)
		c.convertChildren(cst, n)
	case "return_statement":
		n := c.add(parent, cst, syntax.KindReturn)
		c.convertChildren(cst, n)
	case "throw_statement":
		n := c.add(parent, cst, syntax.KindThrow)
		c.convertChildren(cst, n)

	case "assignment_expression", "augmented_assignment_expression":
		n := c.add(parent, cst, syntax.KindAssignment)
		c.convertChildren(cst, n)
	case "update_expression":
		// i++ mutates its operand; normalize as an assignment to it.
		n := c.add(parent, cst, syntax.KindAssignment)
		c.convertChildren(cst, n)

	case "if_statement":
		n := c.add(parent, cst, syntax.KindIf)
		if cst.ChildByFieldName("alternative") != nil {
			n.SetProp(syntax.PropElse, "true")
		}
		c.convertChildren(cst, n)
	case "for_statement", "for_in_statement":
		n := c.add(parent, cst, syntax.KindFor)
		c.convertChildren(cst, n)
	case "while_statement", "do_statement":
		n := c.add(parent, cst, syntax.KindWhile)
		c.convertChildren(cst, n)
	case "try_statement":
		n := c.add(parent, cst, syntax.KindTry)
		c.convertChildren(cst, n)
	case "catch_clause":
		n := c.add(parent, cst, syntax.KindCatch)
		c.convertChildren(cst, n)

	case "import_statement":
		convertJSImport(c, cst, parent)

	default:
		c.passthrough(cst, parent)
	}
}

// convertJSFunction normalizes any function-like construct: name (when
// present) as a decl identifier child, parameters flattened into parameter
// nodes, then the body.
func convertJSFunction(c *cstConverter, cst *sitter.Node, parent *syntax.Node) {
	fn := c.add(parent, cst, syntax.KindFunction)
	if strings.HasPrefix(strings.TrimSpace(fn.Text), "async") {
		fn.SetProp(syntax.PropAsync, "true")
	}

	name := cst.ChildByFieldName("name")
	if name != nil {
		fn.SetProp(syntax.PropName, name.Content(c.src))
		if name.Type() == "property_identifier" {
			// Method names are member keys; they keep their kind but still
			// carry the declaring role for symbol extraction.
			key := c.add(fn, name, syntax.KindPropertyKey)
			key.SetProp(syntax.PropRole, syntax.RoleDecl)
		} else {
			c.ident(fn, name, syntax.RoleDecl)
		}
	}

	params := cst.ChildByFieldName("parameters")
	if params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			convertJSParameter(c, params.NamedChild(i), fn)
		}
	} else if p := cst.ChildByFieldName("parameter"); p != nil {
		// Bare single-parameter arrow function.
		convertJSParameter(c, p, fn)
	}

	if body := cst.ChildByFieldName("body"); body != nil {
		if body.Type() == "statement_block" {
			convertJS(c, body, fn)
		} else {
			// Expression-bodied arrow: wrap so the body child is always a
			// block.
			block := c.add(fn, body, syntax.KindBlock)
			convertJS(c, body, block)
		}
	}
}

// convertJSParameter normalizes one formal parameter, unwrapping TypeScript
// required/optional parameter wrappers and default values.
func convertJSParameter(c *cstConverter, cst *sitter.Node, fn *syntax.Node) {
	param := c.add(fn, cst, syntax.KindParameter)

	pattern := cst
	switch cst.Type() {
	case "required_parameter", "optional_parameter":
		if p := cst.ChildByFieldName("pattern"); p != nil {
			pattern = p
		}
		if v := cst.ChildByFieldName("value"); v != nil {
			param.SetProp(syntax.PropDefault, v.Content(c.src))
		}
	case "assignment_pattern":
		if l := cst.ChildByFieldName("left"); l != nil {
			pattern = l
		}
		if r := cst.ChildByFieldName("right"); r != nil {
			param.SetProp(syntax.PropDefault, r.Content(c.src))
		}
	case "rest_pattern":
		if cst.NamedChildCount() > 0 {
			pattern = cst.NamedChild(0)
		}
	}
	if pattern.Type() == "assignment_pattern" {
		if r := pattern.ChildByFieldName("right"); r != nil {
			param.SetProp(syntax.PropDefault, r.Content(c.src))
		}
		if l := pattern.ChildByFieldName("left"); l != nil {
			pattern = l
		}
	}

	if pattern.Type() == "identifier" {
		param.SetProp(syntax.PropName, pattern.Content(c.src))
		c.ident(param, pattern, syntax.RoleDecl)
		return
	}
	// Destructured parameter: every identifier inside is a binding site.
	bindPatternIdentifiers(c, pattern, param)
}

// bindPatternIdentifiers attaches every identifier within a destructuring
// pattern as a decl identifier.
func bindPatternIdentifiers(c *cstConverter, cst *sitter.Node, parent *syntax.Node) {
	if cst.Type() == "identifier" || cst.Type() == "shorthand_property_identifier_pattern" {
		c.ident(parent, cst, syntax.RoleDecl)
		return
	}
	for i := 0; i < int(cst.NamedChildCount()); i++ {
		bindPatternIdentifiers(c, cst.NamedChild(i), parent)
	}
}

// convertJSNamedDecl normalizes class-like declarations: the name becomes a
// decl identifier child and the remaining children convert in place.
func convertJSNamedDecl(c *cstConverter, cst *sitter.Node, parent *syntax.Node, kind syntax.NodeKind) {
	n := c.add(parent, cst, kind)
	name := cst.ChildByFieldName("name")
	if name != nil {
		n.SetProp(syntax.PropName, name.Content(c.src))
		c.ident(n, name, syntax.RoleDecl)
	}
	c.convertChildrenExcept(cst, n, name)
}

// convertJSVarDecl flattens a let/const/var declaration: one decl
// identifier per declarator name, with initializers converted alongside.
func convertJSVarDecl(c *cstConverter, cst *sitter.Node, parent *syntax.Node) {
	decl := c.add(parent, cst, syntax.KindVarDecl)
	flavor := "var"
	if cst.Type() == "lexical_declaration" {
		flavor = "let"
		if strings.HasPrefix(strings.TrimSpace(decl.Text), "const") {
			flavor = "const"
		}
	}
	decl.SetProp(syntax.PropKind, flavor)

	for i := 0; i < int(cst.NamedChildCount()); i++ {
		d := cst.NamedChild(i)
		if d.Type() != "variable_declarator" {
			convertJS(c, d, decl)
			continue
		}
		if name := d.ChildByFieldName("name"); name != nil {
			if name.Type() == "identifier" {
				c.ident(decl, name, syntax.RoleDecl)
			} else {
				bindPatternIdentifiers(c, name, decl)
			}
		}
		if value := d.ChildByFieldName("value"); value != nil {
			convertJS(c, value, decl)
		}
	}
}

// convertJSImport normalizes an import statement. For "imported as local"
// specifiers only the local alias is a binding; the external name is marked
// so resolution skips it.
func convertJSImport(c *cstConverter, cst *sitter.Node, parent *syntax.Node) {
	imp := c.add(parent, cst, syntax.KindImport)
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			switch child.Type() {
			case "import_specifier":
				name := child.ChildByFieldName("name")
				alias := child.ChildByFieldName("alias")
				if alias != nil {
					c.ident(imp, name, syntax.RoleImported)
					c.ident(imp, alias, syntax.RoleDecl)
				} else if name != nil {
					c.ident(imp, name, syntax.RoleDecl)
				}
			case "namespace_import":
				// import * as x — the sole identifier is the local binding.
				for j := 0; j < int(child.NamedChildCount()); j++ {
					if child.NamedChild(j).Type() == "identifier" {
						c.ident(imp, child.NamedChild(j), syntax.RoleDecl)
					}
				}
			case "identifier":
				// Default import binding.
				c.ident(imp, child, syntax.RoleDecl)
			case "string":
				c.add(imp, child, syntax.KindString)
			default:
				walk(child)
			}
		}
	}
	walk(cst)
}
