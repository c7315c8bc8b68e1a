package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/refract-dev/refract/internal/syntax"
)

// NewGo returns the Go front end.
func NewGo() Frontend {
	return &tsFrontend{
		name:    "go",
		exts:    []string{".go"},
		grammar: golang.GetLanguage(),
		convert: convertGo,
	}
}

func convertGo(c *cstConverter, cst *sitter.Node, parent *syntax.Node) {
	switch cst.Type() {
	case "function_declaration", "method_declaration", "func_literal":
		convertGoFunction(c, cst, parent)

	case "type_declaration":
		for i := 0; i < int(cst.NamedChildCount()); i++ {
			spec := cst.NamedChild(i)
			if spec.Type() == "type_spec" || spec.Type() == "type_alias" {
				convertGoTypeSpec(c, spec, parent)
			}
		}

	case "block":
		n := c.add(parent, cst, syntax.KindBlock)
		c.convertChildren(cst, n)

	case "var_declaration":
		convertGoVarDecl(c, cst, parent, "var")
	case "const_declaration":
		convertGoVarDecl(c, cst, parent, "const")
	case "short_var_declaration":
		decl := c.add(parent, cst, syntax.KindVarDecl)
		decl.SetProp(syntax.PropKind, "var")
		if left := cst.ChildByFieldName("left"); left != nil {
			for i := 0; i < int(left.NamedChildCount()); i++ {
				if left.NamedChild(i).Type() == "identifier" {
					c.ident(decl, left.NamedChild(i), syntax.RoleDecl)
				}
			}
		}
		if right := cst.ChildByFieldName("right"); right != nil {
			c.convertChildren(right, decl)
		}

	case "identifier", "type_identifier", "package_identifier", "blank_identifier":
		c.ident(parent, cst, "")
	case "field_identifier":
		c.add(parent, cst, syntax.KindPropertyKey)

	case "interpreted_string_literal", "raw_string_literal", "rune_literal":
		c.add(parent, cst, syntax.KindString)
	case "comment":
		c.add(parent, cst, syntax.KindComment)

	case "call_expression":
		c.convertCall(cst, parent, "function", "arguments")

	case "expression_statement":
		n := c.add(parent, cst, syntax.KindExprStmt)
		c.convertChildren(cst, n)
	case "return_statement":
		n := c.add(parent, cst, syntax.KindReturn)
		c.convertChildren(cst, n)

	case "assignment_statement", "inc_statement", "dec_statement":
		n := c.add(parent, cst, syntax.KindAssignment)
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

	case "import_declaration":
		convertGoImport(c, cst, parent)

	default:
		c.passthrough(cst, parent)
	}
}

func convertGoFunction(c *cstConverter, cst *sitter.Node, parent *syntax.Node) {
	fn := c.add(parent, cst, syntax.KindFunction)
	name := cst.ChildByFieldName("name")
	if name != nil {
		fn.SetProp(syntax.PropName, name.Content(c.src))
		if name.Type() == "field_identifier" {
			// Method name: a member key, kept with the declaring role.
			key := c.add(fn, name, syntax.KindPropertyKey)
			key.SetProp(syntax.PropRole, syntax.RoleDecl)
		} else {
			c.ident(fn, name, syntax.RoleDecl)
		}
	}
	for _, field := range []string{"receiver", "parameters"} {
		params := cst.ChildByFieldName(field)
		if params == nil {
			continue
		}
		for i := 0; i < int(params.NamedChildCount()); i++ {
			pd := params.NamedChild(i)
			if pd.Type() != "parameter_declaration" && pd.Type() != "variadic_parameter_declaration" {
				continue
			}
			// One parameter_declaration may bind several names (a, b int).
			for j := 0; j < int(pd.NamedChildCount()); j++ {
				ch := pd.NamedChild(j)
				if ch.Type() != "identifier" {
					continue
				}
				param := c.add(fn, ch, syntax.KindParameter)
				param.SetProp(syntax.PropName, ch.Content(c.src))
				c.ident(param, ch, syntax.RoleDecl)
			}
		}
	}
	if body := cst.ChildByFieldName("body"); body != nil {
		convertGo(c, body, fn)
	}
}

func convertGoTypeSpec(c *cstConverter, spec *sitter.Node, parent *syntax.Node) {
	kind := syntax.KindTypeAlias
	if t := spec.ChildByFieldName("type"); t != nil {
		switch t.Type() {
		case "struct_type":
			kind = syntax.KindClass
		case "interface_type":
			kind = syntax.KindInterface
		}
	}
	n := c.add(parent, spec, kind)
	if name := spec.ChildByFieldName("name"); name != nil {
		n.SetProp(syntax.PropName, name.Content(c.src))
		c.ident(n, name, syntax.RoleDecl)
	}
	if t := spec.ChildByFieldName("type"); t != nil {
		convertGo(c, t, n)
	}
}

func convertGoVarDecl(c *cstConverter, cst *sitter.Node, parent *syntax.Node, flavor string) {
	decl := c.add(parent, cst, syntax.KindVarDecl)
	decl.SetProp(syntax.PropKind, flavor)
	var walkSpecs func(n *sitter.Node)
	walkSpecs = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			spec := n.NamedChild(i)
			switch spec.Type() {
			case "var_spec", "const_spec":
				for j := 0; j < int(spec.NamedChildCount()); j++ {
					ch := spec.NamedChild(j)
					if ch.Type() == "identifier" {
						c.ident(decl, ch, syntax.RoleDecl)
					} else {
						convertGo(c, ch, decl)
					}
				}
			case "var_spec_list", "const_spec_list":
				walkSpecs(spec)
			default:
				convertGo(c, spec, decl)
			}
		}
	}
	walkSpecs(cst)
}

func convertGoImport(c *cstConverter, cst *sitter.Node, parent *syntax.Node) {
	imp := c.add(parent, cst, syntax.KindImport)
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			spec := n.NamedChild(i)
			switch spec.Type() {
			case "import_spec":
				if name := spec.ChildByFieldName("name"); name != nil && name.Type() == "package_identifier" {
					c.ident(imp, name, syntax.RoleDecl)
				}
				if path := spec.ChildByFieldName("path"); path != nil {
					c.add(imp, path, syntax.KindString)
				}
			case "import_spec_list":
				walk(spec)
			}
		}
	}
	walk(cst)
}
