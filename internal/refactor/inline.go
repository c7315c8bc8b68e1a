package refactor

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/refract-dev/refract/internal/resolve"
	"github.com/refract-dev/refract/internal/syntax"
)

// InlineOptions configures the inline safety gate.
type InlineOptions struct {
	// MaxCallSites bounds how many call sites may be rewritten.
	MaxCallSites int
	// MaxComplexity bounds the simplified cyclomatic score of the body.
	MaxComplexity int
	// SideEffectCallees lists callee names, or "prefix." forms, whose
	// presence in the body marks it side-effecting.
	SideEffectCallees []string
}

// DefaultInlineOptions returns the default thresholds and the default set of
// side-effecting constructs.
func DefaultInlineOptions() InlineOptions {
	return InlineOptions{
		MaxCallSites:  10,
		MaxComplexity: 8,
		SideEffectCallees: []string{
			"console.", "process.", "document.", "window.",
			"alert", "prompt", "confirm",
			"print", "println", "fmt.", "log.", "os.", "panic",
		},
	}
}

func (o InlineOptions) withDefaults() InlineOptions {
	d := DefaultInlineOptions()
	if o.MaxCallSites <= 0 {
		o.MaxCallSites = d.MaxCallSites
	}
	if o.MaxComplexity <= 0 {
		o.MaxComplexity = d.MaxComplexity
	}
	if o.SideEffectCallees == nil {
		o.SideEffectCallees = d.SideEffectCallees
	}
	return o
}

// InlineResult is the outcome of an inline operation. A rejection carries
// the gate's reasons in Errors and no edits; success carries the full edit
// plan and any variable-rename warnings. Inlining is never partially
// applied.
type InlineResult struct {
	Success  bool
	Edits    []syntax.CodeEdit
	Errors   []string
	Warnings []string
}

// CanInline evaluates the safety gate for the function at pos and returns
// the rejection reasons, or an empty slice when inlining is safe. The gate
// is an unordered set of independent checks; every failing check contributes
// a reason.
func CanInline(tree *syntax.Tree, symbols []*syntax.Symbol, pos syntax.Position, opts InlineOptions) ([]string, error) {
	sym, fn, body, err := inlineTarget(tree, symbols, pos)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	calls := callSites(tree, sym)
	return safetyReasons(sym, fn, body, calls, opts), nil
}

// Inline produces the edit plan replacing every call site of the function at
// pos with its substituted body and deleting the declaration. When the
// safety gate rejects, the result carries the reasons and no edits. A
// function with zero call sites succeeds with only the deletion edit.
func Inline(tree *syntax.Tree, symbols []*syntax.Symbol, pos syntax.Position, opts InlineOptions) (*InlineResult, error) {
	sym, fn, body, err := inlineTarget(tree, symbols, pos)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	calls := callSites(tree, sym)

	if reasons := safetyReasons(sym, fn, body, calls, opts); len(reasons) > 0 {
		return &InlineResult{Success: false, Errors: reasons}, nil
	}

	var (
		edits    []syntax.CodeEdit
		warnings []string
	)
	for _, call := range calls {
		text, w := substituteCall(tree, fn, body, call)
		warnings = append(warnings, w...)
		edits = append(edits, syntax.CodeEdit{
			FilePath: tree.FilePath,
			Range:    call.Range,
			NewText:  text,
			Kind:     syntax.EditInline,
		})
	}
	SortEdits(edits)
	edits = append(edits, syntax.CodeEdit{
		FilePath: tree.FilePath,
		Range:    fn.Range,
		Kind:     syntax.EditDelete,
	})
	return &InlineResult{Success: true, Edits: edits, Warnings: warnings}, nil
}

// inlineTarget locates the function symbol at pos along with its declaration
// and body nodes.
func inlineTarget(tree *syntax.Tree, symbols []*syntax.Symbol, pos syntax.Position) (*syntax.Symbol, *syntax.Node, *syntax.Node, error) {
	sym, err := resolve.SymbolAt(tree, symbols, pos)
	if err != nil {
		return nil, nil, nil, err
	}
	if sym.Kind != syntax.SymbolFunction {
		return nil, nil, nil, fmt.Errorf("%w: %q is a %s, not a function", syntax.ErrInvalidArgument, sym.Name, sym.Kind)
	}
	decl := tree.NodeByID(sym.Decl)
	if decl == nil || decl.Parent == nil || decl.Parent.Kind != syntax.KindFunction {
		return nil, nil, nil, fmt.Errorf("%w: declaration node for %q is not a function", syntax.ErrInvariant, sym.Name)
	}
	fn := decl.Parent
	var body *syntax.Node
	for _, c := range fn.Children {
		if c.Kind == syntax.KindBlock {
			body = c
		}
	}
	if body == nil {
		return nil, nil, nil, fmt.Errorf("%w: function %q has no body", syntax.ErrInvalidArgument, sym.Name)
	}
	return sym, fn, body, nil
}

// callSites returns the call nodes whose callee is a usage of sym, in
// document order (References already sorts).
func callSites(tree *syntax.Tree, sym *syntax.Symbol) []*syntax.Node {
	var calls []*syntax.Node
	for _, ref := range resolve.References(tree, sym) {
		if ref.Kind != syntax.RefUsage {
			continue
		}
		n := tree.NodeByID(ref.Node)
		if n == nil || n.Parent == nil || n.Parent.Kind != syntax.KindCall {
			continue
		}
		if len(n.Parent.Children) > 0 && n.Parent.Children[0] == n {
			calls = append(calls, n.Parent)
		}
	}
	return calls
}

// safetyReasons runs the independent safety checks and collects every
// failure.
func safetyReasons(sym *syntax.Symbol, fn, body *syntax.Node, calls []*syntax.Node, opts InlineOptions) []string {
	var reasons []string

	if hasSideEffects(body, opts.SideEffectCallees) {
		reasons = append(reasons, "function has side effects")
	}
	if len(calls) > opts.MaxCallSites {
		reasons = append(reasons, fmt.Sprintf(
			"function has %d call sites, exceeding the inline threshold of %d",
			len(calls), opts.MaxCallSites))
	}
	if score := complexityScore(body); score > opts.MaxComplexity {
		reasons = append(reasons, fmt.Sprintf(
			"function too complex: score %d exceeds threshold %d",
			score, opts.MaxComplexity))
	}
	if isRecursive(body, sym.Name) {
		reasons = append(reasons, "function is recursive")
	}
	return reasons
}

// hasSideEffects reports whether the body contains a throw, a call to a
// configured side-effecting callee, or an assignment to anything other than
// a local declared within the body (for-loop counters are locals by
// construction of the normalized tree).
func hasSideEffects(body *syntax.Node, callees []string) bool {
	locals := localDeclNames(body)
	found := false
	syntax.Walk(body, func(n *syntax.Node) bool {
		if found {
			return false
		}
		switch n.Kind {
		case syntax.KindThrow:
			found = true
			return false
		case syntax.KindCall:
			if len(n.Children) > 0 && matchesCallee(n.Children[0].Text, callees) {
				found = true
				return false
			}
		case syntax.KindAssignment:
			if len(n.Children) == 0 {
				return true
			}
			target := n.Children[0]
			if target.Kind != syntax.KindIdentifier || !locals[target.Text] {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

func matchesCallee(callee string, patterns []string) bool {
	for _, p := range patterns {
		if strings.HasSuffix(p, ".") {
			if strings.HasPrefix(callee, p) {
				return true
			}
		} else if callee == p {
			return true
		}
	}
	return false
}

// complexityScore computes the simplified cyclomatic score: 1, plus one per
// branching construct, plus one per five body lines.
func complexityScore(body *syntax.Node) int {
	score := 1
	syntax.Walk(body, func(n *syntax.Node) bool {
		switch n.Kind {
		case syntax.KindIf:
			score++
			if n.Prop(syntax.PropElse) == "true" {
				score++
			}
		case syntax.KindFor, syntax.KindWhile, syntax.KindTry, syntax.KindCatch:
			score++
		}
		return true
	})
	lines := body.Range.End.Line - body.Range.Start.Line + 1
	score += lines / 5
	return score
}

// isRecursive reports whether the body calls the function's own name.
func isRecursive(body *syntax.Node, name string) bool {
	recursive := false
	syntax.Walk(body, func(n *syntax.Node) bool {
		if recursive {
			return false
		}
		if n.Kind == syntax.KindCall && len(n.Children) > 0 && n.Children[0].Text == name {
			recursive = true
			return false
		}
		return true
	})
	return recursive
}

// localDeclNames collects the names declared by variable declarations within
// the body, not descending into nested functions (their locals belong to
// them).
func localDeclNames(body *syntax.Node) map[string]bool {
	names := make(map[string]bool)
	syntax.Walk(body, func(n *syntax.Node) bool {
		if n != body && n.Kind == syntax.KindFunction {
			return false
		}
		if n.Kind == syntax.KindVarDecl {
			for _, c := range n.Children {
				if c.Kind == syntax.KindIdentifier && c.Prop(syntax.PropRole) == syntax.RoleDecl {
					names[c.Text] = true
				}
			}
		}
		return true
	})
	return names
}

// substituteCall builds the replacement text for one call site: parameter
// substitution, conflict renaming, return stripping, and async wrapping, in
// that order.
func substituteCall(tree *syntax.Tree, fn, body, call *syntax.Node) (string, []string) {
	text := innerBodyText(body)

	// Parameter substitution, in declaration order.
	args := callArguments(call)
	for i, p := range functionParams(fn) {
		name := p.Prop(syntax.PropName)
		if name == "" {
			continue
		}
		value := ""
		if i < len(args) {
			value = args[i]
		} else if def := p.Prop(syntax.PropDefault); def != "" {
			value = def
		} else {
			value = missingArgumentText(tree.Language)
		}
		text = replaceWholeWord(text, name, value)
	}

	// Variable-conflict renaming against the call site's scope chain.
	var warnings []string
	locals := localDeclNames(body)
	for _, name := range sortedNames(locals) {
		if !resolve.BoundInScopeChain(tree, call, name) {
			continue
		}
		unique := name + "_inline"
		for i := 1; resolve.BoundInScopeChain(tree, call, unique) || locals[unique]; i++ {
			unique = fmt.Sprintf("%s_inline%d", name, i)
		}
		text = replaceWholeWord(text, name, unique)
		warnings = append(warnings, fmt.Sprintf(
			"local %q renamed to %q: name already bound at call site %s:%d",
			name, unique, tree.FilePath, call.Range.Start.Line+1))
	}

	exprContext := call.Parent != nil && call.Parent.Kind != syntax.KindExprStmt
	async := fn.Prop(syntax.PropAsync) == "true"

	switch {
	case async && exprContext:
		// Keep return intact; the wrapping closure yields the value and
		// keeps awaited sub-expressions valid.
		text = "(async () => { " + text + " })()"
	case exprContext:
		text = stripLeadingReturn(text)
	}
	return text, warnings
}

// functionParams returns the parameter nodes of fn in declaration order.
func functionParams(fn *syntax.Node) []*syntax.Node {
	var params []*syntax.Node
	for _, c := range fn.Children {
		if c.Kind == syntax.KindParameter {
			params = append(params, c)
		}
	}
	return params
}

// callArguments returns the source text of each argument of a call, in
// order.
func callArguments(call *syntax.Node) []string {
	var args []string
	for _, c := range call.Children {
		if c.Kind == syntax.KindArgument {
			args = append(args, strings.TrimSpace(c.Text))
		}
	}
	return args
}

// innerBodyText returns the body's source with surrounding braces removed
// and per-line indentation trimmed.
func innerBodyText(body *syntax.Node) string {
	text := strings.TrimSpace(body.Text)
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		text = text[1 : len(text)-1]
	}
	lines := strings.Split(text, "\n")
	var out []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// stripLeadingReturn turns a single-return body into a value expression for
// expression-context call sites.
func stripLeadingReturn(text string) string {
	rest, ok := strings.CutPrefix(text, "return")
	if !ok {
		return text
	}
	rest = strings.TrimSpace(rest)
	rest = strings.TrimSuffix(rest, ";")
	return strings.TrimSpace(rest)
}

// replaceWholeWord substitutes every whole-word occurrence of name in text.
func replaceWholeWord(text, name, replacement string) string {
	if name == "" || name == replacement {
		return text
	}
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\b`)
	return re.ReplaceAllLiteralString(text, replacement)
}

// missingArgumentText is the value substituted for an omitted argument with
// no declared default.
func missingArgumentText(language string) string {
	switch language {
	case "python":
		return "None"
	case "go":
		return "nil"
	default:
		return "undefined"
	}
}

func sortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	// Deterministic order keeps warnings and generated names stable.
	sort.Strings(names)
	return names
}
