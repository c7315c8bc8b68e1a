package syntax

// NodeID is an opaque handle to a node within one parse. Handles are only
// ever compared for identity; nothing outside the producing front end
// interprets them.
type NodeID int

// NoNode is the zero handle, held by symbols whose declaration node is
// unknown (for example symbols hydrated from the on-disk index).
const NoNode NodeID = -1

// NodeKind is the closed vocabulary of normalized AST node kinds shared by
// every front end. Language-specific grammars are mapped onto these kinds at
// the parse boundary; the resolver and refactoring engines never see a
// concrete grammar's node types.
type NodeKind string

const (
	KindSourceFile  NodeKind = "source_file"
	KindFunction    NodeKind = "function"
	KindClass       NodeKind = "class"
	KindInterface   NodeKind = "interface"
	KindTypeAlias   NodeKind = "type_alias"
	KindEnum        NodeKind = "enum"
	KindNamespace   NodeKind = "namespace"
	KindBlock       NodeKind = "block"
	KindVarDecl     NodeKind = "variable_declaration"
	KindParameter   NodeKind = "parameter"
	KindIdentifier  NodeKind = "identifier"
	KindPropertyKey NodeKind = "property_key"
	KindString      NodeKind = "string"
	KindComment     NodeKind = "comment"
	KindCall        NodeKind = "call"
	KindArgument    NodeKind = "argument"
	KindExprStmt    NodeKind = "expression_statement"
	KindReturn      NodeKind = "return"
	KindThrow       NodeKind = "throw"
	KindAssignment  NodeKind = "assignment"
	KindIf          NodeKind = "if"
	KindFor         NodeKind = "for"
	KindWhile       NodeKind = "while"
	KindTry         NodeKind = "try"
	KindCatch       NodeKind = "catch"
	KindImport      NodeKind = "import"
	KindOther       NodeKind = "other"
)

// Property keys used on normalized nodes.
const (
	PropName    = "name"    // declared name on function/class/parameter nodes
	PropRole    = "role"    // identifier role, see Role* constants
	PropKind    = "kind"    // declaration flavor on variable_declaration (let/const/var/...)
	PropDefault = "default" // default value text on parameter nodes
	PropAsync   = "async"   // "true" on asynchronous functions
	PropElse    = "else"    // "true" on if nodes carrying an else branch
)

// Identifier roles.
const (
	// RoleDecl marks an identifier that introduces a new binding: a function
	// or class name, a declarator name, a parameter name, an import alias.
	RoleDecl = "decl"
	// RoleImported marks the external name of an aliasing import
	// ("imported as local"); only the local alias participates in
	// resolution.
	RoleImported = "imported"
)

// Node is one node of the normalized AST. Nodes are built once by a front
// end and immutable afterwards. Text is the source slice the node spans.
type Node struct {
	ID       NodeID
	Kind     NodeKind
	Range    Range
	Text     string
	Props    map[string]string
	Children []*Node
	Parent   *Node
}

// Prop returns the named property, or "" when unset.
func (n *Node) Prop(key string) string {
	if n.Props == nil {
		return ""
	}
	return n.Props[key]
}

// SetProp records a property, allocating the map on first use.
func (n *Node) SetProp(key, value string) {
	if n.Props == nil {
		n.Props = make(map[string]string, 2)
	}
	n.Props[key] = value
}

// AddChild appends c and sets its parent back-reference.
func (n *Node) AddChild(c *Node) {
	c.Parent = n
	n.Children = append(n.Children, c)
}

// Tree is one parse of one file: the normalized AST plus the scope arena
// built alongside it. A Tree is immutable once returned by a front end and
// discarded when the file is re-parsed.
type Tree struct {
	FilePath string
	Language string
	Source   []byte
	Root     *Node
	Scopes   *ScopeTable

	nodes []*Node
}

// NewTree creates an empty tree for filePath. Front ends allocate all nodes
// through NewNode so every node has a stable ID within the parse.
func NewTree(filePath, language string, source []byte) *Tree {
	return &Tree{
		FilePath: filePath,
		Language: language,
		Source:   source,
		Scopes:   NewScopeTable(),
	}
}

// NewNode allocates a node in the tree's arena and assigns its ID.
func (t *Tree) NewNode(kind NodeKind, rng Range, text string) *Node {
	n := &Node{ID: NodeID(len(t.nodes)), Kind: kind, Range: rng, Text: text}
	t.nodes = append(t.nodes, n)
	return n
}

// NodeByID returns the node with the given handle, or nil for NoNode or an
// out-of-range handle.
func (t *Tree) NodeByID(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// NodeCount returns the number of nodes allocated in the tree.
func (t *Tree) NodeCount() int { return len(t.nodes) }

// Walk visits n and its descendants in document (preorder) order. Returning
// false from fn skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// NodeAt returns the deepest node whose range contains pos, or nil.
func NodeAt(root *Node, pos Position) *Node {
	if root == nil || !root.Range.Contains(pos) {
		return nil
	}
	best := root
	for {
		advanced := false
		for _, c := range best.Children {
			if c.Range.Contains(pos) {
				best = c
				advanced = true
				break
			}
		}
		if !advanced {
			return best
		}
	}
}
