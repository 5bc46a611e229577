package parser

import "github.com/iamrichardD/mcp-server-pinescript/internal/types"

// Node is one AST node. Every node carries a source location.
type Node interface {
	Loc() types.SourceLocation
}

// Program is the AST root: the ordered top-level function-call statements
// of the script. Only the call subset of the grammar is represented; other
// statements are not modeled.
type Program struct {
	Statements []Node
	Location   types.SourceLocation
}

func (p *Program) Loc() types.SourceLocation { return p.Location }

// FunctionCallNode is a call expression. The parameter list preserves
// source order regardless of positional/named mixing.
type FunctionCallNode struct {
	Name       string
	Namespace  string
	Parameters []*ParameterNode
	Location   types.SourceLocation
}

func (n *FunctionCallNode) Loc() types.SourceLocation { return n.Location }

// QualifiedName returns "namespace.name" or the bare name.
func (n *FunctionCallNode) QualifiedName() string {
	if n.Namespace != "" {
		return n.Namespace + "." + n.Name
	}
	return n.Name
}

// ParameterNode is one argument at a call site. Name is empty for
// positional arguments; Index is the positional slot or -1 for named ones.
type ParameterNode struct {
	Name     string
	Index    int
	Value    Node
	Location types.SourceLocation
}

func (n *ParameterNode) Loc() types.SourceLocation { return n.Location }

// LiteralKind tags the declared data type of a literal node.
type LiteralKind string

const (
	LiteralString  LiteralKind = "STRING"
	LiteralNumber  LiteralKind = "NUMBER"
	LiteralBoolean LiteralKind = "BOOLEAN"
)

// LiteralNode is a string, number, or boolean literal argument.
type LiteralNode struct {
	Kind     LiteralKind
	Value    any
	Location types.SourceLocation
}

func (n *LiteralNode) Loc() types.SourceLocation { return n.Location }

// RawExprNode covers argument expressions the call-subset grammar does not
// model (identifiers, arithmetic, history references). The raw source text
// is preserved for the type-inference layer.
type RawExprNode struct {
	Text     string
	Location types.SourceLocation
}

func (n *RawExprNode) Loc() types.SourceLocation { return n.Location }
