package ast

type NodeType string

const (
	NodeProgram        NodeType = "Program"
	NodeClassDecl      NodeType = "ClassDecl"
	NodeFieldDecl      NodeType = "FieldDecl"
	NodeFormal         NodeType = "Formal"
	NodeProcDecl       NodeType = "ProcDecl"
	NodeFunDecl        NodeType = "FunDecl"
	NodeVar            NodeType = "Var"
	NodeStmBlock       NodeType = "StmBlock"
	NodeStmVarDecl     NodeType = "StmVarDecl"
	NodeStmIf          NodeType = "StmIf"
	NodeStmWhile       NodeType = "StmWhile"
	NodeStmOutput      NodeType = "StmOutput"
	NodeStmAssign      NodeType = "StmAssign"
	NodeStmArrayAssign NodeType = "StmArrayAssign"
	NodeStmCall        NodeType = "StmCall"
	NodeExpInteger     NodeType = "ExpInteger"
	NodeExpTrue        NodeType = "ExpTrue"
	NodeExpFalse       NodeType = "ExpFalse"
	NodeExpVar         NodeType = "ExpVar"
	NodeExpSelf        NodeType = "ExpSelf"
	NodeExpNot         NodeType = "ExpNot"
	NodeExpIsnull      NodeType = "ExpIsnull"
	NodeExpOp          NodeType = "ExpOp"
	NodeExpArrayLookup NodeType = "ExpArrayLookup"
	NodeExpArrayLength NodeType = "ExpArrayLength"
	NodeExpNewArray    NodeType = "ExpNewArray"
	NodeExpNewObject   NodeType = "ExpNewObject"
	NodeExpCall        NodeType = "ExpCall"
	NodeTypeInt        NodeType = "TypeInt"
	NodeTypeBoolean    NodeType = "TypeBoolean"
	NodeTypeClass      NodeType = "TypeClass"
	NodeTypeArray      NodeType = "TypeArray"
	NodeICall          NodeType = "ICall"
	NodeIEval          NodeType = "IEval"
)

// Span locates a node in its source file. The zero Span means "unknown".
type Span struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// IsZero reports whether the span carries no location.
func (s Span) IsZero() bool { return s.Line == 0 && s.Column == 0 }

type Node interface {
	NodeType() NodeType
	NodeSpan() Span
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	Span Span     `json:"span,omitzero"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) NodeSpan() Span     { return n.Span }
func (nodeImpl) isNode()              {}

// WithSpan attaches a source location to a node and returns it.
func WithSpan[T interface {
	Node
	SetSpan(Span)
}](node T, span Span) T {
	node.SetSpan(span)
	return node
}

// SetSpan records the node's source location.
func (n *nodeImpl) SetSpan(span Span) { n.Span = span }

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// Command is a top-level form executed by the interpreter after the
// declarations have been processed.
type Command interface {
	Node
	commandNode()
}

type commandMarker struct{}

func (commandMarker) commandNode() {}

type TypeExpression interface {
	Node
	typeExpressionNode()
	String() string
}

type typeExpressionMarker struct{}

func (typeExpressionMarker) typeExpressionNode() {}

// Variable references

// Storage records where the allocator placed a variable.
type Storage int

const (
	StorageUnresolved Storage = iota
	StorageStack
	StorageHeap
)

func (s Storage) String() string {
	switch s {
	case StorageStack:
		return "stack"
	case StorageHeap:
		return "heap"
	default:
		return "unresolved"
	}
}

// Var is a use of a name as an operand. Storage and Offset are written by
// the allocator and only read afterwards.
type Var struct {
	nodeImpl

	Name    string  `json:"name"`
	Storage Storage `json:"-"`
	Offset  int     `json:"-"`
}

func NewVar(name string) *Var {
	return &Var{nodeImpl: newNodeImpl(NodeVar), Name: name}
}

// IsStackAllocated reports whether the variable lives in the current frame.
func (v *Var) IsStackAllocated() bool { return v.Storage == StorageStack }

// Types

type TypeInt struct {
	nodeImpl
	typeExpressionMarker
}

func NewTypeInt() *TypeInt { return &TypeInt{nodeImpl: newNodeImpl(NodeTypeInt)} }

func (*TypeInt) String() string { return "int" }

type TypeBoolean struct {
	nodeImpl
	typeExpressionMarker
}

func NewTypeBoolean() *TypeBoolean { return &TypeBoolean{nodeImpl: newNodeImpl(NodeTypeBoolean)} }

func (*TypeBoolean) String() string { return "boolean" }

type TypeClass struct {
	nodeImpl
	typeExpressionMarker

	Name string `json:"name"`
}

func NewTypeClass(name string) *TypeClass {
	return &TypeClass{nodeImpl: newNodeImpl(NodeTypeClass), Name: name}
}

func (t *TypeClass) String() string { return t.Name }

type TypeArray struct {
	nodeImpl
	typeExpressionMarker

	Elem TypeExpression `json:"elem"`
}

func NewTypeArray(elem TypeExpression) *TypeArray {
	return &TypeArray{nodeImpl: newNodeImpl(NodeTypeArray), Elem: elem}
}

func (t *TypeArray) String() string {
	if t.Elem == nil {
		return "?[]"
	}
	return t.Elem.String() + "[]"
}

// Commands

// ICall invokes a top-level procedure.
type ICall struct {
	nodeImpl
	commandMarker

	Name string       `json:"name"`
	Args []Expression `json:"args"`
}

func NewICall(name string, args []Expression) *ICall {
	return &ICall{nodeImpl: newNodeImpl(NodeICall), Name: name, Args: args}
}

// IEval evaluates an expression and prints its value.
type IEval struct {
	nodeImpl
	commandMarker

	Expr Expression `json:"expr"`
}

func NewIEval(expr Expression) *IEval {
	return &IEval{nodeImpl: newNodeImpl(NodeIEval), Expr: expr}
}
