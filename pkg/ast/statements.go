package ast

// Statements

type StmBlock struct {
	nodeImpl
	statementMarker

	Body []Statement `json:"body"`
}

func NewStmBlock(body []Statement) *StmBlock {
	return &StmBlock{nodeImpl: newNodeImpl(NodeStmBlock), Body: body}
}

type StmVarDecl struct {
	nodeImpl
	statementMarker

	VarType TypeExpression `json:"varType"`
	Name    string         `json:"name"`
}

func NewStmVarDecl(varType TypeExpression, name string) *StmVarDecl {
	return &StmVarDecl{nodeImpl: newNodeImpl(NodeStmVarDecl), VarType: varType, Name: name}
}

// StmIf always carries both branches.
type StmIf struct {
	nodeImpl
	statementMarker

	Cond Expression `json:"cond"`
	Then *StmBlock  `json:"then"`
	Else *StmBlock  `json:"else"`
}

func NewStmIf(cond Expression, then, els *StmBlock) *StmIf {
	return &StmIf{nodeImpl: newNodeImpl(NodeStmIf), Cond: cond, Then: then, Else: els}
}

type StmWhile struct {
	nodeImpl
	statementMarker

	Cond Expression `json:"cond"`
	Body *StmBlock  `json:"body"`
}

func NewStmWhile(cond Expression, body *StmBlock) *StmWhile {
	return &StmWhile{nodeImpl: newNodeImpl(NodeStmWhile), Cond: cond, Body: body}
}

type StmOutput struct {
	nodeImpl
	statementMarker

	Expr Expression `json:"expr"`
}

func NewStmOutput(expr Expression) *StmOutput {
	return &StmOutput{nodeImpl: newNodeImpl(NodeStmOutput), Expr: expr}
}

type StmAssign struct {
	nodeImpl
	statementMarker

	Var   *Var       `json:"var"`
	Value Expression `json:"value"`
}

func NewStmAssign(v *Var, value Expression) *StmAssign {
	return &StmAssign{nodeImpl: newNodeImpl(NodeStmAssign), Var: v, Value: value}
}

type StmArrayAssign struct {
	nodeImpl
	statementMarker

	Array Expression `json:"array"`
	Index Expression `json:"index"`
	Value Expression `json:"value"`
}

func NewStmArrayAssign(array, index, value Expression) *StmArrayAssign {
	return &StmArrayAssign{nodeImpl: newNodeImpl(NodeStmArrayAssign), Array: array, Index: index, Value: value}
}

// StmCall calls a procedure for effect. A nil Receiver targets a top-level
// routine.
type StmCall struct {
	nodeImpl
	statementMarker

	Receiver Expression   `json:"receiver,omitempty"`
	Name     string       `json:"name"`
	Args     []Expression `json:"args"`
}

func NewStmCall(receiver Expression, name string, args []Expression) *StmCall {
	return &StmCall{nodeImpl: newNodeImpl(NodeStmCall), Receiver: receiver, Name: name, Args: args}
}
