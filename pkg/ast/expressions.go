package ast

// Expressions

type ExpInteger struct {
	nodeImpl
	expressionMarker

	Value int32 `json:"value"`
}

func NewExpInteger(value int32) *ExpInteger {
	return &ExpInteger{nodeImpl: newNodeImpl(NodeExpInteger), Value: value}
}

type ExpTrue struct {
	nodeImpl
	expressionMarker
}

func NewExpTrue() *ExpTrue { return &ExpTrue{nodeImpl: newNodeImpl(NodeExpTrue)} }

type ExpFalse struct {
	nodeImpl
	expressionMarker
}

func NewExpFalse() *ExpFalse { return &ExpFalse{nodeImpl: newNodeImpl(NodeExpFalse)} }

type ExpVar struct {
	nodeImpl
	expressionMarker

	Var *Var `json:"var"`
}

func NewExpVar(v *Var) *ExpVar {
	return &ExpVar{nodeImpl: newNodeImpl(NodeExpVar), Var: v}
}

type ExpSelf struct {
	nodeImpl
	expressionMarker
}

func NewExpSelf() *ExpSelf { return &ExpSelf{nodeImpl: newNodeImpl(NodeExpSelf)} }

type ExpNot struct {
	nodeImpl
	expressionMarker

	Operand Expression `json:"operand"`
}

func NewExpNot(operand Expression) *ExpNot {
	return &ExpNot{nodeImpl: newNodeImpl(NodeExpNot), Operand: operand}
}

type ExpIsnull struct {
	nodeImpl
	expressionMarker

	Operand Expression `json:"operand"`
}

func NewExpIsnull(operand Expression) *ExpIsnull {
	return &ExpIsnull{nodeImpl: newNodeImpl(NodeExpIsnull), Operand: operand}
}

// Operator is a binary operator symbol.
type Operator string

const (
	OpAnd      Operator = "and"
	OpOr       Operator = "or"
	OpDiv      Operator = "/"
	OpEquals   Operator = "=="
	OpLessThan Operator = "<"
	OpMinus    Operator = "-"
	OpPlus     Operator = "+"
	OpTimes    Operator = "*"
)

type ExpOp struct {
	nodeImpl
	expressionMarker

	Op    Operator   `json:"op"`
	Left  Expression `json:"left"`
	Right Expression `json:"right"`
}

func NewExpOp(op Operator, left, right Expression) *ExpOp {
	return &ExpOp{nodeImpl: newNodeImpl(NodeExpOp), Op: op, Left: left, Right: right}
}

type ExpArrayLookup struct {
	nodeImpl
	expressionMarker

	Array Expression `json:"array"`
	Index Expression `json:"index"`
}

func NewExpArrayLookup(array, index Expression) *ExpArrayLookup {
	return &ExpArrayLookup{nodeImpl: newNodeImpl(NodeExpArrayLookup), Array: array, Index: index}
}

type ExpArrayLength struct {
	nodeImpl
	expressionMarker

	Array Expression `json:"array"`
}

func NewExpArrayLength(array Expression) *ExpArrayLength {
	return &ExpArrayLength{nodeImpl: newNodeImpl(NodeExpArrayLength), Array: array}
}

type ExpNewArray struct {
	nodeImpl
	expressionMarker

	ElemType TypeExpression `json:"elemType"`
	Length   Expression     `json:"length"`
}

func NewExpNewArray(elemType TypeExpression, length Expression) *ExpNewArray {
	return &ExpNewArray{nodeImpl: newNodeImpl(NodeExpNewArray), ElemType: elemType, Length: length}
}

type ExpNewObject struct {
	nodeImpl
	expressionMarker

	Class string       `json:"class"`
	Args  []Expression `json:"args"`
}

func NewExpNewObject(class string, args []Expression) *ExpNewObject {
	return &ExpNewObject{nodeImpl: newNodeImpl(NodeExpNewObject), Class: class, Args: args}
}

// ExpCall calls a function for its value. A nil Receiver targets a
// top-level routine.
type ExpCall struct {
	nodeImpl
	expressionMarker

	Receiver Expression   `json:"receiver,omitempty"`
	Name     string       `json:"name"`
	Args     []Expression `json:"args"`
}

func NewExpCall(receiver Expression, name string, args []Expression) *ExpCall {
	return &ExpCall{nodeImpl: newNodeImpl(NodeExpCall), Receiver: receiver, Name: name, Args: args}
}
