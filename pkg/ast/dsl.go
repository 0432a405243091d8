package ast

// Declaration helpers.

func Prog(routines []Routine, classes []*ClassDecl, commands ...Command) *Program {
	return NewProgram(routines, classes, commands)
}

func Class(name, parent string, fields []*FieldDecl, methods ...Routine) *ClassDecl {
	return NewClassDecl(name, parent, fields, methods)
}

func Fields(fields ...*FieldDecl) []*FieldDecl {
	return fields
}

func Field(fieldType TypeExpression, name string) *FieldDecl {
	return NewFieldDecl(fieldType, name)
}

func Params(params ...*Formal) []*Formal {
	return params
}

func Param(paramType TypeExpression, name string) *Formal {
	return NewFormal(paramType, name)
}

func Routines(routines ...Routine) []Routine {
	return routines
}

func Proc(name string, params []*Formal, body ...Statement) *ProcDecl {
	return NewProcDecl(name, params, body)
}

func Fun(returnType TypeExpression, name string, params []*Formal, body []Statement, result Expression) *FunDecl {
	return NewFunDecl(returnType, name, params, body, result)
}

// Type helpers.

func IntT() *TypeInt { return NewTypeInt() }

func BoolT() *TypeBoolean { return NewTypeBoolean() }

func ClassT(name string) *TypeClass { return NewTypeClass(name) }

func ArrT(elem TypeExpression) *TypeArray { return NewTypeArray(elem) }

// Statement helpers.

func Stmts(stmts ...Statement) []Statement {
	return stmts
}

func Block(stmts ...Statement) *StmBlock {
	return NewStmBlock(stmts)
}

func Decl(varType TypeExpression, name string) *StmVarDecl {
	return NewStmVarDecl(varType, name)
}

func If(cond Expression, then, els *StmBlock) *StmIf {
	return NewStmIf(cond, then, els)
}

func While(cond Expression, body *StmBlock) *StmWhile {
	return NewStmWhile(cond, body)
}

func Output(expr Expression) *StmOutput {
	return NewStmOutput(expr)
}

func Assign(name string, value Expression) *StmAssign {
	return NewStmAssign(NewVar(name), value)
}

func ArrayAssign(array, index, value Expression) *StmArrayAssign {
	return NewStmArrayAssign(array, index, value)
}

func CallStm(receiver Expression, name string, args ...Expression) *StmCall {
	return NewStmCall(receiver, name, args)
}

// Expression helpers.

func Int(value int32) *ExpInteger { return NewExpInteger(value) }

func True() *ExpTrue { return NewExpTrue() }

func False() *ExpFalse { return NewExpFalse() }

func V(name string) *ExpVar { return NewExpVar(NewVar(name)) }

func Self() *ExpSelf { return NewExpSelf() }

func Not(operand Expression) *ExpNot { return NewExpNot(operand) }

func IsNull(operand Expression) *ExpIsnull { return NewExpIsnull(operand) }

func Op(op Operator, left, right Expression) *ExpOp { return NewExpOp(op, left, right) }

func Add(left, right Expression) *ExpOp { return NewExpOp(OpPlus, left, right) }

func Sub(left, right Expression) *ExpOp { return NewExpOp(OpMinus, left, right) }

func Mul(left, right Expression) *ExpOp { return NewExpOp(OpTimes, left, right) }

func Div(left, right Expression) *ExpOp { return NewExpOp(OpDiv, left, right) }

func Lt(left, right Expression) *ExpOp { return NewExpOp(OpLessThan, left, right) }

func Eq(left, right Expression) *ExpOp { return NewExpOp(OpEquals, left, right) }

func And(left, right Expression) *ExpOp { return NewExpOp(OpAnd, left, right) }

func Index(array, index Expression) *ExpArrayLookup { return NewExpArrayLookup(array, index) }

func Length(array Expression) *ExpArrayLength { return NewExpArrayLength(array) }

func NewArray(elemType TypeExpression, length Expression) *ExpNewArray {
	return NewExpNewArray(elemType, length)
}

func New(class string, args ...Expression) *ExpNewObject { return NewExpNewObject(class, args) }

func CallExp(receiver Expression, name string, args ...Expression) *ExpCall {
	return NewExpCall(receiver, name, args)
}

// Command helpers.

func Eval(expr Expression) *IEval { return NewIEval(expr) }

func Invoke(name string, args ...Expression) *ICall { return NewICall(name, args) }
