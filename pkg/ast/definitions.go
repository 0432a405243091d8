package ast

// Definitions

// Program is a fully parsed and checked compilation unit: top-level
// routines, class declarations and the commands to run against them.
type Program struct {
	nodeImpl

	Routines []Routine    `json:"routines"`
	Classes  []*ClassDecl `json:"classes"`
	Commands []Command    `json:"commands"`
}

func NewProgram(routines []Routine, classes []*ClassDecl, commands []Command) *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Routines: routines, Classes: classes, Commands: commands}
}

type ClassDecl struct {
	nodeImpl

	Name    string       `json:"name"`
	Parent  string       `json:"parent,omitempty"`
	Fields  []*FieldDecl `json:"fields"`
	Methods []Routine    `json:"methods"`
}

func NewClassDecl(name, parent string, fields []*FieldDecl, methods []Routine) *ClassDecl {
	return &ClassDecl{nodeImpl: newNodeImpl(NodeClassDecl), Name: name, Parent: parent, Fields: fields, Methods: methods}
}

type FieldDecl struct {
	nodeImpl

	FieldType TypeExpression `json:"fieldType"`
	Name      string         `json:"name"`
}

func NewFieldDecl(fieldType TypeExpression, name string) *FieldDecl {
	return &FieldDecl{nodeImpl: newNodeImpl(NodeFieldDecl), FieldType: fieldType, Name: name}
}

type Formal struct {
	nodeImpl

	ParamType TypeExpression `json:"paramType"`
	Name      string         `json:"name"`
}

func NewFormal(paramType TypeExpression, name string) *Formal {
	return &Formal{nodeImpl: newNodeImpl(NodeFormal), ParamType: paramType, Name: name}
}

// Routine is a procedure or function body, either free-standing or a method.
type Routine interface {
	Node
	RoutineName() string
	Parameters() []*Formal
	Statements() []Statement
	// StackSlots is the number of local slots the routine's frame needs.
	StackSlots() int
	SetStackSlots(n int)
}

type routineImpl struct {
	Name            string      `json:"name"`
	Params          []*Formal   `json:"params"`
	Body            []Statement `json:"body"`
	StackAllocation int         `json:"-"`
}

func (r *routineImpl) RoutineName() string     { return r.Name }
func (r *routineImpl) Parameters() []*Formal   { return r.Params }
func (r *routineImpl) Statements() []Statement { return r.Body }
func (r *routineImpl) StackSlots() int         { return r.StackAllocation }
func (r *routineImpl) SetStackSlots(n int)     { r.StackAllocation = n }

type ProcDecl struct {
	nodeImpl
	routineImpl
}

func NewProcDecl(name string, params []*Formal, body []Statement) *ProcDecl {
	return &ProcDecl{
		nodeImpl:    newNodeImpl(NodeProcDecl),
		routineImpl: routineImpl{Name: name, Params: params, Body: body},
	}
}

// FunDecl is a routine whose value is its trailing Result expression,
// evaluated after Body.
type FunDecl struct {
	nodeImpl
	routineImpl

	ReturnType TypeExpression `json:"returnType"`
	Result     Expression     `json:"result"`
}

func NewFunDecl(returnType TypeExpression, name string, params []*Formal, body []Statement, result Expression) *FunDecl {
	return &FunDecl{
		nodeImpl:    newNodeImpl(NodeFunDecl),
		routineImpl: routineImpl{Name: name, Params: params, Body: body},
		ReturnType:  returnType,
		Result:      result,
	}
}
